package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/runtime"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
	ExitPartialAnalysis = 4
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// ExitCodeFor maps an execution error to the process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, runtime.ErrAnalysisIncomplete):
		return ExitPartialAnalysis
	case errhandling.GetErrorCategory(err) == errhandling.CategoryConfiguration:
		return ExitValidationError
	default:
		return ExitRuntimeError
	}
}

// PrintExecutionResult displays the run outcome. Status lines go to w, the
// failure block to errW.
func PrintExecutionResult(w, errW io.Writer, result *ratings.ExecutionResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(errW, "✗ No execution result available")
		return
	}

	if result.Status == runtime.StatusError {
		fmt.Fprintln(errW, "✗ Analysis failed")
		if result.Error != nil {
			fmt.Fprintf(errW, "  Module: %s\n", result.Error.Module)
			fmt.Fprintf(errW, "  Error: %s\n", result.Error.Message)
			if opts.Verbose && result.Error.ErrorCategory != "" {
				fmt.Fprintf(errW, "  Category: %s\n", result.Error.ErrorCategory)
			}
		} else if err != nil {
			fmt.Fprintf(errW, "  Error: %v\n", err)
		}
		return
	}

	if result.Status == runtime.StatusPartial {
		fmt.Fprintln(errW, "⚠ Analysis completed with failed tests")
		if result.Report != nil {
			printFailedTests(errW, result.Report)
		}
	}

	if opts.Quiet {
		return
	}
	if result.Status == runtime.StatusSuccess {
		fmt.Fprintln(w, "✓ Analysis completed successfully")
	}
	fmt.Fprintf(w, "  Run: %s\n", result.RunID)
	fmt.Fprintf(w, "  Records loaded: %d\n", result.RecordsLoaded)
	fmt.Fprintf(w, "  Records retained: %d\n", result.RecordsRetained)
	if opts.Verbose {
		fmt.Fprintf(w, "  Duration: %s\n", logger.FormatDuration(result.CompletedAt.Sub(result.StartedAt)))
		if result.Report != nil {
			if anova := result.Report.ANOVA.Result; anova != nil && len(anova.ExcludedGroups) > 0 {
				fmt.Fprintf(w, "  Decades excluded from ANOVA: %s\n", strings.Join(anova.ExcludedGroups, ", "))
			}
		}
	}
	if opts.DryRun {
		fmt.Fprintln(w, "ℹ️  Dry-run mode: report files were not written")
	}
}

func printFailedTests(w io.Writer, report *ratings.Report) {
	labels := []string{"Pearson correlation", "ANOVA", "T-test"}
	for i, o := range report.Outcomes() {
		if o.Error == nil {
			continue
		}
		fmt.Fprintf(w, "  %s: %s (%s)\n", labels[i], o.Error.Message, o.Error.Code)
	}
}

// PrintConfigSummary prints the analysis identity and its modules.
func PrintConfigSummary(w io.Writer, a *ratings.Analysis) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "  Analysis: %s\n", a.Name)
	if a.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", a.Description)
	}
	if a.Input != nil {
		fmt.Fprintf(w, "  Input: %s\n", a.Input.Type)
	}
	fmt.Fprintf(w, "  Genres: %s vs %s\n", a.Genres.A, a.Genres.B)
	if len(a.Filters) > 0 {
		fmt.Fprintf(w, "  Filters: %s\n", strings.Join(moduleTypes(a.Filters), ", "))
	}
	if len(a.Outputs) > 0 {
		fmt.Fprintf(w, "  Outputs: %s\n", strings.Join(moduleTypes(a.Outputs), ", "))
	}
}

func moduleTypes(modules []ratings.ModuleConfig) []string {
	types := make([]string, len(modules))
	for i, m := range modules {
		types[i] = m.Type
	}
	return types
}
