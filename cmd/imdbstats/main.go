// Package main provides the CLI entry point for the movie ratings analysis.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/cli"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/config"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/factory"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/runtime"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// envPrefix scopes environment overrides, e.g. IMDBSTATS_INPUT.
const envPrefix = "IMDBSTATS"

// Build information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWith(code int, err error) error {
	if code == cli.ExitSuccess {
		return nil
	}
	return &exitError{code: code, err: err}
}

// execute runs the CLI and returns the exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	defer logger.CloseLogFile()

	root := newRootCmd(viper.New(), stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return cli.ExitSuccess
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	// flag and argument errors from cobra
	return cli.ExitValidationError
}

// app holds the flag state of one CLI invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	verbose bool
	quiet   bool
	dryRun  bool
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: v, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "imdbstats",
		Short: "Exploratory statistics for the IMDB top 1000 movies",
		Long: `imdbstats loads a table of movies, cleans it and tests three questions:
whether ratings correlate with release year (Pearson), whether mean ratings
differ between decades (one-way ANOVA) and whether two genres differ in mean
rating (Welch t-test).

Without a configuration file the analysis reads imdb_top_1000.csv and
compares Drama with Action.

Examples:
  # Run the default analysis
  imdbstats run

  # Run an analysis configuration
  imdbstats run analysis.yaml

  # Validate a configuration file
  imdbstats validate analysis.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.configureLogging()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().String("log-format", "json", "Log format: json or human")
	root.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("log-format", root.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("log-file", root.PersistentFlags().Lookup("log-file"))

	root.AddCommand(a.newRunCmd(), a.newValidateCmd(), a.newVersionCmd())
	return root
}

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [config-file]",
		Short: "Run the analysis",
		Long: `Run the analysis, optionally described by a configuration file.

The configuration file is first validated against the schema.
If validation fails, the analysis is not executed.

Flags override the configuration:
  --input     read this CSV or JSON file instead
  --json      also write the JSON report to this path
  --charts    also write the PNG charts to this directory
  --dry-run   compute everything but only print the text summary

Exit codes:
  0 - Analysis completed
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors (input unreadable, output not written)
  4 - Analysis incomplete (a test could not be computed)`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runAnalysis,
	}
	cmd.Flags().String("input", "", "Input CSV or JSON file")
	cmd.Flags().String("json", "", "Write the JSON report to this path")
	cmd.Flags().String("charts", "", "Write charts to this directory")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Skip file outputs; the text summary is still printed")
	_ = a.v.BindPFlag("input", cmd.Flags().Lookup("input"))
	return cmd
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate an analysis configuration file",
		Long: `Validate an analysis configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)`,
		Args: cobra.ExactArgs(1),
		RunE: a.runValidate,
	}
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "Version: %s\n", version)
			fmt.Fprintf(a.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "Build Date: %s\n", buildDate)
		},
	}
}

func (a *app) configureLogging() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	} else if a.quiet {
		level = slog.LevelError
	}

	format, err := logger.ParseFormat(a.v.GetString("log-format"))
	if err != nil {
		fmt.Fprintf(a.stderr, "✗ %v\n", err)
		return exitWith(cli.ExitValidationError, err)
	}

	if path := a.v.GetString("log-file"); path != "" {
		if err := logger.SetLogFile(path, level, format); err != nil {
			fmt.Fprintf(a.stderr, "✗ %v\n", err)
			return exitWith(cli.ExitRuntimeError, err)
		}
		return nil
	}
	logger.SetLevelAndFormat(level, format)
	return nil
}

func (a *app) runValidate(_ *cobra.Command, args []string) error {
	configPath := args[0]
	if !a.quiet {
		fmt.Fprintf(a.stdout, "Validating configuration: %s\n", configPath)
	}

	analysis, format, code, err := a.loadConfig(configPath)
	if err != nil {
		return exitWith(code, err)
	}

	if !a.quiet {
		fmt.Fprintf(a.stdout, "✓ Configuration is valid (format: %s)\n", format)
		if a.verbose {
			cli.PrintConfigSummary(a.stdout, analysis)
		}
	}
	return nil
}

// loadConfig loads a configuration file, printing its errors. It returns the
// detected format and the exit code for a failure.
func (a *app) loadConfig(path string) (*ratings.Analysis, string, int, error) {
	analysis, result, err := config.Load(path)
	switch {
	case err == nil:
		return analysis, result.Format, cli.ExitSuccess, nil
	case len(result.ParseErrors) > 0:
		cli.PrintParseErrors(a.stderr, result.ParseErrors, a.verbose)
		return nil, result.Format, cli.ExitParseError, err
	case len(result.ValidationErrors) > 0:
		cli.PrintValidationErrors(a.stderr, result.ValidationErrors, a.verbose, a.quiet)
		return nil, result.Format, cli.ExitValidationError, err
	default:
		fmt.Fprintf(a.stderr, "✗ Failed to convert configuration: %v\n", err)
		return nil, result.Format, cli.ExitValidationError, err
	}
}

func (a *app) runAnalysis(cmd *cobra.Command, args []string) error {
	analysis := ratings.DefaultAnalysis()
	if len(args) == 1 {
		if !a.quiet {
			fmt.Fprintf(a.stderr, "Loading analysis configuration: %s\n", args[0])
		}
		loaded, _, code, err := a.loadConfig(args[0])
		if err != nil {
			return exitWith(code, err)
		}
		analysis = loaded
	}

	jsonPath, _ := cmd.Flags().GetString("json")
	chartsDir, _ := cmd.Flags().GetString("charts")
	applyOverrides(analysis, a.v.GetString("input"), jsonPath, chartsDir)

	if a.verbose {
		cli.PrintConfigSummary(a.stderr, analysis)
	}

	inputModule, err := factory.CreateInputModule(analysis.Input)
	if err != nil {
		fmt.Fprintf(a.stderr, "✗ Failed to create input module: %v\n", err)
		return exitWith(cli.ExitCodeFor(err), err)
	}
	filterModules, err := factory.CreateFilterModules(analysis.Filters)
	if err != nil {
		fmt.Fprintf(a.stderr, "✗ Failed to create filter modules: %v\n", err)
		return exitWith(cli.ExitCodeFor(err), err)
	}
	outputModules, err := factory.CreateOutputModules(analysis.Outputs)
	if err != nil {
		fmt.Fprintf(a.stderr, "✗ Failed to create output modules: %v\n", err)
		return exitWith(cli.ExitCodeFor(err), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := runtime.NewExecutorWithModules(inputModule, filterModules, outputModules, a.dryRun)
	result, err := executor.ExecuteWithContext(ctx, analysis)

	// stdout carries the text summary; status lines go to stderr
	cli.PrintExecutionResult(a.stderr, a.stderr, result, err, cli.OutputOptions{
		Verbose: a.verbose,
		Quiet:   a.quiet,
		DryRun:  a.dryRun,
	})
	return exitWith(cli.ExitCodeFor(err), err)
}

// applyOverrides applies command-line and environment overrides to the analysis.
func applyOverrides(a *ratings.Analysis, inputPath, jsonPath, chartsDir string) {
	if inputPath != "" {
		inputType := "csv"
		if strings.EqualFold(filepath.Ext(inputPath), ".json") {
			inputType = "json"
		}
		a.Input = &ratings.ModuleConfig{
			Type:   inputType,
			Config: map[string]interface{}{"path": inputPath},
		}
	}
	if jsonPath != "" {
		a.Outputs = append(a.Outputs, ratings.ModuleConfig{
			Type:   "json",
			Config: map[string]interface{}{"path": jsonPath},
		})
	}
	if chartsDir != "" {
		a.Outputs = append(a.Outputs, ratings.ModuleConfig{
			Type:   "charts",
			Config: map[string]interface{}{"dir": chartsDir},
		})
	}
}
