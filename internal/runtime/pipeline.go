// Package runtime provides the analysis execution engine.
// It orchestrates Input → Filters → Clean → Analyze → Outputs for one run.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/analysis"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/dataset"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/filter"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/input"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/output"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	// StatusPartial means every stage ran but at least one statistical test
	// failed its preconditions.
	StatusPartial = "partial"
)

// ErrCodeInvalidInput marks a run rejected before any stage started.
const ErrCodeInvalidInput = "INVALID_INPUT"

var (
	// ErrNilAnalysis is returned when the analysis configuration is nil
	ErrNilAnalysis = errors.New("analysis configuration is nil")

	// ErrNilInputModule is returned when input module is nil
	ErrNilInputModule = errors.New("input module is nil")

	// ErrAnalysisIncomplete is returned, with a complete result, when at least
	// one statistical test could not be computed.
	ErrAnalysisIncomplete = errors.New("analysis incomplete: one or more tests failed")
)

// Executor runs one analysis. It only interacts with modules through their
// interfaces.
type Executor struct {
	inputModule   input.Module
	filterModules []filter.Module
	outputModules []output.Module
	cleaner       *dataset.Cleaner
	dryRun        bool

	// newRunID is replaceable in tests
	newRunID func() string
}

// NewExecutorWithModules creates an executor with all modules configured.
//
// In dry-run mode outputs implementing output.PreviewableModule are not
// called; the files they would write are logged instead.
func NewExecutorWithModules(
	inputModule input.Module,
	filterModules []filter.Module,
	outputModules []output.Module,
	dryRun bool,
) *Executor {
	return &Executor{
		inputModule:   inputModule,
		filterModules: filterModules,
		outputModules: outputModules,
		cleaner:       dataset.NewCleaner(),
		dryRun:        dryRun,
		newRunID:      uuid.NewString,
	}
}

// stageTimings holds timing measurements for each execution stage
type stageTimings struct {
	input   time.Duration
	filter  time.Duration
	clean   time.Duration
	analyze time.Duration
	output  time.Duration
}

// run carries the state of one execution.
type run struct {
	analysis *ratings.Analysis
	result   *ratings.ExecutionResult
	execCtx  logger.ExecutionContext
	timings  stageTimings
}

func (r *run) stage(name, moduleType string, index int) logger.ExecutionContext {
	c := r.execCtx
	c.Stage = name
	c.ModuleType = moduleType
	c.Index = index
	return c
}

// Execute runs an analysis with a background context.
func (e *Executor) Execute(a *ratings.Analysis) (*ratings.ExecutionResult, error) {
	return e.ExecuteWithContext(context.Background(), a)
}

// ExecuteWithContext runs an analysis:
//  1. fetch rows from the input module (closed right after)
//  2. check the required columns and apply the configured filters
//  3. clean the rows into a dataset
//  4. compute the statistics
//  5. run every output module in order
//
// A source, configuration or output failure stops the run with StatusError.
// When the run completes but a test failed its preconditions the result has
// StatusPartial and the error is ErrAnalysisIncomplete; outputs still ran.
func (e *Executor) ExecuteWithContext(ctx context.Context, a *ratings.Analysis) (*ratings.ExecutionResult, error) {
	r, err := e.begin(a)
	if err != nil {
		return r.result, err
	}
	defer e.closeOutputs(r)

	if e.inputModule == nil {
		return e.fail(r, ErrCodeInvalidInput, "input", ErrNilInputModule)
	}

	inputType := ""
	if a.Input != nil {
		inputType = a.Input.Type
	}
	logger.LogStageStart(r.stage(logger.StageInput, inputType, -1))
	start := time.Now()
	rows, err := e.inputModule.Fetch(ctx)
	r.timings.input = time.Since(start)
	e.closeModule(r, logger.StageInput, inputType, e.inputModule)
	e.inputModule = nil

	if err != nil {
		logger.LogStageEnd(r.stage(logger.StageInput, inputType, -1), 0, r.timings.input,
			&logger.ExecutionError{Code: errhandling.CodeInputFailed, Message: err.Error()})
		return e.fail(r, errhandling.CodeInputFailed, "input", fmt.Errorf("executing input module: %w", err))
	}
	logger.LogStageEnd(r.stage(logger.StageInput, inputType, -1), len(rows), r.timings.input, nil)

	return e.process(ctx, r, rows)
}

// ExecuteWithRecordsContext runs an analysis over rows that were already
// fetched. The input module, if any, is not used.
func (e *Executor) ExecuteWithRecordsContext(ctx context.Context, a *ratings.Analysis, rows []map[string]interface{}) (*ratings.ExecutionResult, error) {
	r, err := e.begin(a)
	if err != nil {
		return r.result, err
	}
	defer e.closeOutputs(r)

	return e.process(ctx, r, rows)
}

func (e *Executor) begin(a *ratings.Analysis) (*run, error) {
	r := &run{
		analysis: a,
		result: &ratings.ExecutionResult{
			RunID:     e.newRunID(),
			StartedAt: time.Now(),
			Status:    StatusError,
		},
	}
	if a == nil {
		logger.Error("analysis execution failed: nil analysis configuration")
		r.result.CompletedAt = time.Now()
		r.result.Error = buildExecutionError(ErrCodeInvalidInput, "", ErrNilAnalysis)
		return r, ErrNilAnalysis
	}

	r.result.AnalysisID = a.ID
	r.execCtx = logger.ExecutionContext{
		RunID:        r.result.RunID,
		AnalysisName: a.Name,
		DryRun:       e.dryRun,
		Index:        -1,
	}
	logger.LogExecutionStart(r.execCtx)
	return r, nil
}

func (e *Executor) process(ctx context.Context, r *run, rows []map[string]interface{}) (*ratings.ExecutionResult, error) {
	r.result.RecordsLoaded = len(rows)

	filtered, err := e.executeFilters(ctx, r, rows)
	if err != nil {
		return e.fail(r, errhandling.CodeFilterFailed, "filter", err)
	}
	if err := dataset.RequireColumns(filtered); err != nil {
		return e.fail(r, errhandling.CodeInputFailed, "input", err)
	}

	logger.LogStageStart(r.stage(logger.StageClean, "", -1))
	start := time.Now()
	ds, stats, err := e.cleaner.Clean(ctx, filtered)
	r.timings.clean = time.Since(start)
	if err != nil {
		return e.fail(r, errhandling.CodeFilterFailed, logger.StageClean, fmt.Errorf("cleaning rows: %w", err))
	}
	logger.LogStageEnd(r.stage(logger.StageClean, "", -1), ds.Len(), r.timings.clean, nil)
	if dropped := stats.DroppedMissing + stats.DroppedNonNumeric; dropped > 0 {
		logger.WithExecution(r.execCtx).Info("rows dropped during cleaning",
			slog.Int("dropped_missing", stats.DroppedMissing),
			slog.Int("dropped_non_numeric", stats.DroppedNonNumeric),
		)
	}
	r.result.RecordsRetained = ds.Len()

	logger.LogStageStart(r.stage(logger.StageAnalyze, "", -1))
	start = time.Now()
	report, err := analysis.Analyze(ctx, ds, analysis.Options{
		RunID:         r.result.RunID,
		Name:          r.analysis.Name,
		Genres:        r.analysis.Genres,
		HistogramBins: r.analysis.HistogramBins,
	})
	r.timings.analyze = time.Since(start)
	if err != nil {
		return e.fail(r, errhandling.ClassifyError(err).Code, logger.StageAnalyze, fmt.Errorf("analyzing dataset: %w", err))
	}
	report.Clean = stats
	r.result.Report = report
	logger.LogStageEnd(r.stage(logger.StageAnalyze, "", -1), ds.Len(), r.timings.analyze, nil)
	logFailedTests(r, report)

	if err := e.executeOutputs(ctx, r, report, ds); err != nil {
		return e.fail(r, errhandling.CodeOutputFailed, "output", err)
	}

	return e.finish(r)
}

func (e *Executor) executeFilters(ctx context.Context, r *run, rows []map[string]interface{}) ([]map[string]interface{}, error) {
	start := time.Now()
	defer func() { r.timings.filter = time.Since(start) }()

	current := rows
	for i, m := range e.filterModules {
		if m == nil {
			logger.Warn("nil filter module encountered; skipping",
				slog.String("run_id", r.result.RunID),
				slog.Int("index", i),
			)
			continue
		}
		moduleType := filterType(r.analysis, i)
		stageCtx := r.stage(logger.StageFilter, moduleType, i)
		logger.LogStageStart(stageCtx)

		filterStart := time.Now()
		out, err := m.Process(ctx, current)
		if err != nil {
			logger.LogStageEnd(stageCtx, len(current), time.Since(filterStart),
				&logger.ExecutionError{Code: errhandling.CodeFilterFailed, Message: err.Error()})
			return nil, fmt.Errorf("executing filter module %d: %w", i, err)
		}
		logger.LogStageEnd(stageCtx, len(out), time.Since(filterStart), nil)
		current = out
	}
	return current, nil
}

func filterType(a *ratings.Analysis, i int) string {
	if i < len(a.Filters) {
		return a.Filters[i].Type
	}
	return ""
}

func outputType(a *ratings.Analysis, i int) string {
	if i < len(a.Outputs) {
		return a.Outputs[i].Type
	}
	return ""
}

func (e *Executor) executeOutputs(ctx context.Context, r *run, report *ratings.Report, ds ratings.Dataset) error {
	start := time.Now()
	defer func() { r.timings.output = time.Since(start) }()

	for i, m := range e.outputModules {
		if m == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stageCtx := r.stage(logger.StageOutput, outputType(r.analysis, i), i)

		if previewable, ok := m.(output.PreviewableModule); ok && e.dryRun {
			logger.WithExecution(stageCtx).Info("dry run: output skipped",
				slog.String("files", strings.Join(previewable.Preview(report), ", ")),
			)
			continue
		}

		logger.LogStageStart(stageCtx)
		outputStart := time.Now()
		if err := m.Send(ctx, report, ds); err != nil {
			logger.LogStageEnd(stageCtx, ds.Len(), time.Since(outputStart),
				&logger.ExecutionError{Code: errhandling.CodeOutputFailed, Message: err.Error()})
			return fmt.Errorf("executing output module %d: %w", i, err)
		}
		logger.LogStageEnd(stageCtx, ds.Len(), time.Since(outputStart), nil)
	}
	return nil
}

func logFailedTests(r *run, report *ratings.Report) {
	for _, o := range report.Outcomes() {
		if o.Error == nil {
			continue
		}
		logger.WithExecution(r.stage(logger.StageAnalyze, "", -1)).Warn("statistical test not computed",
			slog.String("error_code", o.Error.Code),
			slog.String("error", o.Error.Message),
		)
	}
}

func (e *Executor) finish(r *run) (*ratings.ExecutionResult, error) {
	result := r.result
	result.CompletedAt = time.Now()
	total := result.CompletedAt.Sub(result.StartedAt)

	var err error
	result.Status = StatusSuccess
	result.Error = nil
	if !result.Report.Complete() {
		result.Status = StatusPartial
		err = ErrAnalysisIncomplete
	}

	logger.LogExecutionEnd(r.execCtx, result.Status, result.RecordsRetained, total)
	logger.LogMetrics(r.execCtx, logger.ExecutionMetrics{
		TotalDuration:   total,
		InputDuration:   r.timings.input,
		FilterDuration:  r.timings.filter,
		CleanDuration:   r.timings.clean,
		AnalyzeDuration: r.timings.analyze,
		OutputDuration:  r.timings.output,
		RecordsLoaded:   result.RecordsLoaded,
		RecordsRetained: result.RecordsRetained,
	})
	return result, err
}

func (e *Executor) fail(r *run, code, module string, err error) (*ratings.ExecutionResult, error) {
	r.result.CompletedAt = time.Now()
	r.result.Status = StatusError
	r.result.Error = buildExecutionError(code, module, err)

	logger.LogError("analysis execution failed", logger.ErrorContext{
		RunID:        r.result.RunID,
		AnalysisName: r.execCtx.AnalysisName,
		Stage:        module,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
		Err:          err,
		RecordCount:  r.result.RecordsLoaded,
	})
	logger.LogExecutionEnd(r.execCtx, StatusError, r.result.RecordsRetained, r.result.CompletedAt.Sub(r.result.StartedAt))
	return r.result, err
}

// buildExecutionError creates an ExecutionError with the classified category.
func buildExecutionError(code, module string, err error) *ratings.ExecutionError {
	return &ratings.ExecutionError{
		Code:          code,
		Message:       err.Error(),
		Module:        module,
		ErrorCategory: string(errhandling.GetErrorCategory(err)),
	}
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(r *run, stage, moduleType string, m moduleCloser) {
	if err := m.Close(); err != nil {
		logger.WithModule(stage, moduleType).Warn("failed to close module",
			slog.String("run_id", r.result.RunID),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Executor) closeOutputs(r *run) {
	for i, m := range e.outputModules {
		if m != nil {
			e.closeModule(r, logger.StageOutput, outputType(r.analysis, i), m)
		}
	}
}
