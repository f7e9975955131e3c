// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the runtime.
//
// Logs go to stderr so that stdout carries only the analysis summary.
// Helpers cover run start/end, stage start/end and stage timings, all with
// snake_case field names.
//
// The package supports two output formats:
//   - JSON (default): Machine-readable structured logging
//   - Human: Human-readable console output with colors and prefixes
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

var (
	mu      sync.Mutex
	console io.Writer = os.Stderr
	level             = slog.LevelInfo
	format            = FormatJSON
)

func init() {
	Logger = slog.New(newConsoleHandler())
}

// SetLevel configures the logging level.
func SetLevel(l slog.Level) {
	SetLevelAndFormat(l, currentFormat())
}

// SetOutput redirects console logs to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	prev := console
	console = w
	mu.Unlock()
	Logger = slog.New(newConsoleHandler())
	return prev
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRun returns a logger carrying the run id.
func WithRun(runID string) *slog.Logger {
	return Logger.With("run_id", runID)
}

// WithModule returns a logger with module context.
func WithModule(stage string, moduleType string) *slog.Logger {
	return Logger.With("stage", stage, "module_type", moduleType)
}

// Stage names used in log fields.
const (
	StageInput   = "input"
	StageFilter  = "filter"
	StageClean   = "clean"
	StageAnalyze = "analyze"
	StageOutput  = "output"
)

// ExecutionContext contains context information for run logging.
type ExecutionContext struct {
	// RunID uniquely identifies the run (required)
	RunID string
	// AnalysisName is the configured analysis name
	AnalysisName string
	// Stage is the current stage (input, filter, clean, analyze, output)
	Stage string
	// ModuleType is the type of module being executed (csv, condition, charts...)
	ModuleType string
	// DryRun indicates that non-text outputs are skipped
	DryRun bool
	// Index is the position of a filter or output module; -1 when not applicable
	Index int
}

// ExecutionError contains structured error information for logging.
type ExecutionError struct {
	Code    string
	Message string
}

// ErrorContext contains structured context for error logging.
type ErrorContext struct {
	RunID        string
	AnalysisName string
	Stage        string
	ModuleType   string

	ErrorCode    string
	ErrorMessage string
	Err          error

	RecordCount int
	Duration    time.Duration

	// Extra holds additional key-value pairs
	Extra map[string]interface{}
}

// ExecutionMetrics contains per-stage timings of a run.
type ExecutionMetrics struct {
	TotalDuration   time.Duration
	InputDuration   time.Duration
	FilterDuration  time.Duration
	CleanDuration   time.Duration
	AnalyzeDuration time.Duration
	OutputDuration  time.Duration
	RecordsLoaded   int
	RecordsRetained int
}

// RecordsDropped returns how many loaded rows did not survive filtering and cleaning.
func (m ExecutionMetrics) RecordsDropped() int {
	if m.RecordsLoaded < m.RecordsRetained {
		return 0
	}
	return m.RecordsLoaded - m.RecordsRetained
}

// WithExecution returns a logger with execution context attached.
// Only non-empty fields are included.
func WithExecution(ctx ExecutionContext) *slog.Logger {
	return Logger.With(buildContextAttrs(ctx)...)
}

// LogExecutionStart logs the start of a run.
func LogExecutionStart(ctx ExecutionContext) {
	Logger.Info("execution started", buildContextAttrs(ctx)...)
}

// LogExecutionEnd logs the completion of a run with its final status.
func LogExecutionEnd(ctx ExecutionContext, status string, recordsRetained int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("records_retained", recordsRetained),
		slog.Duration("duration", duration),
	)
	if status == "error" {
		Logger.Error("execution failed", attrs...)
		return
	}
	Logger.Info("execution completed", attrs...)
}

// LogStageStart logs the start of a stage.
func LogStageStart(ctx ExecutionContext) {
	Logger.Debug("stage started", buildContextAttrs(ctx)...)
}

// LogStageEnd logs the completion of a stage.
// If err is non-nil, logs as an error with error details.
func LogStageEnd(ctx ExecutionContext, recordCount int, duration time.Duration, err *ExecutionError) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("record_count", recordCount),
		slog.Duration("duration", duration),
	)

	if err != nil {
		attrs = append(attrs,
			slog.String("error_code", err.Code),
			slog.String("error", err.Message),
		)
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Info("stage completed", attrs...)
}

// LogMetrics logs the stage timings of a run.
func LogMetrics(ctx ExecutionContext, metrics ExecutionMetrics) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Duration("total_duration", metrics.TotalDuration),
		slog.Duration("input_duration", metrics.InputDuration),
		slog.Duration("filter_duration", metrics.FilterDuration),
		slog.Duration("clean_duration", metrics.CleanDuration),
		slog.Duration("analyze_duration", metrics.AnalyzeDuration),
		slog.Duration("output_duration", metrics.OutputDuration),
		slog.Int("records_loaded", metrics.RecordsLoaded),
		slog.Int("records_retained", metrics.RecordsRetained),
		slog.Int("records_dropped", metrics.RecordsDropped()),
	)
	Logger.Info("execution metrics", attrs...)
}

// LogError logs an error with its run context and unwrapped error chain.
func LogError(message string, errCtx ErrorContext) {
	attrs := make([]any, 0, 16)

	if errCtx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", errCtx.RunID))
	}
	if errCtx.AnalysisName != "" {
		attrs = append(attrs, slog.String("analysis", errCtx.AnalysisName))
	}
	if errCtx.Stage != "" {
		attrs = append(attrs, slog.String("stage", errCtx.Stage))
	}
	if errCtx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", errCtx.ModuleType))
	}
	if errCtx.ErrorCode != "" {
		attrs = append(attrs, slog.String("error_code", errCtx.ErrorCode))
	}
	if errCtx.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", errCtx.ErrorMessage))
	}
	if errCtx.Err != nil {
		attrs = append(attrs, slog.String("error_type", fmt.Sprintf("%T", errCtx.Err)))
		if chain := errorChain(errCtx.Err); len(chain) > 1 {
			attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
		}
	}
	if errCtx.RecordCount > 0 {
		attrs = append(attrs, slog.Int("record_count", errCtx.RecordCount))
	}
	if errCtx.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", errCtx.Duration))
	}
	for k, v := range errCtx.Extra {
		attrs = append(attrs, slog.Any(k, v))
	}

	Logger.Error(message, attrs...)
}

func errorChain(err error) []string {
	chain := []string{err.Error()}
	for cur := errors.Unwrap(err); cur != nil; cur = errors.Unwrap(cur) {
		chain = append(chain, cur.Error())
	}
	return chain
}

func buildContextAttrs(ctx ExecutionContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))

	if ctx.AnalysisName != "" {
		attrs = append(attrs, slog.String("analysis", ctx.AnalysisName))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", ctx.ModuleType))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	if ctx.Index >= 0 {
		attrs = append(attrs, slog.Int("index", ctx.Index))
	}
	return attrs
}

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman
)

// ParseFormat maps "json" or "human" to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q (want json or human)", s)
	}
}

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(l slog.Level, f OutputFormat) {
	mu.Lock()
	level = l
	format = f
	mu.Unlock()
	Logger = slog.New(newConsoleHandler())
}

func currentFormat() OutputFormat {
	mu.Lock()
	defer mu.Unlock()
	return format
}

func newConsoleHandler() slog.Handler {
	mu.Lock()
	w, l, f := console, level, format
	mu.Unlock()

	if f == FormatHuman {
		return NewHumanHandler(w, &HumanHandlerOptions{
			Level:     l,
			UseColors: isTerminal(w),
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
}

// isTerminal returns true if the writer is a terminal (supports colors)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output
	Level slog.Level
	// UseColors enables ANSI color codes
	UseColors bool
}

// HumanHandler is a slog handler that outputs human-readable log messages.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{
		opts:   *opts,
		writer: w,
	}
}

// Enabled returns true if the handler is enabled for the given level.
func (h *HumanHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.opts.Level
}

const maxInlineAttrs = 6

// Handle outputs a log record in human-readable format.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(h.prefix(r.Level, r.Message))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	var parts []string
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(a))
		return true
	})
	for _, a := range h.attrs {
		// run_id is noise on a console
		if a.Key == "run_id" {
			continue
		}
		parts = append(parts, formatAttr(a))
	}

	if len(parts) > 0 {
		n := len(parts)
		if n > maxInlineAttrs {
			n = maxInlineAttrs
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(parts[:n], " "))
		if len(parts) > maxInlineAttrs {
			fmt.Fprintf(&sb, " (+%d more)", len(parts)-maxInlineAttrs)
		}
	}

	sb.WriteString("\n")
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &HumanHandler{opts: h.opts, writer: h.writer, attrs: merged}
}

// WithGroup returns the handler unchanged; the console format is flat.
func (h *HumanHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *HumanHandler) prefix(l slog.Level, message string) string {
	const (
		colorReset  = "\033[0m"
		colorRed    = "\033[31m"
		colorYellow = "\033[33m"
		colorGreen  = "\033[32m"
		colorCyan   = "\033[36m"
	)

	msg := strings.ToLower(message)
	success := strings.Contains(msg, "completed") || strings.Contains(msg, "succeeded")

	var prefix, color string
	switch {
	case l >= slog.LevelError:
		prefix, color = "✗", colorRed
	case l >= slog.LevelWarn:
		prefix, color = "⚠", colorYellow
	case l >= slog.LevelInfo && success:
		prefix, color = "✓", colorGreen
	case l >= slog.LevelInfo:
		prefix, color = "ℹ", colorCyan
	default:
		prefix, color = "·", colorReset
	}

	if h.opts.UseColors {
		return color + prefix + colorReset
	}
	return prefix
}

func formatAttr(a slog.Attr) string {
	switch v := a.Value.Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, FormatDuration(v))
	case float64:
		return fmt.Sprintf("%s=%.3f", a.Key, v)
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}

// FormatMetricsHuman formats run metrics as one line.
func FormatMetricsHuman(metrics ExecutionMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyzed %d of %d records in %s",
		metrics.RecordsRetained, metrics.RecordsLoaded, FormatDuration(metrics.TotalDuration))
	if dropped := metrics.RecordsDropped(); dropped > 0 {
		fmt.Fprintf(&sb, ", %d dropped", dropped)
	}
	return sb.String()
}

var logFile *os.File

// maxLogFileSize is the size at which an existing log file is rotated (10MB)
const maxLogFileSize = 10 * 1024 * 1024

func rotateLogFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking log file size: %w", err)
	}
	if info.Size() < maxLogFileSize {
		return nil
	}
	rotated := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotating log file: %w", err)
	}
	return nil
}

// SetLogFile configures logging to write to both the console and the given file.
// File logs are always JSON. An existing file over 10MB is renamed with a timestamp suffix.
func SetLogFile(path string, l slog.Level, consoleFormat OutputFormat) error {
	CloseLogFile()

	if err := rotateLogFile(path); err != nil {
		Warn("log rotation failed", slog.String("error", err.Error()))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f

	mu.Lock()
	level = l
	format = consoleFormat
	mu.Unlock()

	Logger = slog.New(&dualHandler{
		console: newConsoleHandler(),
		file:    slog.NewJSONHandler(f, &slog.HandlerOptions{Level: l}),
	})

	Debug("log file opened",
		slog.String("path", path),
		slog.String("console_format", formatName(consoleFormat)),
	)
	return nil
}

// CloseLogFile closes the current log file if one is open and restores console-only logging.
func CloseLogFile() {
	if logFile == nil {
		return
	}
	f := logFile
	logFile = nil
	Logger = slog.New(newConsoleHandler())
	if err := f.Sync(); err != nil {
		Warn("failed to sync log file", slog.String("error", err.Error()))
	}
	if err := f.Close(); err != nil {
		Warn("failed to close log file", slog.String("error", err.Error()))
	}
}

func formatName(f OutputFormat) string {
	if f == FormatHuman {
		return "human"
	}
	return "json"
}

// dualHandler writes every record to both the console and the file handler.
type dualHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (d *dualHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return d.console.Enabled(ctx, l) || d.file.Enabled(ctx, l)
}

func (d *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	if d.console.Enabled(ctx, r.Level) {
		if err := d.console.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if d.file.Enabled(ctx, r.Level) {
		if err := d.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (d *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		console: d.console.WithAttrs(attrs),
		file:    d.file.WithAttrs(attrs),
	}
}

func (d *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		console: d.console.WithGroup(name),
		file:    d.file.WithGroup(name),
	}
}
