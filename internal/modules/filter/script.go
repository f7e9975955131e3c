package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
)

// Error codes for script module
const (
	ErrCodeScriptEmpty          = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong        = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed    = "COMPILATION_FAILED"
	ErrCodeMissingTransform     = "MISSING_TRANSFORM"
	ErrCodeExecutionFailed      = "EXECUTION_FAILED"
	ErrCodeInvalidScriptFile    = "INVALID_SCRIPT_FILE"
	ErrCodeScriptFileReadFailed = "SCRIPT_FILE_READ_FAILED"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB)
const MaxScriptLength = 100 * 1024

var (
	// ErrScriptEmpty is returned when the script is empty or whitespace-only
	ErrScriptEmpty = errors.New("script cannot be empty")
	// ErrMissingTransformFunc is returned when the script doesn't define a transform function
	ErrMissingTransformFunc = errors.New("transform function not found in script")
)

// ScriptConfig represents the configuration for a script filter module.
// Exactly one of Script or ScriptFile must be provided.
type ScriptConfig struct {
	// Script is inline JavaScript defining transform(row)
	Script string `json:"script,omitempty"`
	// ScriptFile is the path to a JavaScript file defining transform(row)
	ScriptFile string `json:"scriptFile,omitempty"`
	// OnError specifies error handling mode: "fail" (default), "skip", "log"
	OnError string `json:"onError,omitempty"`
}

// ScriptModule runs a JavaScript transform(row) function on every row.
// The function returns the (possibly modified) row, or null/undefined to drop it.
//
// A goja runtime is not goroutine-safe; Process must not be called concurrently
// on the same instance.
type ScriptModule struct {
	onError     string
	runtime     *goja.Runtime
	console     *jsConsole
	transformFn goja.Callable
	interruptMu sync.Mutex
}

// ScriptError carries structured context for script failures.
type ScriptError struct {
	Code        string
	Message     string
	RecordIndex int
	Err         error
}

func (e *ScriptError) Error() string {
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func newScriptError(code, message string, recordIdx int, err error) *ScriptError {
	return &ScriptError{Code: code, Message: message, RecordIndex: recordIdx, Err: err}
}

// NewScriptFromConfig compiles the script and resolves its transform function.
func NewScriptFromConfig(config ScriptConfig) (*ScriptModule, error) {
	source, err := resolveScriptSource(config)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, newScriptError(ErrCodeScriptEmpty, "script cannot be empty", -1, ErrScriptEmpty)
	}
	if len(source) > MaxScriptLength {
		return nil, newScriptError(ErrCodeScriptTooLong,
			fmt.Sprintf("script exceeds maximum length: %d bytes exceeds maximum %d bytes", len(source), MaxScriptLength), -1, nil)
	}

	onError, valid := normalizeOnError(config.OnError)
	if !valid {
		logger.Warn("invalid onError value for script module; defaulting to fail",
			slog.String("on_error", config.OnError),
		)
	}

	rt := goja.New()
	console, err := newJSConsole(rt)
	if err != nil {
		return nil, newScriptError(ErrCodeCompilationFailed, fmt.Sprintf("installing console: %v", err), -1, err)
	}
	if _, err := rt.RunString(source); err != nil {
		return nil, newScriptError(ErrCodeCompilationFailed, fmt.Sprintf("script compilation failed: %v", err), -1, err)
	}

	fn, ok := goja.AssertFunction(rt.Get("transform"))
	if !ok {
		return nil, newScriptError(ErrCodeMissingTransform, "transform function not found in script", -1, ErrMissingTransformFunc)
	}

	logger.Debug("script module initialized",
		slog.Int("script_length", len(source)),
		slog.String("on_error", onError),
		slog.Bool("from_file", config.ScriptFile != ""),
	)

	return &ScriptModule{onError: onError, runtime: rt, console: console, transformFn: fn}, nil
}

func resolveScriptSource(config ScriptConfig) (string, error) {
	if config.Script != "" && config.ScriptFile != "" {
		return "", newScriptError(ErrCodeInvalidScriptFile, "cannot specify both 'script' and 'scriptFile' - use only one", -1, nil)
	}
	if config.ScriptFile == "" {
		return config.Script, nil
	}

	if err := pathutil.ValidateFilePath(config.ScriptFile); err != nil {
		return "", newScriptError(ErrCodeInvalidScriptFile, err.Error(), -1, err)
	}

	path := filepath.Clean(config.ScriptFile)
	file, err := os.Open(path)
	if err != nil {
		return "", newScriptError(ErrCodeScriptFileReadFailed, fmt.Sprintf("opening script file %q: %v", path, err), -1, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Warn("failed to close script file",
				slog.String("file", path),
				slog.String("error", closeErr.Error()),
			)
		}
	}()

	content, err := io.ReadAll(io.LimitReader(file, MaxScriptLength+1))
	if err != nil {
		return "", newScriptError(ErrCodeScriptFileReadFailed, fmt.Sprintf("reading script file %q: %v", path, err), -1, err)
	}
	if len(content) > MaxScriptLength {
		return "", newScriptError(ErrCodeScriptTooLong,
			fmt.Sprintf("script file %q exceeds maximum length of %d bytes", path, MaxScriptLength), -1, nil)
	}
	return string(content), nil
}

// ParseScriptConfig parses a script filter configuration from raw config.
func ParseScriptConfig(cfg map[string]interface{}) (ScriptConfig, error) {
	var config ScriptConfig

	script, hasScript := cfg["script"].(string)
	scriptFile, hasScriptFile := cfg["scriptFile"].(string)

	switch {
	case hasScript && hasScriptFile:
		return config, errors.New("cannot specify both 'script' and 'scriptFile' - use only one")
	case !hasScript && !hasScriptFile:
		return config, errors.New("either 'script' or 'scriptFile' is required in script config")
	}

	config.Script = script
	config.ScriptFile = scriptFile
	if onError, ok := cfg["onError"].(string); ok {
		config.OnError = onError
	}
	return config, nil
}

// Process applies transform to each row.
func (m *ScriptModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	dropped := 0
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}

		out, err := m.processRecord(ctx, record, i)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			switch m.onError {
			case OnErrorSkip:
				logger.Warn("skipping record due to script error",
					slog.Int("record_index", i),
					slog.String("error", err.Error()),
				)
				continue
			case OnErrorLog:
				logger.Error("script error (keeping original record)",
					slog.Int("record_index", i),
					slog.String("error", err.Error()),
				)
				result = append(result, record)
				continue
			default:
				return nil, err
			}
		}
		if out == nil {
			dropped++
			continue
		}
		result = append(result, out)
	}

	logger.Debug("script filter applied",
		slog.Int("input_records", len(records)),
		slog.Int("output_records", len(result)),
		slog.Int("dropped", dropped),
	)
	return result, nil
}

// processRecord calls transform on one row. A nil map with a nil error means drop.
func (m *ScriptModule) processRecord(ctx context.Context, record map[string]interface{}, idx int) (map[string]interface{}, error) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			m.interruptMu.Lock()
			m.runtime.Interrupt(ctx.Err().Error())
			m.interruptMu.Unlock()
		case <-done:
		}
	}()

	m.console.SetRecordIndex(idx)
	value, err := m.transformFn(goja.Undefined(), m.runtime.ToValue(copyRecord(record)))
	m.console.SetRecordIndex(-1)

	m.interruptMu.Lock()
	m.runtime.ClearInterrupt()
	m.interruptMu.Unlock()

	if err != nil {
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			return nil, newScriptError(ErrCodeExecutionFailed,
				fmt.Sprintf("script execution failed at record %d: %v", idx, jsErr.Value()), idx, err)
		}
		return nil, newScriptError(ErrCodeExecutionFailed,
			fmt.Sprintf("script execution failed at record %d: %v", idx, err), idx, err)
	}

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}

	obj, ok := value.(*goja.Object)
	if !ok || obj.ClassName() == "Array" {
		return nil, newScriptError(ErrCodeExecutionFailed,
			fmt.Sprintf("script at record %d returned %T - transform must return an object or null", idx, value.Export()), idx, nil)
	}

	var out map[string]interface{}
	if err := m.runtime.ExportTo(value, &out); err != nil {
		return nil, newScriptError(ErrCodeExecutionFailed,
			fmt.Sprintf("converting script result at record %d: %v", idx, err), idx, err)
	}
	return out, nil
}

var _ Module = (*ScriptModule)(nil)
