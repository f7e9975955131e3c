package filter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dop251/goja"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// MaxLogMessageLength is the maximum length of a single script log message (8KB)
const MaxLogMessageLength = 8 * 1024

// jsConsole routes console.log/info/warn/error/debug calls made by a script
// filter to the structured logger.
type jsConsole struct {
	recordIdx int
}

// newJSConsole registers a console object in the runtime.
func newJSConsole(rt *goja.Runtime) (*jsConsole, error) {
	c := &jsConsole{recordIdx: -1}

	console := rt.NewObject()
	for name, level := range map[string]slog.Level{
		"log":   slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"debug": slog.LevelDebug,
	} {
		level := level
		fn := func(call goja.FunctionCall) goja.Value {
			c.logWithLevel(level, call.Arguments)
			return goja.Undefined()
		}
		if err := console.Set(name, fn); err != nil {
			return nil, fmt.Errorf("console.Set(%q): %w", name, err)
		}
	}
	if err := rt.Set("console", console); err != nil {
		return nil, fmt.Errorf("runtime.Set(console): %w", err)
	}
	return c, nil
}

// SetRecordIndex sets the row index attached to subsequent messages; -1 clears it.
func (c *jsConsole) SetRecordIndex(idx int) {
	c.recordIdx = idx
}

func (c *jsConsole) logWithLevel(level slog.Level, args []goja.Value) {
	message := formatConsoleArgs(args)
	if len(message) > MaxLogMessageLength {
		message = message[:MaxLogMessageLength-3] + "..."
	}

	attrs := []any{
		slog.String("source", "javascript"),
		slog.String("module_type", "script"),
	}
	if c.recordIdx >= 0 {
		attrs = append(attrs, slog.Int("record_index", c.recordIdx))
	}

	switch level {
	case slog.LevelDebug:
		logger.Debug(message, attrs...)
	case slog.LevelWarn:
		logger.Warn(message, attrs...)
	case slog.LevelError:
		logger.Error(message, attrs...)
	default:
		logger.Info(message, attrs...)
	}
}

// formatConsoleArgs joins arguments the way console.log does: strings as-is,
// objects and arrays as JSON.
func formatConsoleArgs(args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatConsoleValue(arg))
	}
	return strings.Join(parts, " ")
}

func formatConsoleValue(val goja.Value) string {
	if val == nil || goja.IsUndefined(val) {
		return "undefined"
	}
	if goja.IsNull(val) {
		return "null"
	}

	switch v := val.Export().(type) {
	case string:
		return v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			// cyclic objects cannot be marshaled
			return "[Object]"
		}
		return string(data)
	default:
		return val.String()
	}
}
