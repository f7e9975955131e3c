package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// Error codes for condition module
const (
	ErrCodeInvalidExpression = "INVALID_EXPRESSION"
	ErrCodeEvaluationFailed  = "EVALUATION_FAILED"
)

var (
	// ErrEmptyExpression is returned when no expression is configured
	ErrEmptyExpression = errors.New("expression cannot be empty")
	// ErrInvalidExpression is returned when the expression syntax is invalid
	ErrInvalidExpression = errors.New("invalid expression syntax")
)

// ConditionConfig represents the configuration for a condition filter module.
type ConditionConfig struct {
	// Expression is an expr-lang boolean expression over the row columns (required)
	Expression string `json:"expression"`
	// Negate keeps rows for which the expression is false instead
	Negate bool `json:"negate,omitempty"`
	// OnError specifies error handling mode: "fail" (default), "skip", "log"
	OnError string `json:"onError,omitempty"`
}

// ConditionModule keeps the rows for which an expression holds.
// Column values are exposed as variables; a column absent from a row is nil.
//
// Example: `Genre contains "Drama" && int(Released_Year) >= 1950`
type ConditionModule struct {
	expression string
	negate     bool
	onError    string
	program    *vm.Program
}

// ConditionError carries structured context for condition evaluation failures.
type ConditionError struct {
	Code        string
	Message     string
	Expression  string
	RecordIndex int
}

func (e *ConditionError) Error() string {
	return e.Message
}

// NewConditionFromConfig creates a new condition filter module from configuration.
func NewConditionFromConfig(config ConditionConfig) (*ConditionModule, error) {
	if strings.TrimSpace(config.Expression) == "" {
		return nil, ErrEmptyExpression
	}

	onError, valid := normalizeOnError(config.OnError)
	if !valid {
		logger.Warn("invalid onError value for condition module; defaulting to fail",
			slog.String("on_error", config.OnError),
		)
	}

	program, err := expr.Compile(config.Expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	logger.Debug("condition module initialized",
		slog.String("expression", config.Expression),
		slog.Bool("negate", config.Negate),
		slog.String("on_error", onError),
	)

	return &ConditionModule{
		expression: config.Expression,
		negate:     config.Negate,
		onError:    onError,
		program:    program,
	}, nil
}

// ParseConditionConfig parses a raw configuration map into ConditionConfig.
func ParseConditionConfig(config map[string]interface{}) (ConditionConfig, error) {
	var cfg ConditionConfig
	expression, ok := config["expression"].(string)
	if !ok || strings.TrimSpace(expression) == "" {
		return cfg, errors.New("'expression' is required and must be a string")
	}
	cfg.Expression = expression
	if negate, ok := config["negate"].(bool); ok {
		cfg.Negate = negate
	}
	if onError, ok := config["onError"].(string); ok {
		cfg.OnError = onError
	}
	return cfg, nil
}

// Process filters rows on the condition expression.
func (c *ConditionModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}

		output, err := expr.Run(c.program, record)
		if err != nil {
			condErr := &ConditionError{
				Code:        ErrCodeEvaluationFailed,
				Message:     fmt.Sprintf("condition evaluation failed at record %d: %v", i, err),
				Expression:  c.expression,
				RecordIndex: i,
			}
			switch c.onError {
			case OnErrorSkip:
				logger.Warn("skipping record due to condition evaluation error",
					slog.Int("record_index", i),
					slog.String("expression", c.expression),
					slog.String("error", err.Error()),
				)
				continue
			case OnErrorLog:
				logger.Error("condition evaluation error (keeping record)",
					slog.Int("record_index", i),
					slog.String("expression", c.expression),
					slog.String("error", err.Error()),
				)
				result = append(result, record)
				continue
			default:
				return nil, condErr
			}
		}

		if toBool(output) != c.negate {
			result = append(result, record)
		}
	}

	logger.Debug("condition filter applied",
		slog.String("expression", c.expression),
		slog.Int("input_records", len(records)),
		slog.Int("output_records", len(result)),
	)
	return result, nil
}

// toBool converts an expression result to boolean.
func toBool(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

var _ Module = (*ConditionModule)(nil)
