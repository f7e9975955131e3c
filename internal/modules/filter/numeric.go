package filter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// NumericConfig represents the configuration for a numeric coercion filter.
type NumericConfig struct {
	// Fields are coerced to float64.
	Fields []string `json:"fields"`
	// Integer fields are coerced to int and must hold whole numbers.
	Integer []string `json:"integer,omitempty"`
}

// NumericModule coerces columns to numbers. A value that does not parse becomes
// missing (nil); coercion never fails a row by itself.
//
// Accepted input: numbers, and strings holding a decimal or exponent literal with
// optional surrounding whitespace. NaN and infinity spellings are not numbers.
type NumericModule struct {
	fields  []string
	integer map[string]bool
}

// NewNumericFromConfig creates a numeric filter module.
func NewNumericFromConfig(config NumericConfig) (*NumericModule, error) {
	integer := make(map[string]bool, len(config.Integer))
	fields := make([]string, 0, len(config.Fields)+len(config.Integer))
	seen := make(map[string]bool)
	for _, f := range config.Integer {
		integer[f] = true
	}
	for _, f := range append(append([]string{}, config.Fields...), config.Integer...) {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, errors.New("at least one field is required")
	}
	return &NumericModule{fields: fields, integer: integer}, nil
}

// ParseNumericConfig parses a raw configuration map into NumericConfig.
func ParseNumericConfig(config map[string]interface{}) (NumericConfig, error) {
	cfg := NumericConfig{
		Fields:  stringList(config["fields"]),
		Integer: stringList(config["integer"]),
	}
	if len(cfg.Fields) == 0 && len(cfg.Integer) == 0 {
		return cfg, errors.New("'fields' or 'integer' is required")
	}
	return cfg, nil
}

// Process implements the filter.Module interface.
// Input rows are not modified; coerced rows are copies.
func (m *NumericModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	failed := 0
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}
		if record == nil {
			result = append(result, nil)
			continue
		}
		out := copyRecord(record)
		for _, f := range m.fields {
			v, ok := out[f]
			if !ok {
				continue
			}
			coerced, ok := m.coerce(f, v)
			if !ok && !IsMissing(v) {
				failed++
			}
			out[f] = coerced
		}
		result = append(result, out)
	}

	if failed > 0 {
		logger.Debug("values failed numeric coercion",
			slog.String("module_type", "numeric"),
			slog.Int("failed", failed),
		)
	}
	return result, nil
}

// coerce returns the numeric value of v, or nil and false.
func (m *NumericModule) coerce(field string, v interface{}) (interface{}, bool) {
	f, ok := ToFloat(v)
	if !ok {
		return nil, false
	}
	if !m.integer[field] {
		return f, true
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, false
	}
	return int(f), true
}

// ToFloat converts a row value to a finite float64.
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" || !looksNumeric(s) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// looksNumeric rejects the spellings strconv accepts beyond plain decimal
// literals: inf, nan and hexadecimal forms.
func looksNumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

var _ Module = (*NumericModule)(nil)
