package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// Error codes for mapping module
const (
	ErrCodeInvalidMapping  = "INVALID_MAPPING"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeTypeConversion  = "TYPE_CONVERSION"
	ErrCodeTransformFailed = "TRANSFORM_FAILED"
)

// OnMissing behavior constants
const (
	OnMissingSetNull    = "setNull"
	OnMissingSkipField  = "skipField"
	OnMissingUseDefault = "useDefault"
	OnMissingFail       = "fail"
)

// typeConversionOps is the set of transform operations that perform type conversion.
var typeConversionOps = map[string]bool{
	"toString": true,
	"toInt":    true,
	"toFloat":  true,
}

// ErrInvalidMapping is returned when a mapping configuration is invalid
var ErrInvalidMapping = errors.New("invalid mapping configuration")

// FieldMapping copies one source value, possibly nested, into a target column.
type FieldMapping struct {
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	DefaultValue interface{}   `json:"defaultValue,omitempty"`
	OnMissing    string        `json:"onMissing,omitempty"`
	Transforms   []TransformOp `json:"transforms,omitempty"`
}

// TransformOp represents a transform operation configuration.
type TransformOp struct {
	Op          string `json:"op"`
	Pattern     string `json:"pattern,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}

// MappingConfig represents the configuration for a mapping filter module.
type MappingConfig struct {
	Mappings []FieldMapping `json:"mappings"`
	// DropUnmapped keeps only the target columns when true
	DropUnmapped bool `json:"dropUnmapped,omitempty"`
	// OnError specifies error handling mode: "fail" (default), "skip", "log"
	OnError string `json:"onError,omitempty"`
}

type compiledMapping struct {
	FieldMapping
	patterns []*regexp.Regexp // per transform; nil unless op is replace
}

// MappingModule renames columns and lifts nested values into the flat columns
// the analysis reads, e.g. "movie.year" to "Released_Year".
type MappingModule struct {
	mappings     []compiledMapping
	dropUnmapped bool
	onError      string
}

// MappingError carries structured context for a failed mapping.
type MappingError struct {
	Code         string
	Message      string
	RecordIndex  int
	MappingIndex int
	SourceField  string
	TargetField  string
	TransformOp  string
}

func (e *MappingError) Error() string {
	return e.Message
}

// NewMappingFromConfig validates the mappings and compiles replace patterns.
func NewMappingFromConfig(config MappingConfig) (*MappingModule, error) {
	if len(config.Mappings) == 0 {
		return nil, fmt.Errorf("%w: at least one mapping is required", ErrInvalidMapping)
	}

	onError, valid := normalizeOnError(config.OnError)
	if !valid {
		logger.Warn("invalid onError value for mapping module; defaulting to fail",
			slog.String("on_error", config.OnError),
		)
	}

	mappings := make([]compiledMapping, 0, len(config.Mappings))
	for i, m := range config.Mappings {
		cm, err := compileMapping(m, i)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, cm)
	}

	logger.Debug("mapping module initialized",
		slog.Int("mapping_count", len(mappings)),
		slog.Bool("drop_unmapped", config.DropUnmapped),
		slog.String("on_error", onError),
	)

	return &MappingModule{mappings: mappings, dropUnmapped: config.DropUnmapped, onError: onError}, nil
}

func compileMapping(m FieldMapping, index int) (compiledMapping, error) {
	cm := compiledMapping{FieldMapping: m}
	if m.Source == "" || m.Target == "" {
		return cm, fmt.Errorf("%w at index %d: mapping must have both source and target fields", ErrInvalidMapping, index)
	}
	for _, part := range strings.Split(m.Source, ".") {
		if part == "" {
			return cm, fmt.Errorf("%w at index %d: %w in %q", ErrInvalidMapping, index, ErrEmptyPath, m.Source)
		}
		if _, _, _, err := ParsePathPart(part); err != nil {
			return cm, fmt.Errorf("%w at index %d: %w", ErrInvalidMapping, index, err)
		}
	}

	switch m.OnMissing {
	case "":
		cm.OnMissing = OnMissingSetNull
	case OnMissingSetNull, OnMissingSkipField, OnMissingUseDefault, OnMissingFail:
	default:
		return cm, fmt.Errorf("%w at index %d: unknown onMissing %q", ErrInvalidMapping, index, m.OnMissing)
	}

	cm.patterns = make([]*regexp.Regexp, len(m.Transforms))
	for i, t := range m.Transforms {
		switch t.Op {
		case "trim", "lowercase", "uppercase", "toString", "toInt", "toFloat":
		case "replace":
			re, err := regexp.Compile(t.Pattern)
			if err != nil {
				return cm, fmt.Errorf("%w at index %d: invalid regex pattern in transform %d: %v", ErrInvalidMapping, index, i, err)
			}
			cm.patterns[i] = re
		default:
			return cm, fmt.Errorf("%w at index %d: unknown transform %q", ErrInvalidMapping, index, t.Op)
		}
	}
	return cm, nil
}

// ParseMappingConfig parses a raw configuration map into MappingConfig.
// Accepts mapping lists decoded from JSON or YAML.
func ParseMappingConfig(config map[string]interface{}) (MappingConfig, error) {
	var cfg MappingConfig
	raw, ok := config["mappings"].([]interface{})
	if !ok || len(raw) == 0 {
		return cfg, errors.New("'mappings' is required and must be a non-empty array")
	}
	for i, item := range raw {
		data, ok := item.(map[string]interface{})
		if !ok {
			return cfg, fmt.Errorf("mapping at index %d must be an object", i)
		}
		m, err := parseFieldMapping(data, i)
		if err != nil {
			return cfg, err
		}
		cfg.Mappings = append(cfg.Mappings, m)
	}
	if drop, ok := config["dropUnmapped"].(bool); ok {
		cfg.DropUnmapped = drop
	}
	if onError, ok := config["onError"].(string); ok {
		cfg.OnError = onError
	}
	return cfg, nil
}

func parseFieldMapping(data map[string]interface{}, index int) (FieldMapping, error) {
	var m FieldMapping
	m.Source, _ = data["source"].(string)
	m.Target, _ = data["target"].(string)
	m.DefaultValue = data["defaultValue"]
	m.OnMissing, _ = data["onMissing"].(string)

	list, ok := data["transforms"].([]interface{})
	if !ok {
		return m, nil
	}
	for i, item := range list {
		switch v := item.(type) {
		case string:
			m.Transforms = append(m.Transforms, TransformOp{Op: v})
		case map[string]interface{}:
			op, _ := v["op"].(string)
			if op == "" {
				return m, fmt.Errorf("transform op missing at mapping %d index %d", index, i)
			}
			pattern, _ := v["pattern"].(string)
			replacement, _ := v["replacement"].(string)
			m.Transforms = append(m.Transforms, TransformOp{Op: op, Pattern: pattern, Replacement: replacement})
		default:
			return m, fmt.Errorf("transform op at mapping %d index %d must be an object or string", index, i)
		}
	}
	return m, nil
}

// Process applies the mappings to every row. Input rows are not modified.
func (m *MappingModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}
		if record == nil {
			result = append(result, nil)
			continue
		}

		out, err := m.processRecord(record, i)
		if err == nil {
			result = append(result, out)
			continue
		}

		var mappingErr *MappingError
		errors.As(err, &mappingErr)
		switch m.onError {
		case OnErrorSkip:
			logger.Warn("skipping record due to mapping error", mappingAttrs(mappingErr, err)...)
		case OnErrorLog:
			logger.Error("mapping error (continuing)", mappingAttrs(mappingErr, err)...)
			result = append(result, out)
		default:
			return nil, err
		}
	}
	return result, nil
}

func mappingAttrs(mappingErr *MappingError, err error) []any {
	if mappingErr == nil {
		return []any{slog.String("error", err.Error())}
	}
	return []any{
		slog.Int("record_index", mappingErr.RecordIndex),
		slog.Int("mapping_index", mappingErr.MappingIndex),
		slog.String("source_field", mappingErr.SourceField),
		slog.String("target_field", mappingErr.TargetField),
		slog.String("transform_op", mappingErr.TransformOp),
		slog.String("error_code", mappingErr.Code),
		slog.String("error", mappingErr.Error()),
	}
}

// processRecord returns the mapped row; on error the partially mapped row is
// returned with it.
func (m *MappingModule) processRecord(record map[string]interface{}, recordIdx int) (map[string]interface{}, error) {
	var out map[string]interface{}
	if m.dropUnmapped {
		out = make(map[string]interface{}, len(m.mappings))
	} else {
		out = copyRecord(record)
	}

	for mappingIdx, mapping := range m.mappings {
		value, found := GetNestedValue(record, mapping.Source)
		if !found {
			switch mapping.OnMissing {
			case OnMissingSkipField:
				continue
			case OnMissingUseDefault:
				value = mapping.DefaultValue
			case OnMissingFail:
				return out, &MappingError{
					Code: ErrCodeMissingField,
					Message: fmt.Sprintf("missing required field %q for target %q at record %d, mapping %d",
						mapping.Source, mapping.Target, recordIdx, mappingIdx),
					RecordIndex:  recordIdx,
					MappingIndex: mappingIdx,
					SourceField:  mapping.Source,
					TargetField:  mapping.Target,
				}
			default:
				value = nil
			}
		}

		transformed, op, err := mapping.apply(value)
		if err != nil {
			code := ErrCodeTransformFailed
			if typeConversionOps[op] {
				code = ErrCodeTypeConversion
			}
			return out, &MappingError{
				Code: code,
				Message: fmt.Sprintf("transform %s failed for field %q -> %q at record %d, mapping %d: %v",
					op, mapping.Source, mapping.Target, recordIdx, mappingIdx, err),
				RecordIndex:  recordIdx,
				MappingIndex: mappingIdx,
				SourceField:  mapping.Source,
				TargetField:  mapping.Target,
				TransformOp:  op,
			}
		}
		out[mapping.Target] = transformed
	}
	return out, nil
}

// apply runs the transforms in order. Missing values pass through untouched.
// On failure it also returns the failing op.
func (cm compiledMapping) apply(value interface{}) (interface{}, string, error) {
	for i, t := range cm.Transforms {
		if IsMissing(value) {
			return nil, "", nil
		}
		var err error
		value, err = applyTransform(t.Op, value, cm.patterns[i], t.Replacement)
		if err != nil {
			return nil, t.Op, err
		}
	}
	return value, "", nil
}

func applyTransform(op string, value interface{}, pattern *regexp.Regexp, replacement string) (interface{}, error) {
	switch op {
	case "trim":
		return mapString(value, strings.TrimSpace), nil
	case "lowercase":
		return mapString(value, strings.ToLower), nil
	case "uppercase":
		return mapString(value, strings.ToUpper), nil
	case "replace":
		return mapString(value, func(s string) string {
			return pattern.ReplaceAllString(s, replacement)
		}), nil
	case "toString":
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool, int, int64:
			return fmt.Sprint(v), nil
		default:
			return nil, fmt.Errorf("cannot convert %T to string", value)
		}
	case "toFloat":
		f, ok := ToFloat(value)
		if !ok {
			return nil, fmt.Errorf("cannot convert %v to float", value)
		}
		return f, nil
	case "toInt":
		f, ok := ToFloat(value)
		if !ok || f != float64(int(f)) {
			return nil, fmt.Errorf("cannot convert %v to int", value)
		}
		return int(f), nil
	default:
		return value, nil
	}
}

func mapString(value interface{}, fn func(string) string) interface{} {
	if s, ok := value.(string); ok {
		return fn(s)
	}
	return value
}

var _ Module = (*MappingModule)(nil)
