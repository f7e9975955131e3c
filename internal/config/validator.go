package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/template"
)

//go:embed schema/analysis-schema.json
var embeddedSchema []byte

const schemaURL = "https://imdbstats.dev/schemas/analysis/v1.0.0/analysis-schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// GetEmbeddedSchema returns the embedded analysis schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema compiles the embedded schema once.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
		if schemaInitErr != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", schemaInitErr)
		}
	})
	return compiledSchema, schemaInitErr
}

// ValidateConfig validates a parsed configuration against the analysis schema,
// then checks the rules the schema cannot express.
func ValidateConfig(data map[string]interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	fail := func(errs ...ValidationError) *ValidationResult {
		result.Valid = false
		result.Errors = append(result.Errors, errs...)
		return result
	}

	if data == nil {
		return fail(ValidationError{Path: "/", Type: ErrorTypeRequired, Message: "configuration data is nil"})
	}
	if len(data) == 0 {
		return fail(ValidationError{Path: "/", Type: ErrorTypeRequired, Message: "configuration data is empty"})
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return fail(ValidationError{Path: "/", Type: ErrorTypeSchema, Message: fmt.Sprintf("failed to load schema: %v", err)})
	}

	if err := schema.Validate(data); err != nil {
		var detailed *jsonschema.ValidationError
		if errors.As(err, &detailed) {
			if errs := convertValidationErrors(data, detailed); len(errs) > 0 {
				return fail(errs...)
			}
		}
		return fail(ValidationError{Path: "/", Type: ErrorTypeSchema, Message: err.Error()})
	}

	if errs := validateSemantics(data); len(errs) > 0 {
		return fail(errs...)
	}
	return result
}

// validateSemantics assumes data passed the schema.
func validateSemantics(data map[string]interface{}) []ValidationError {
	analysis, _ := data["analysis"].(map[string]interface{})

	var errs []ValidationError
	if genres, ok := analysis["genres"].(map[string]interface{}); ok {
		a, _ := genres["a"].(string)
		b, _ := genres["b"].(string)
		if a == b {
			errs = append(errs, ValidationError{
				Path:     "/analysis/genres",
				Type:     ErrorTypeSemantic,
				Expected: "two different genres",
				Actual:   a,
				Message:  fmt.Sprintf("genres a and b must differ, both are %q", a),
			})
		}
	}

	outputs, _ := analysis["outputs"].([]interface{})
	for i, o := range outputs {
		module, _ := o.(map[string]interface{})
		cfg, _ := module["config"].(map[string]interface{})
		for _, key := range []string{"path", "dir"} {
			p, ok := cfg[key].(string)
			if !ok {
				continue
			}
			if err := template.ValidateSyntax(p); err != nil {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("/analysis/outputs/%d/config/%s", i, key),
					Module:  describeModule(analysis, "outputs", i),
					Type:    ErrorTypeTemplate,
					Actual:  p,
					Message: fmt.Sprintf("invalid path template: %v", err),
				})
			}
		}
	}
	return errs
}

// convertValidationErrors flattens a jsonschema error tree into its leaves.
func convertValidationErrors(data map[string]interface{}, err *jsonschema.ValidationError) []ValidationError {
	var out []ValidationError
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		v := ValidationError{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Module:  moduleAt(data, err.InstanceLocation),
			Message: err.Error(),
		}
		v.Type, v.Expected, v.Actual = classifyKind(err.ErrorKind)
		out = append(out, v)
	}
	for _, cause := range err.Causes {
		out = append(out, convertValidationErrors(data, cause)...)
	}
	return out
}

// formatInstanceLocation formats the instance location as a JSON pointer.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// classifyKind maps a jsonschema error kind to a validation kind and the
// expected and actual values it reports.
func classifyKind(k jsonschema.ErrorKind) (typ, expected, actual string) {
	switch k := k.(type) {
	case *kind.Required:
		return ErrorTypeRequired, strings.Join(k.Missing, ", "), ""
	case *kind.AdditionalProperties:
		return ErrorTypeUnknownKey, "", strings.Join(k.Properties, ", ")
	case *kind.Type:
		return ErrorTypeType, strings.Join(k.Want, " or "), k.Got
	case *kind.Enum:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = fmt.Sprint(w)
		}
		return ErrorTypeEnum, strings.Join(want, ", "), fmt.Sprint(k.Got)
	case *kind.Const:
		return ErrorTypeEnum, fmt.Sprint(k.Want), fmt.Sprint(k.Got)
	case *kind.Minimum:
		return ErrorTypeRange, ">= " + k.Want.RatString(), k.Got.RatString()
	case *kind.Maximum:
		return ErrorTypeRange, "<= " + k.Want.RatString(), k.Got.RatString()
	case *kind.MinItems:
		return ErrorTypeLength, fmt.Sprintf("at least %d items", k.Want), fmt.Sprint(k.Got)
	case *kind.MinLength:
		return ErrorTypeLength, fmt.Sprintf("at least %d characters", k.Want), fmt.Sprint(k.Got)
	case *kind.Pattern:
		return ErrorTypePattern, k.Want, k.Got
	default:
		return ErrorTypeSchema, "", ""
	}
}

// moduleAt names the pipeline module that contains loc, if any.
func moduleAt(data map[string]interface{}, loc []string) string {
	if len(loc) < 2 || loc[0] != "analysis" {
		return ""
	}
	analysis, _ := data["analysis"].(map[string]interface{})
	switch loc[1] {
	case "input":
		module, _ := analysis["input"].(map[string]interface{})
		if t, ok := module["type"].(string); ok && t != "" {
			return fmt.Sprintf("input (%s)", t)
		}
		return "input"
	case "filters", "outputs":
		if len(loc) < 3 {
			return ""
		}
		i, err := strconv.Atoi(loc[2])
		if err != nil {
			return ""
		}
		return describeModule(analysis, loc[1], i)
	}
	return ""
}

// describeModule names entry i of the filters or outputs list.
func describeModule(analysis map[string]interface{}, section string, i int) string {
	name := strings.TrimSuffix(section, "s")
	list, _ := analysis[section].([]interface{})
	if i < len(list) {
		module, _ := list[i].(map[string]interface{})
		if t, ok := module["type"].(string); ok && t != "" {
			return fmt.Sprintf("%s %d (%s)", name, i, t)
		}
	}
	return fmt.Sprintf("%s %d", name, i)
}
