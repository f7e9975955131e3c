// Package template expands {{var}} placeholders in output paths.
//
// Variables are looked up with dot notation in a nested map built from the run,
// for example {{run.id}} or {{analysis.name}}. A variable may carry a default:
// {{analysis.name | default: "report"}}.
package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// Template syntax constants
const (
	TemplatePrefix = "{{"
	TemplateSuffix = "}}"
)

// Error messages for template validation
const (
	ErrMsgInvalidTemplateSyntax = "invalid template syntax"
	ErrMsgEmptyVariablePath     = "empty variable path"
)

// Group 1: variable path, group 2: optional default clause, group 3: default value.
var templateVarRegex = regexp.MustCompile(`\{\{\s*([^|}]+?)(\s*\|\s*default:\s*"([^"]*)")?\s*\}\}`)

var emptyBracesRegex = regexp.MustCompile(`\{\{\s*\}\}`)

// Variable is one parsed placeholder.
type Variable struct {
	FullMatch    string
	Path         string
	DefaultValue string
	HasDefault   bool
}

// Evaluator expands templates. It caches parsed templates and is not safe for
// concurrent use.
type Evaluator struct {
	cache map[string][]Variable
}

// NewEvaluator creates a new template evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string][]Variable)}
}

// HasVariables checks if a string contains template variables.
func HasVariables(s string) bool {
	return strings.Contains(s, TemplatePrefix) && strings.Contains(s, TemplateSuffix)
}

// ParseVariables extracts all template variables from a template string.
func (e *Evaluator) ParseVariables(template string) []Variable {
	if cached, ok := e.cache[template]; ok {
		return cached
	}

	matches := templateVarRegex.FindAllStringSubmatch(template, -1)
	variables := make([]Variable, 0, len(matches))
	for _, match := range matches {
		v := Variable{
			FullMatch: match[0],
			Path:      strings.TrimSpace(match[1]),
		}
		if match[2] != "" {
			v.DefaultValue = match[3]
			v.HasDefault = true
		}
		variables = append(variables, v)
	}

	e.cache[template] = variables
	return variables
}

// Evaluate replaces every placeholder with its value from vars.
// Missing or nil values expand to the default, or to "" with a warning.
func (e *Evaluator) Evaluate(template string, vars map[string]interface{}) string {
	if !HasVariables(template) {
		return template
	}

	result := template
	for _, v := range e.ParseVariables(template) {
		result = strings.Replace(result, v.FullMatch, e.resolveVariable(v, vars), 1)
	}
	return result
}

func (e *Evaluator) resolveVariable(v Variable, vars map[string]interface{}) string {
	value, found := GetNestedValue(vars, v.Path)
	if found && value != nil {
		return ValueToString(value)
	}
	if v.HasDefault {
		return v.DefaultValue
	}
	logger.Warn("template variable missing, using empty string",
		slog.String("path", v.Path),
	)
	return ""
}

// GetNestedValue extracts a value from nested maps using dot notation.
func GetNestedValue(obj map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	var current interface{} = obj
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// ValueToString converts any value to its string representation.
func ValueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ValidateSyntax reports unbalanced or empty placeholders.
func ValidateSyntax(template string) error {
	if template == "" {
		return nil
	}

	openCount := strings.Count(template, TemplatePrefix)
	closeCount := strings.Count(template, TemplateSuffix)
	if openCount != closeCount {
		return fmt.Errorf("%s: unmatched template delimiters (found %d '{{' and %d '}}')",
			ErrMsgInvalidTemplateSyntax, openCount, closeCount)
	}
	if openCount == 0 {
		return nil
	}

	if emptyBracesRegex.MatchString(template) {
		return fmt.Errorf("%s: %s", ErrMsgInvalidTemplateSyntax, ErrMsgEmptyVariablePath)
	}
	remainder := templateVarRegex.ReplaceAllString(template, "")
	if strings.Contains(remainder, TemplatePrefix) || strings.Contains(remainder, TemplateSuffix) {
		return fmt.Errorf("%s: stray '{{' or '}}'", ErrMsgInvalidTemplateSyntax)
	}
	return nil
}
