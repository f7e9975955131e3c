package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrorsFor(t *testing.T, path string) []ValidationError {
	t.Helper()
	parsed := ParseFile(path)
	require.True(t, parsed.IsValid(), "failed to parse %s: %v", path, parsed.Errors)
	return ValidateConfig(parsed.Data).Errors
}

// findError returns the first error at path, failing the test if there is none.
func findError(t *testing.T, errs []ValidationError, path string) ValidationError {
	t.Helper()
	for _, err := range errs {
		if err.Path == path {
			return err
		}
	}
	require.Failf(t, "no validation error", "at %s, got %v", path, errs)
	return ValidationError{}
}

func TestValidateConfig_ValidConfigs(t *testing.T) {
	for _, path := range []string{
		"testdata/valid-config.json",
		"testdata/valid-config.yaml",
		"testdata/minimal.yml",
		"testdata/no-extension.conf",
	} {
		t.Run(path, func(t *testing.T) {
			parsed := ParseFile(path)
			result := ValidateConfig(parsed.Data)
			assert.True(t, result.Valid, "unexpected errors: %v", result.Errors)
		})
	}
}

func TestValidateConfig_SchemaViolations(t *testing.T) {
	tests := []struct {
		file       string
		wantPath   string
		wantType   string
		wantModule string
	}{
		{"testdata/invalid-schema-missing-required.json", "/analysis", ErrorTypeRequired, ""},
		{"testdata/invalid-schema-wrong-type.json", "/analysis/histogramBins", ErrorTypeType, ""},
		{"testdata/invalid-schema-unknown-module.json", "/analysis/input/type", ErrorTypeEnum, "input (parquet)"},
		{"testdata/invalid-json-output-no-path.yaml", "/analysis/outputs/0", ErrorTypeRequired, "output 0 (json)"},
		{"testdata/invalid-mapping-no-target.yaml", "/analysis/filters/0/config/mappings/0", ErrorTypeRequired, "filter 0 (mapping)"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			errs := validationErrorsFor(t, tt.file)
			require.NotEmpty(t, errs)
			err := findError(t, errs, tt.wantPath)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantModule, err.Module)
		})
	}
}

func TestValidateConfig_ExpectedAndActual(t *testing.T) {
	err := findError(t, validationErrorsFor(t, "testdata/invalid-schema-missing-required.json"), "/analysis")
	assert.Equal(t, "name", err.Expected)

	err = findError(t, validationErrorsFor(t, "testdata/invalid-schema-wrong-type.json"), "/analysis/histogramBins")
	assert.Equal(t, "integer", err.Expected)
	assert.Equal(t, "string", err.Actual)

	err = findError(t, validationErrorsFor(t, "testdata/invalid-schema-unknown-module.json"), "/analysis/input/type")
	assert.Equal(t, "parquet", err.Actual)
	assert.Contains(t, err.Expected, "csv")

	err = findError(t, validationErrorsFor(t, "testdata/invalid-mapping-no-target.yaml"), "/analysis/filters/0/config/mappings/0")
	assert.Equal(t, "target", err.Expected)
}

func TestValidateConfig_SameGenres(t *testing.T) {
	errs := validationErrorsFor(t, "testdata/invalid-same-genres.yaml")

	require.Len(t, errs, 1)
	assert.Equal(t, "/analysis/genres", errs[0].Path)
	assert.Equal(t, ErrorTypeSemantic, errs[0].Type)
	assert.Empty(t, errs[0].Module)
	assert.Contains(t, errs[0].Message, `"Drama"`)
}

func TestValidateConfig_OutputPathTemplate(t *testing.T) {
	errs := validationErrorsFor(t, "testdata/invalid-output-template.yaml")

	require.Len(t, errs, 1)
	assert.Equal(t, "/analysis/outputs/0/config/path", errs[0].Path)
	assert.Equal(t, ErrorTypeTemplate, errs[0].Type)
	assert.Equal(t, "output 0 (json)", errs[0].Module)
	assert.Equal(t, "reports/{{run.id.json", errs[0].Actual)
}

func TestValidateConfig_EmptyData(t *testing.T) {
	for name, data := range map[string]map[string]interface{}{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			result := ValidateConfig(data)
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, ErrorTypeRequired, result.Errors[0].Type)
		})
	}
}

func TestValidateConfig_UnknownTopLevelKey(t *testing.T) {
	result := ValidateConfig(map[string]interface{}{
		"analysis":  map[string]interface{}{"name": "x"},
		"connector": map[string]interface{}{},
	})

	require.False(t, result.Valid)
	err := findError(t, result.Errors, "/")
	assert.Equal(t, ErrorTypeUnknownKey, err.Type)
	assert.Equal(t, "connector", err.Actual)
}

func TestModuleAt(t *testing.T) {
	data := map[string]interface{}{"analysis": map[string]interface{}{
		"input":   map[string]interface{}{"type": "csv"},
		"filters": []interface{}{map[string]interface{}{"type": "condition"}, "bogus"},
	}}

	tests := []struct {
		loc  []string
		want string
	}{
		{nil, ""},
		{[]string{"analysis", "name"}, ""},
		{[]string{"analysis", "input", "config"}, "input (csv)"},
		{[]string{"analysis", "filters", "0", "config"}, "filter 0 (condition)"},
		{[]string{"analysis", "filters", "1"}, "filter 1"},
		{[]string{"analysis", "filters", "7"}, "filter 7"},
		{[]string{"analysis", "filters", "x"}, ""},
		{[]string{"analysis", "outputs"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, moduleAt(data, tt.loc), "%v", tt.loc)
	}
}

func TestGetEmbeddedSchema(t *testing.T) {
	assert.NotEmpty(t, GetEmbeddedSchema())
	_, err := getCompiledSchema()
	assert.NoError(t, err, "embedded schema compiles")
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "/analysis/name: missing", ValidationError{Path: "/analysis/name", Message: "missing"}.Error())
	assert.Equal(t, "bare", ValidationError{Message: "bare"}.Error(), "error without path is the message")
}
