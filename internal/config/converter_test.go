package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

func TestConvertToAnalysis_FullConfig(t *testing.T) {
	parsed := ParseFile("testdata/valid-config.json")
	require.True(t, parsed.IsValid(), "parse failed: %v", parsed.Errors)

	a, err := ConvertToAnalysis(parsed.Data)
	require.NoError(t, err)

	assert.Equal(t, "imdb-json", a.ID)
	assert.Equal(t, "IMDB Top 1000", a.Name)
	assert.NotEmpty(t, a.Description)
	require.NotNil(t, a.Input)
	assert.Equal(t, "csv", a.Input.Type)
	assert.Equal(t, "imdb_top_1000.csv", a.Input.Config["path"])
	require.Len(t, a.Filters, 1)
	assert.Equal(t, "condition", a.Filters[0].Type)
	assert.Equal(t, `Genre != "Animation"`, a.Filters[0].Config["expression"])
	assert.Equal(t, ratings.GenrePair{A: "Drama", B: "Action"}, a.Genres)
	assert.Equal(t, 12, a.HistogramBins)

	var types []string
	for _, o := range a.Outputs {
		types = append(types, o.Type)
	}
	assert.Equal(t, []string{"text", "json", "charts"}, types)
	assert.Equal(t, true, a.Outputs[1].Config["includeRecords"], "json output config carried")
}

func TestConvertToAnalysis_YAMLIntegers(t *testing.T) {
	parsed := ParseFile("testdata/valid-config.yaml")
	a, err := ConvertToAnalysis(parsed.Data)
	require.NoError(t, err)

	assert.Equal(t, 8, a.HistogramBins)
	assert.Equal(t, ratings.GenrePair{A: "Crime", B: "Comedy"}, a.Genres)
	assert.Equal(t, "imdb-top-1000", a.ID, "ID defaults to the name")
	assert.IsType(t, "", a.Filters[0].Config["script"], "script filter config carried")
}

func TestConvertToAnalysis_Defaults(t *testing.T) {
	a, err := ConvertToAnalysis(map[string]interface{}{
		"analysis": map[string]interface{}{"name": "minimal"},
	})
	require.NoError(t, err)

	want := ratings.DefaultAnalysis()
	want.ID, want.Name = "minimal", "minimal"
	assert.Equal(t, want, a)
}

func TestConvertToAnalysis_EmptyOutputsList(t *testing.T) {
	a, err := ConvertToAnalysis(map[string]interface{}{
		"analysis": map[string]interface{}{"name": "quiet", "outputs": []interface{}{}},
	})
	require.NoError(t, err)
	assert.Empty(t, a.Outputs, "explicit empty outputs disable the text default")
}

func TestConvertToAnalysis_FlatModuleKeys(t *testing.T) {
	a, err := ConvertToAnalysis(map[string]interface{}{
		"analysis": map[string]interface{}{
			"name":  "flat",
			"input": map[string]interface{}{"type": "csv", "path": "movies.csv"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "movies.csv", a.Input.Config["path"], "flat keys are merged into config")
}

func TestConvertToAnalysis_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantMsg string
	}{
		{"nil data", nil, "nil"},
		{"missing section", map[string]interface{}{"connector": map[string]interface{}{}}, "'analysis'"},
		{"missing name", map[string]interface{}{"analysis": map[string]interface{}{}}, "analysis.name"},
		{"module without type", map[string]interface{}{"analysis": map[string]interface{}{
			"name":    "x",
			"filters": []interface{}{map[string]interface{}{"config": map[string]interface{}{}}},
		}}, "filters entry at index 0"},
		{"non-object output", map[string]interface{}{"analysis": map[string]interface{}{
			"name":    "x",
			"outputs": []interface{}{"text"},
		}}, "outputs entry at index 0"},
		{"same genres", map[string]interface{}{"analysis": map[string]interface{}{
			"name":   "x",
			"genres": map[string]interface{}{"a": "Action", "b": "Action"},
		}}, "must differ"},
		{"zero bins", map[string]interface{}{"analysis": map[string]interface{}{
			"name":          "x",
			"histogramBins": 0,
		}}, "histogramBins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertToAnalysis(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	a, result, err := Load("testdata/valid-config.yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, result.Format)
	assert.True(t, result.IsValid())
	assert.Equal(t, "imdb-top-1000", a.Name)

	a, result, err = Load("testdata/invalid-schema-wrong-type.json")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, a)
	assert.NotEmpty(t, result.ValidationErrors)

	_, result, err = Load("testdata/invalid-yaml.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.NotEmpty(t, result.ParseErrors)
}
