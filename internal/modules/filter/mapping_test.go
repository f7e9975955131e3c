package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMappingFromConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config MappingConfig
	}{
		{"no mappings", MappingConfig{}},
		{"missing target", MappingConfig{Mappings: []FieldMapping{{Source: "year"}}}},
		{"empty path segment", MappingConfig{Mappings: []FieldMapping{{Source: "movie..year", Target: "Released_Year"}}}},
		{"bad index", MappingConfig{Mappings: []FieldMapping{{Source: "genres[x]", Target: "Genre"}}}},
		{"unknown onMissing", MappingConfig{Mappings: []FieldMapping{{Source: "a", Target: "b", OnMissing: "guess"}}}},
		{"unknown transform", MappingConfig{Mappings: []FieldMapping{{Source: "a", Target: "b", Transforms: []TransformOp{{Op: "dateFormat"}}}}}},
		{"bad regex", MappingConfig{Mappings: []FieldMapping{{Source: "a", Target: "b", Transforms: []TransformOp{{Op: "replace", Pattern: "("}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMappingFromConfig(tt.config)
			assert.True(t, errors.Is(err, ErrInvalidMapping), "got %v", err)
		})
	}
}

func TestParseMappingConfig(t *testing.T) {
	_, err := ParseMappingConfig(map[string]interface{}{})
	assert.Error(t, err)

	_, err = ParseMappingConfig(map[string]interface{}{"mappings": []interface{}{"year"}})
	assert.Error(t, err)

	_, err = ParseMappingConfig(map[string]interface{}{"mappings": []interface{}{
		map[string]interface{}{"source": "a", "target": "b", "transforms": []interface{}{map[string]interface{}{}}},
	}})
	assert.Error(t, err, "transform without op")

	cfg, err := ParseMappingConfig(map[string]interface{}{
		"dropUnmapped": true,
		"onError":      "skip",
		"mappings": []interface{}{
			map[string]interface{}{
				"source":       "movie.genres[0]",
				"target":       "Genre",
				"onMissing":    "useDefault",
				"defaultValue": "Unknown",
				"transforms": []interface{}{
					"trim",
					map[string]interface{}{"op": "replace", "pattern": "^Sci-Fi$", "replacement": "Science Fiction"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, cfg.DropUnmapped)
	assert.Equal(t, OnErrorSkip, cfg.OnError)
	require.Len(t, cfg.Mappings, 1)
	assert.Equal(t, "Unknown", cfg.Mappings[0].DefaultValue)
	assert.Equal(t, []TransformOp{
		{Op: "trim"},
		{Op: "replace", Pattern: "^Sci-Fi$", Replacement: "Science Fiction"},
	}, cfg.Mappings[0].Transforms)
}

func nestedMovies() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"title": "Heat",
			"movie": map[string]interface{}{
				"year":   float64(1995),
				"rating": "8.3",
				"genres": []interface{}{" Crime ", "Drama"},
			},
		},
		{
			"title": "Alien",
			"movie": map[string]interface{}{
				"year":   float64(1979),
				"genres": []interface{}{"Horror"},
			},
		},
	}
}

func TestMapping_LiftsNestedValues(t *testing.T) {
	m, err := NewMappingFromConfig(MappingConfig{
		DropUnmapped: true,
		Mappings: []FieldMapping{
			{Source: "title", Target: "Series_Title"},
			{Source: "movie.year", Target: "Released_Year", Transforms: []TransformOp{{Op: "toInt"}}},
			{Source: "movie.rating", Target: "IMDB_Rating", Transforms: []TransformOp{{Op: "toFloat"}}},
			{Source: "movie.genres[0]", Target: "Genre", Transforms: []TransformOp{{Op: "trim"}, {Op: "uppercase"}}},
		},
	})
	require.NoError(t, err)

	in := nestedMovies()
	out, err := m.Process(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []map[string]interface{}{
		{"Series_Title": "Heat", "Released_Year": 1995, "IMDB_Rating": 8.3, "Genre": "CRIME"},
		{"Series_Title": "Alien", "Released_Year": 1979, "IMDB_Rating": nil, "Genre": "HORROR"},
	}, out)
	assert.Contains(t, in[0], "movie", "input rows are not modified")
}

func TestMapping_KeepsUnmappedColumns(t *testing.T) {
	m, err := NewMappingFromConfig(MappingConfig{Mappings: []FieldMapping{
		{Source: "Rating", Target: "IMDB_Rating"},
	}})
	require.NoError(t, err)

	out, err := m.Process(context.Background(), []map[string]interface{}{
		{"Genre": "Drama", "Rating": "9.3"},
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"Genre": "Drama", "Rating": "9.3", "IMDB_Rating": "9.3"},
		nil,
	}, out)
}

func TestMapping_OnMissing(t *testing.T) {
	rows := []map[string]interface{}{{"Genre": "Drama"}}

	tests := []struct {
		name      string
		mapping   FieldMapping
		wantValue interface{}
		wantKey   bool
		wantErr   bool
	}{
		{"setNull", FieldMapping{Source: "Rating", Target: "IMDB_Rating"}, nil, true, false},
		{"skipField", FieldMapping{Source: "Rating", Target: "IMDB_Rating", OnMissing: OnMissingSkipField}, nil, false, false},
		{"useDefault", FieldMapping{Source: "Rating", Target: "IMDB_Rating", OnMissing: OnMissingUseDefault, DefaultValue: "5.0"}, "5.0", true, false},
		{"fail", FieldMapping{Source: "Rating", Target: "IMDB_Rating", OnMissing: OnMissingFail}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMappingFromConfig(MappingConfig{Mappings: []FieldMapping{tt.mapping}})
			require.NoError(t, err)

			out, err := m.Process(context.Background(), rows)
			if tt.wantErr {
				var mappingErr *MappingError
				require.True(t, errors.As(err, &mappingErr))
				assert.Equal(t, ErrCodeMissingField, mappingErr.Code)
				return
			}
			require.NoError(t, err)
			v, ok := out[0]["IMDB_Rating"]
			assert.Equal(t, tt.wantKey, ok)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestMapping_OnError(t *testing.T) {
	rows := []map[string]interface{}{
		{"year": "1994"},
		{"year": "nineteen"},
		{"year": "2003"},
	}
	config := func(onError string) MappingConfig {
		return MappingConfig{
			OnError:  onError,
			Mappings: []FieldMapping{{Source: "year", Target: "Released_Year", Transforms: []TransformOp{{Op: "toInt"}}}},
		}
	}

	m, err := NewMappingFromConfig(config(OnErrorFail))
	require.NoError(t, err)
	_, err = m.Process(context.Background(), rows)
	var mappingErr *MappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.Equal(t, ErrCodeTypeConversion, mappingErr.Code)
	assert.Equal(t, 1, mappingErr.RecordIndex)
	assert.Equal(t, "toInt", mappingErr.TransformOp)

	m, err = NewMappingFromConfig(config(OnErrorSkip))
	require.NoError(t, err)
	out, err := m.Process(context.Background(), rows)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	m, err = NewMappingFromConfig(config(OnErrorLog))
	require.NoError(t, err)
	out, err = m.Process(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NotContains(t, out[1], "Released_Year", "failed mapping leaves the target unset")
}

func TestMapping_TransformsSkipMissingValues(t *testing.T) {
	m, err := NewMappingFromConfig(MappingConfig{Mappings: []FieldMapping{
		{Source: "Genre", Target: "Genre", Transforms: []TransformOp{{Op: "replace", Pattern: ",.*$"}, {Op: "lowercase"}}},
	}})
	require.NoError(t, err)

	out, err := m.Process(context.Background(), []map[string]interface{}{
		{"Genre": "Action, Adventure"},
		{"Genre": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, "action", out[0]["Genre"])
	assert.Nil(t, out[1]["Genre"])
}

func TestMapping_Canceled(t *testing.T) {
	m, err := NewMappingFromConfig(MappingConfig{Mappings: []FieldMapping{{Source: "a", Target: "b"}}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Process(ctx, []map[string]interface{}{{"a": 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetNestedValue(t *testing.T) {
	row := nestedMovies()[0]

	v, ok := GetNestedValue(row, "movie.genres[1]")
	assert.True(t, ok)
	assert.Equal(t, "Drama", v)

	_, ok = GetNestedValue(row, "movie.genres[5]")
	assert.False(t, ok)
	_, ok = GetNestedValue(row, "title.length")
	assert.False(t, ok)
	_, ok = GetNestedValue(row, "")
	assert.False(t, ok)

	assert.True(t, IsNestedPath("movie.year"))
	assert.False(t, IsNestedPath("Genre"))
}

func TestParsePathPart(t *testing.T) {
	key, idx, hasIndex, err := ParsePathPart("genres[2]")
	require.NoError(t, err)
	assert.Equal(t, "genres", key)
	assert.Equal(t, 2, idx)
	assert.True(t, hasIndex)

	for _, bad := range []string{"genres[", "genres[]", "genres[-1]", "genres[0]x"} {
		_, _, _, err := ParsePathPart(bad)
		assert.ErrorIs(t, err, ErrInvalidArrayIndex, bad)
	}
}
