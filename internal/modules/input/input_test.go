package input

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleCSV = `Series_Title,Released_Year,Certificate,IMDB_Rating,Genre
The Shawshank Redemption,1994,A,9.3,Drama
Apollo 13,PG,U,7.6,"Adventure, Drama, History"
12 Angry Men,1957,,9.0,"Crime, Drama"
Unknown,N/A,NA,8.0,Drama
`

func TestCSV_Fetch(t *testing.T) {
	m, err := NewCSVFromConfig(CSVConfig{Path: writeFile(t, "imdb.csv", sampleCSV)})
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "The Shawshank Redemption", rows[0]["Series_Title"])
	assert.Equal(t, "1994", rows[0]["Released_Year"], "cells stay text")
	assert.Equal(t, "9.3", rows[0]["IMDB_Rating"])

	assert.Equal(t, "PG", rows[1]["Released_Year"])
	assert.Equal(t, "Adventure, Drama, History", rows[1]["Genre"])

	assert.Nil(t, rows[2]["Certificate"], "empty cell is missing")
	assert.Nil(t, rows[3]["Released_Year"], "N/A is missing")
	assert.Nil(t, rows[3]["Certificate"], "NA is missing")
}

func TestCSV_HeaderOnly(t *testing.T) {
	m, err := NewCSVFromConfig(CSVConfig{Path: writeFile(t, "empty.csv", "Released_Year,IMDB_Rating,Genre\n")})
	require.NoError(t, err)

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSV_SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") }},
		{"empty file", func(t *testing.T) string { return writeFile(t, "blank.csv", "  \n") }},
		{"ragged rows", func(t *testing.T) string { return writeFile(t, "ragged.csv", "a,b\n1,2,3\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewCSVFromConfig(CSVConfig{Path: tt.path(t)})
			require.NoError(t, err)

			_, err = m.Fetch(context.Background())
			require.Error(t, err)
			assert.Equal(t, errhandling.CategorySource, errhandling.GetErrorCategory(err))
			assert.True(t, errhandling.IsFatal(err))
		})
	}
}

func TestCSV_DelimiterAndExtraMissing(t *testing.T) {
	path := writeFile(t, "semi.csv", "Released_Year;IMDB_Rating;Genre\n1994;9.3;Drama\n2001;-;Animation\n")
	m, err := NewCSVFromConfig(CSVConfig{Path: path, Delimiter: ";", MissingValues: []string{"-"}})
	require.NoError(t, err)

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Drama", rows[0]["Genre"])
	assert.Nil(t, rows[1]["IMDB_Rating"])
}

func TestNewCSVFromConfig_Validation(t *testing.T) {
	_, err := NewCSVFromConfig(CSVConfig{Path: ""})
	assert.Error(t, err)

	_, err = NewCSVFromConfig(CSVConfig{Path: "../imdb.csv"})
	assert.Error(t, err)

	_, err = NewCSVFromConfig(CSVConfig{Path: "imdb.csv", Delimiter: ";;"})
	assert.Error(t, err)

	_, err = ParseCSVConfig(map[string]interface{}{"path": 3})
	assert.Error(t, err)

	cfg, err := ParseCSVConfig(map[string]interface{}{"path": "imdb.csv", "delimiter": "\t", "missingValues": []interface{}{"?"}})
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.Delimiter)
	assert.Equal(t, []string{"?"}, cfg.MissingValues)
}

func TestCSV_Canceled(t *testing.T) {
	m, err := NewCSVFromConfig(CSVConfig{Path: "imdb.csv"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSON_Fetch(t *testing.T) {
	path := writeFile(t, "imdb.json", `[
  {"Series_Title": "The Godfather", "Released_Year": 1972, "IMDB_Rating": 9.2, "Genre": "Crime, Drama"},
  {"Series_Title": "Inception", "Released_Year": "2010", "IMDB_Rating": null, "Genre": "Action"},
  {"Series_Title": "Parasite", "IMDB_Rating": 8.6, "Genre": "Comedy"}
]`)
	m, err := NewJSONFromConfig(JSONConfig{Path: path})
	require.NoError(t, err)

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1972", rows[0]["Released_Year"])
	assert.Equal(t, "9.2", rows[0]["IMDB_Rating"])
	assert.Nil(t, rows[1]["IMDB_Rating"], "null is missing")
	assert.Nil(t, rows[2]["Released_Year"], "absent key is missing")
}

func TestJSON_KeepNested(t *testing.T) {
	path := writeFile(t, "nested.json", `[
  {"title": "Heat", "movie": {"year": 1995, "genres": ["Crime", "Drama"]}, "rating": "N/A"}
]`)
	cfg, err := ParseJSONConfig(map[string]interface{}{"path": path, "keepNested": true})
	require.NoError(t, err)
	m, err := NewJSONFromConfig(cfg)
	require.NoError(t, err)

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	movie, ok := rows[0]["movie"].(map[string]interface{})
	require.True(t, ok, "nested object kept")
	assert.Equal(t, float64(1995), movie["year"])
	assert.Equal(t, []interface{}{"Crime", "Drama"}, movie["genres"])
	assert.Nil(t, rows[0]["rating"], "top-level missing token")
}

func TestJSON_EmptyAndInvalid(t *testing.T) {
	m, err := NewJSONFromConfig(JSONConfig{Path: writeFile(t, "empty.json", "[]")})
	require.NoError(t, err)
	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)

	m, err = NewJSONFromConfig(JSONConfig{Path: writeFile(t, "bad.json", `{"not": "an array"}`)})
	require.NoError(t, err)
	_, err = m.Fetch(context.Background())
	assert.Equal(t, errhandling.CategorySource, errhandling.GetErrorCategory(err))
}

func TestStatic_Fetch(t *testing.T) {
	m, err := NewStaticFromConfig(map[string]interface{}{
		"rows": []interface{}{
			map[string]interface{}{"Released_Year": 1994, "IMDB_Rating": 8.5, "Genre": "Drama"},
			map[string]interface{}{"Released_Year": nil},
		},
	})
	require.NoError(t, err)

	rows, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1994, rows[0]["Released_Year"])

	rows[0]["Genre"] = "changed"
	again, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Drama", again[0]["Genre"], "fetch returns copies")
}

func TestNewStaticFromConfig_Validation(t *testing.T) {
	_, err := NewStaticFromConfig(map[string]interface{}{})
	assert.Error(t, err)

	_, err = NewStaticFromConfig(map[string]interface{}{"rows": "nope"})
	assert.Error(t, err)

	_, err = NewStaticFromConfig(map[string]interface{}{"rows": []interface{}{1}})
	assert.Error(t, err)
}
