package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/cli"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

const moviesCSV = `Series_Title,Released_Year,Genre,IMDB_Rating
Alpha,1990,Drama,8.5
Bravo,1990,Action,7.0
Charlie,2000,Drama,9.0
Delta,2000,"Action, Comedy",6.5
`

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func configFixture(name string) string {
	return filepath.Join("..", "..", "internal", "config", "testdata", name)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLI_Version(t *testing.T) {
	stdout, _, code := runCLI(t, "version")

	assert.Equal(t, cli.ExitSuccess, code)
	assert.Contains(t, stdout, "Version: dev")
	assert.Contains(t, stdout, "Commit: ")
}

func TestCLI_Help(t *testing.T) {
	stdout, _, code := runCLI(t, "--help")

	assert.Equal(t, cli.ExitSuccess, code)
	assert.Contains(t, stdout, "run")
	assert.Contains(t, stdout, "validate")
}

func TestCLI_Validate(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"valid yaml", "valid-config.yaml", cli.ExitSuccess, "valid (format: yaml)", ""},
		{"valid json", "valid-config.json", cli.ExitSuccess, "valid (format: json)", ""},
		{"syntax error", "invalid-json.json", cli.ExitParseError, "", "Parse errors"},
		{"missing file", "does-not-exist.json", cli.ExitParseError, "", "Parse errors"},
		{"schema violation", "invalid-schema-missing-required.json", cli.ExitValidationError, "", "Validation errors"},
		{"same genres", "invalid-same-genres.yaml", cli.ExitValidationError, "", "/analysis/genres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, "validate", configFixture(tt.file))

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr)
			if tt.wantOut != "" {
				assert.Contains(t, stdout, tt.wantOut)
			}
			if tt.wantErr != "" {
				assert.Contains(t, stderr, tt.wantErr)
			}
		})
	}
}

func TestCLI_ValidateVerbosePrintsSummary(t *testing.T) {
	stdout, _, code := runCLI(t, "validate", "--verbose", configFixture("valid-config.yaml"))

	assert.Equal(t, cli.ExitSuccess, code)
	assert.Contains(t, stdout, "Genres: Crime vs Comedy")
}

func TestCLI_ValidateRequiresArgument(t *testing.T) {
	_, _, code := runCLI(t, "validate")
	assert.Equal(t, cli.ExitValidationError, code)
}

func TestCLI_UnknownLogFormat(t *testing.T) {
	_, stderr, code := runCLI(t, "--log-format", "xml", "version")

	assert.Equal(t, cli.ExitValidationError, code)
	assert.Contains(t, stderr, "xml")
}

func TestCLI_RunWritesJSONReport(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "movies.csv", moviesCSV)
	reportPath := filepath.Join(dir, "out", "report.json")

	_, stderr, code := runCLI(t, "run", "--quiet", "--input", csvPath, "--json", reportPath)
	require.Equal(t, cli.ExitSuccess, code, "stderr: %s", stderr)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report ratings.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 4, report.Clean.RowsOut)
	require.NotNil(t, report.TTest.Result)
	assert.InDelta(t, 5.657, report.TTest.Result.Statistic, 0.001)
	assert.InDelta(t, 0.0299, report.TTest.Result.PValue, 0.0001)
}

func TestCLI_RunDryRunSkipsReport(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "movies.csv", moviesCSV)
	reportPath := filepath.Join(dir, "report.json")

	_, stderr, code := runCLI(t, "run", "--dry-run", "--input", csvPath, "--json", reportPath)

	require.Equal(t, cli.ExitSuccess, code, "stderr: %s", stderr)
	assert.Contains(t, stderr, "Dry-run mode")
	assert.NoFileExists(t, reportPath)
}

func TestCLI_RunInputFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "movies.csv", moviesCSV)
	t.Setenv("IMDBSTATS_INPUT", csvPath)

	_, stderr, code := runCLI(t, "run")

	assert.Equal(t, cli.ExitSuccess, code, "stderr: %s", stderr)
	assert.Contains(t, stderr, "Records retained: 4")
}

func TestCLI_RunMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")

	_, stderr, code := runCLI(t, "run", "--input", missing)

	assert.Equal(t, cli.ExitRuntimeError, code)
	assert.Contains(t, stderr, "✗ Analysis failed")
	assert.Contains(t, stderr, "Module: input")
}

func TestCLI_RunPartialAnalysis(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "movies.csv", moviesCSV)
	cfgPath := writeFile(t, dir, "analysis.yaml", `analysis:
  name: westerns
  input:
    type: csv
    config:
      path: `+csvPath+`
  genres:
    a: Drama
    b: Western
`)

	_, stderr, code := runCLI(t, "run", cfgPath)

	assert.Equal(t, cli.ExitPartialAnalysis, code)
	assert.Contains(t, stderr, "⚠ Analysis completed with failed tests")
	assert.Contains(t, stderr, "T-test:")
}

func TestCLI_RunNestedJSONWithMapping(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "movies.json", `[
  {"title": "Alpha", "movie": {"year": 1990, "rating": 8.5, "genres": ["Drama"]}},
  {"title": "Bravo", "movie": {"year": 1990, "rating": 7.0, "genres": ["Action"]}},
  {"title": "Charlie", "movie": {"year": 2000, "rating": 9.0, "genres": ["Drama"]}},
  {"title": "Delta", "movie": {"year": 2000, "rating": 6.5, "genres": ["Action", "Comedy"]}}
]`)
	reportPath := filepath.Join(dir, "report.json")
	cfgPath := writeFile(t, dir, "analysis.yaml", `analysis:
  name: nested
  input:
    type: json
    config:
      path: `+dataPath+`
      keepNested: true
  filters:
    - type: mapping
      config:
        dropUnmapped: true
        mappings:
          - { source: title, target: Series_Title }
          - { source: movie.year, target: Released_Year }
          - { source: movie.rating, target: IMDB_Rating }
          - { source: "movie.genres[0]", target: Genre }
  outputs:
    - type: json
      config:
        path: `+reportPath+`
`)

	_, stderr, code := runCLI(t, "run", cfgPath)
	require.Equal(t, cli.ExitSuccess, code, "stderr: %s", stderr)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report ratings.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.NotNil(t, report.TTest.Result)
	assert.InDelta(t, 5.657, report.TTest.Result.Statistic, 0.001)
}

func TestCLI_RunInvalidConfig(t *testing.T) {
	_, stderr, code := runCLI(t, "run", configFixture("invalid-schema-unknown-module.json"))

	assert.Equal(t, cli.ExitValidationError, code)
	assert.Contains(t, stderr, "Validation errors")
}

func TestApplyOverrides(t *testing.T) {
	a := ratings.DefaultAnalysis()
	applyOverrides(a, "data/movies.JSON", "report.json", "charts")

	require.NotNil(t, a.Input)
	assert.Equal(t, "json", a.Input.Type)
	assert.Equal(t, "data/movies.JSON", a.Input.Config["path"])

	types := make([]string, len(a.Outputs))
	for i, o := range a.Outputs {
		types[i] = o.Type
	}
	assert.Equal(t, []string{"text", "json", "charts"}, types)

	b := ratings.DefaultAnalysis()
	applyOverrides(b, "", "", "")
	assert.Equal(t, ratings.DefaultAnalysis(), b)
}
