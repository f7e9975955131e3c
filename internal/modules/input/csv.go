package input

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
)

// CSVConfig represents the configuration for a csv input module.
type CSVConfig struct {
	// Path is the file to read (required)
	Path string `json:"path"`
	// Delimiter is the field separator (default ",")
	Delimiter string `json:"delimiter,omitempty"`
	// MissingValues are extra cell values read as missing
	MissingValues []string `json:"missingValues,omitempty"`
}

// CSVModule reads a delimited file with a header row.
// Columns are kept as text; typing happens during cleaning.
type CSVModule struct {
	path      string
	delimiter rune
	missing   []string
}

// NewCSVFromConfig creates a csv input module.
func NewCSVFromConfig(config CSVConfig) (*CSVModule, error) {
	if err := pathutil.ValidateFilePath(config.Path); err != nil {
		return nil, fmt.Errorf("invalid csv path: %w", err)
	}

	delimiter := ','
	if config.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(config.Delimiter)
		if size != len(config.Delimiter) || r == utf8.RuneError {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", config.Delimiter)
		}
		delimiter = r
	}

	return &CSVModule{
		path:      filepath.Clean(config.Path),
		delimiter: delimiter,
		missing:   missingTokens(config.MissingValues),
	}, nil
}

// ParseCSVConfig parses a raw configuration map into CSVConfig.
func ParseCSVConfig(config map[string]interface{}) (CSVConfig, error) {
	var cfg CSVConfig
	path, ok := config["path"].(string)
	if !ok || path == "" {
		return cfg, errors.New("'path' is required and must be a string")
	}
	cfg.Path = path
	if d, ok := config["delimiter"].(string); ok {
		cfg.Delimiter = d
	}
	cfg.MissingValues = stringList(config["missingValues"])
	return cfg, nil
}

// Fetch reads the whole file. A file that cannot be opened or parsed is a
// source error; a header without data rows yields no rows.
func (m *CSVModule) Fetch(ctx context.Context) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, errhandling.NewSourceError(fmt.Sprintf("reading %s", m.path), err)
	}
	rows, err := m.parse(data)
	if err != nil {
		return nil, errhandling.NewSourceError(fmt.Sprintf("parsing %s", m.path), err)
	}

	logger.Debug("csv input read",
		slog.String("path", m.path),
		slog.Int("rows", len(rows)),
	)
	return rows, nil
}

func (m *CSVModule) parse(data []byte) ([]map[string]interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySource
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(m.missing),
		dataframe.WithDelimiter(m.delimiter),
	)
	if df.Err == nil {
		return df.Maps(), nil
	}

	// The dataframe loader refuses a table with no data rows.
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = m.delimiter
	records, csvErr := reader.ReadAll()
	if csvErr == nil && len(records) == 1 {
		return []map[string]interface{}{}, nil
	}
	return nil, df.Err
}

// Close releases resources (the file is read in full by Fetch).
func (m *CSVModule) Close() error {
	return nil
}

var _ Module = (*CSVModule)(nil)
