package input

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
)

// JSONConfig represents the configuration for a json input module.
type JSONConfig struct {
	// Path is a file holding a JSON array of objects (required)
	Path string `json:"path"`
	// MissingValues are extra cell values read as missing
	MissingValues []string `json:"missingValues,omitempty"`
	// KeepNested returns objects as decoded so a mapping filter can lift
	// nested values into columns
	KeepNested bool `json:"keepNested,omitempty"`
}

// JSONModule reads a JSON array of objects.
// By default values are rendered to text the same way csv cells are, and null
// or absent keys become missing.
type JSONModule struct {
	path       string
	missing    []string
	keepNested bool
}

// NewJSONFromConfig creates a json input module.
func NewJSONFromConfig(config JSONConfig) (*JSONModule, error) {
	if err := pathutil.ValidateFilePath(config.Path); err != nil {
		return nil, fmt.Errorf("invalid json path: %w", err)
	}
	return &JSONModule{
		path:       filepath.Clean(config.Path),
		missing:    missingTokens(config.MissingValues),
		keepNested: config.KeepNested,
	}, nil
}

// ParseJSONConfig parses a raw configuration map into JSONConfig.
func ParseJSONConfig(config map[string]interface{}) (JSONConfig, error) {
	var cfg JSONConfig
	path, ok := config["path"].(string)
	if !ok || path == "" {
		return cfg, errors.New("'path' is required and must be a string")
	}
	cfg.Path = path
	cfg.MissingValues = stringList(config["missingValues"])
	if keep, ok := config["keepNested"].(bool); ok {
		cfg.KeepNested = keep
	}
	return cfg, nil
}

// Fetch reads the whole file.
func (m *JSONModule) Fetch(ctx context.Context) ([]map[string]interface{}, error) {
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

	logger.Debug("json input read",
		slog.String("path", m.path),
		slog.Int("rows", len(rows)),
	)
	return rows, nil
}

func (m *JSONModule) parse(data []byte) ([]map[string]interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySource
	}

	var objects []map[string]interface{}
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("expected a JSON array of objects: %w", err)
	}
	if len(objects) == 0 {
		return []map[string]interface{}{}, nil
	}
	if m.keepNested {
		return m.markMissing(objects), nil
	}

	df := dataframe.LoadMaps(objects,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(m.missing),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	return df.Maps(), nil
}

// markMissing replaces top-level missing tokens with nil.
func (m *JSONModule) markMissing(objects []map[string]interface{}) []map[string]interface{} {
	tokens := make(map[string]bool, len(m.missing))
	for _, t := range m.missing {
		tokens[t] = true
	}
	for _, obj := range objects {
		for k, v := range obj {
			if s, ok := v.(string); ok && tokens[s] {
				obj[k] = nil
			}
		}
	}
	return objects
}

// Close releases resources (the file is read in full by Fetch).
func (m *JSONModule) Close() error {
	return nil
}

var _ Module = (*JSONModule)(nil)
