package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/template"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

const defaultJSONIndent = "  "

// ErrMissingPath is returned when a file output module has no path.
var ErrMissingPath = errors.New("'path' is required in module configuration")

// JSONConfig represents the configuration for a json output module.
type JSONConfig struct {
	// Path is the report file; may contain {{run.id}}, {{run.date}} and {{analysis.name}}
	Path string `json:"path"`
	// Indent is the indentation string (default two spaces, "" for compact)
	Indent *string `json:"indent,omitempty"`
	// IncludeRecords adds the cleaned records to the document
	IncludeRecords bool `json:"includeRecords,omitempty"`
}

// JSONModule writes the report as a JSON document.
// NaN and infinite statistics are written as null.
type JSONModule struct {
	path           string
	indent         string
	includeRecords bool
}

type jsonDocument struct {
	*ratings.Report
	Records []ratings.Record `json:"records,omitempty"`
}

// NewJSONFromConfig creates a json output module.
func NewJSONFromConfig(config JSONConfig) (*JSONModule, error) {
	if config.Path == "" {
		return nil, ErrMissingPath
	}
	if err := template.ValidateSyntax(config.Path); err != nil {
		return nil, fmt.Errorf("invalid json output path: %w", err)
	}
	if err := pathutil.ValidateFilePath(config.Path); err != nil {
		return nil, fmt.Errorf("invalid json output path: %w", err)
	}

	indent := defaultJSONIndent
	if config.Indent != nil {
		indent = *config.Indent
	}
	return &JSONModule{
		path:           filepath.Clean(config.Path),
		indent:         indent,
		includeRecords: config.IncludeRecords,
	}, nil
}

// ParseJSONConfig parses a raw configuration map into JSONConfig.
func ParseJSONConfig(config map[string]interface{}) JSONConfig {
	var cfg JSONConfig
	if p, ok := config["path"].(string); ok {
		cfg.Path = p
	}
	if i, ok := config["indent"].(string); ok {
		cfg.Indent = &i
	}
	if r, ok := config["includeRecords"].(bool); ok {
		cfg.IncludeRecords = r
	}
	return cfg
}

// Send implements the output.Module interface.
func (m *JSONModule) Send(ctx context.Context, report *ratings.Report, ds ratings.Dataset) error {
	if report == nil {
		return ErrNilReport
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := jsonDocument{Report: report}
	if m.includeRecords {
		doc.Records = ds.Records()
	}

	var (
		data []byte
		err  error
	)
	if m.indent == "" {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", m.indent)
	}
	if err != nil {
		return errhandling.NewOutputError("encoding report", err)
	}

	path := expandPath(m.path, report)
	if err := pathutil.EnsureParentDir(path); err != nil {
		return errhandling.NewOutputError("creating report directory", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errhandling.NewOutputError(fmt.Sprintf("writing %s", path), err)
	}

	logger.Info("report written",
		slog.String("module_type", "json"),
		slog.String("path", path),
		slog.Int("bytes", len(data)+1),
	)
	return nil
}

// Preview implements the output.PreviewableModule interface.
func (m *JSONModule) Preview(report *ratings.Report) []string {
	return []string{expandPath(m.path, report)}
}

// Close releases resources (no-op for json).
func (m *JSONModule) Close() error {
	return nil
}

var _ PreviewableModule = (*JSONModule)(nil)
