package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// StaticModule returns rows given inline in the configuration.
// Values are passed through unchanged, so numbers stay numbers and null stays missing.
type StaticModule struct {
	rows []map[string]interface{}
}

// NewStatic creates a static input module over the given rows.
func NewStatic(rows []map[string]interface{}) *StaticModule {
	return &StaticModule{rows: rows}
}

// NewStaticFromConfig creates a static input module from its raw configuration.
func NewStaticFromConfig(config map[string]interface{}) (*StaticModule, error) {
	raw, ok := config["rows"]
	if !ok {
		return nil, errors.New("'rows' is required")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'rows' must be a list, got %T", raw)
	}

	rows := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		row, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("rows[%d] must be an object, got %T", i, item)
		}
		rows = append(rows, row)
	}
	return NewStatic(rows), nil
}

// Fetch returns copies of the configured rows.
func (m *StaticModule) Fetch(ctx context.Context) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, len(m.rows))
	for i, row := range m.rows {
		cp := make(map[string]interface{}, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}

	logger.Debug("static input read", slog.Int("rows", len(out)))
	return out, nil
}

// Close releases resources (no-op for static rows).
func (m *StaticModule) Close() error {
	return nil
}

var _ Module = (*StaticModule)(nil)
