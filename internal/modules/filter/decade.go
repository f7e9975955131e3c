package filter

import (
	"context"
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// DecadeConfig represents the configuration for a decade filter module.
type DecadeConfig struct {
	// Source is the year column (default Released_Year)
	Source string `json:"source,omitempty"`
	// Target is the column receiving the decade (default Decade)
	Target string `json:"target,omitempty"`
}

// DecadeModule adds floor(year/10)*10 to every row.
// It expects the source column to hold whole numbers already; run it after numeric coercion.
type DecadeModule struct {
	source string
	target string
}

// NewDecadeFromConfig creates a decade filter module.
func NewDecadeFromConfig(config DecadeConfig) *DecadeModule {
	m := &DecadeModule{source: config.Source, target: config.Target}
	if m.source == "" {
		m.source = ratings.FieldReleasedYear
	}
	if m.target == "" {
		m.target = ratings.FieldDecade
	}
	return m
}

// ParseDecadeConfig parses a raw configuration map into DecadeConfig.
func ParseDecadeConfig(config map[string]interface{}) DecadeConfig {
	var cfg DecadeConfig
	if s, ok := config["source"].(string); ok {
		cfg.Source = s
	}
	if s, ok := config["target"].(string); ok {
		cfg.Target = s
	}
	return cfg
}

// Process implements the filter.Module interface.
// Input rows are not modified; annotated rows are copies.
func (m *DecadeModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}
		year, ok := ToFloat(record[m.source])
		if !ok || year != float64(int(year)) {
			return nil, fmt.Errorf("record %d: %s is not a whole number: %v", i, m.source, record[m.source])
		}
		out := copyRecord(record)
		out[m.target] = ratings.FloorDecade(int(year))
		result = append(result, out)
	}
	return result, nil
}

var _ Module = (*DecadeModule)(nil)
