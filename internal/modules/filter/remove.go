package filter

import (
	"context"
	"errors"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// RemoveConfig represents the configuration for a remove filter module.
type RemoveConfig struct {
	// Target is a single column to remove
	Target string `json:"target"`
	// Targets is a list of columns to remove
	Targets []string `json:"targets"`
}

// RemoveModule drops columns from every row.
// Run it before missing-value cleaning to keep rows whose only gaps are in
// columns the analysis does not use.
type RemoveModule struct {
	targets []string
}

// NewRemoveFromConfig creates a new remove filter module from configuration.
// It validates that at least one target is provided (either via Target or Targets).
func NewRemoveFromConfig(config RemoveConfig) (*RemoveModule, error) {
	targets := config.Targets
	if config.Target != "" {
		targets = append(targets, config.Target)
	}

	seen := make(map[string]bool)
	unique := make([]string, 0, len(targets))
	for _, t := range targets {
		if t != "" && !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		return nil, errors.New("at least one non-empty target column is required")
	}

	logger.Debug("remove filter module initialized", "targets", unique)

	return &RemoveModule{targets: unique}, nil
}

// Process implements the filter.Module interface.
// Input rows are not modified.
func (m *RemoveModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}
		if record == nil {
			result = append(result, nil)
			continue
		}
		out := copyRecord(record)
		for _, target := range m.targets {
			delete(out, target)
		}
		result = append(result, out)
	}
	return result, nil
}

// ParseRemoveConfig parses a raw configuration map into RemoveConfig.
func ParseRemoveConfig(config map[string]interface{}) (RemoveConfig, error) {
	var cfg RemoveConfig
	if target, ok := config["target"].(string); ok && target != "" {
		cfg.Target = target
	}
	cfg.Targets = stringList(config["targets"])

	if cfg.Target == "" && len(cfg.Targets) == 0 {
		return cfg, errors.New("'target' or 'targets' is required")
	}
	return cfg, nil
}

var _ Module = (*RemoveModule)(nil)
