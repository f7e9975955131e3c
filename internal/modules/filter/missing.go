package filter

import (
	"context"
	"log/slog"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
)

// DropMissingConfig represents the configuration for a dropMissing filter module.
type DropMissingConfig struct {
	// Fields restricts the check to these columns. Empty means every column.
	Fields []string `json:"fields,omitempty"`
}

// DropMissingModule removes rows that have a missing value in any checked column.
// When no fields are configured, the checked columns are the union of the keys of
// all input rows, so a row lacking a key another row has is dropped.
type DropMissingModule struct {
	fields []string
}

// NewDropMissingFromConfig creates a dropMissing filter.
func NewDropMissingFromConfig(config DropMissingConfig) *DropMissingModule {
	return &DropMissingModule{fields: config.Fields}
}

// ParseDropMissingConfig parses a raw configuration map into DropMissingConfig.
func ParseDropMissingConfig(config map[string]interface{}) DropMissingConfig {
	return DropMissingConfig{Fields: stringList(config["fields"])}
}

// Process implements the filter.Module interface.
func (m *DropMissingModule) Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := m.fields
	if len(fields) == 0 {
		fields = Columns(records)
	}

	result := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		if err := checkCanceled(ctx, i); err != nil {
			return nil, err
		}
		if hasMissing(record, fields) {
			continue
		}
		result = append(result, record)
	}

	if dropped := len(records) - len(result); dropped > 0 {
		logger.Debug("rows with missing values dropped",
			slog.String("module_type", "dropMissing"),
			slog.Int("dropped", dropped),
			slog.Int("retained", len(result)),
		)
	}
	return result, nil
}

func hasMissing(record map[string]interface{}, fields []string) bool {
	if record == nil {
		return true
	}
	for _, f := range fields {
		v, ok := record[f]
		if !ok || IsMissing(v) {
			return true
		}
	}
	return false
}

var _ Module = (*DropMissingModule)(nil)
