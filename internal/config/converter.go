package config

import (
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// ConvertToAnalysis converts parsed configuration data to an Analysis.
// The data should have been validated against the schema first; omitted
// sections take the values of ratings.DefaultAnalysis.
//
// The configuration is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0.0",
//	  "analysis": {
//	    "name": "...",
//	    "input": {"type": "csv", "config": {...}},
//	    "filters": [...],
//	    "genres": {"a": "Drama", "b": "Action"},
//	    "histogramBins": 10,
//	    "outputs": [...]
//	  }
//	}
func ConvertToAnalysis(data map[string]interface{}) (*ratings.Analysis, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	section, ok := data["analysis"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'analysis' section")
	}

	analysis := ratings.DefaultAnalysis()

	name, ok := section["name"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'analysis.name'")
	}
	analysis.Name = name
	analysis.ID = name
	if id, ok := section["id"].(string); ok {
		analysis.ID = id
	}
	if description, ok := section["description"].(string); ok {
		analysis.Description = description
	}

	if inputData, ok := section["input"].(map[string]interface{}); ok {
		inputConfig, err := convertModuleConfig(inputData)
		if err != nil {
			return nil, fmt.Errorf("invalid input config: %w", err)
		}
		analysis.Input = inputConfig
	}

	filters, err := convertModuleList(section, "filters")
	if err != nil {
		return nil, err
	}
	analysis.Filters = filters

	if _, present := section["outputs"]; present {
		outputs, err := convertModuleList(section, "outputs")
		if err != nil {
			return nil, err
		}
		analysis.Outputs = outputs
	}

	if genres, ok := section["genres"].(map[string]interface{}); ok {
		if a, ok := genres["a"].(string); ok {
			analysis.Genres.A = a
		}
		if b, ok := genres["b"].(string); ok {
			analysis.Genres.B = b
		}
	}
	if analysis.Genres.A == analysis.Genres.B {
		return nil, fmt.Errorf("genres a and b must differ, both are %q", analysis.Genres.A)
	}

	if bins, ok := intValue(section["histogramBins"]); ok {
		if bins < 1 {
			return nil, fmt.Errorf("histogramBins must be at least 1, got %d", bins)
		}
		analysis.HistogramBins = bins
	}

	return analysis, nil
}

func convertModuleList(section map[string]interface{}, key string) ([]ratings.ModuleConfig, error) {
	raw, ok := section[key].([]interface{})
	if !ok {
		return nil, nil
	}
	modules := make([]ratings.ModuleConfig, 0, len(raw))
	for i, item := range raw {
		m, isMap := item.(map[string]interface{})
		if !isMap {
			return nil, fmt.Errorf("invalid %s entry at index %d", key, i)
		}
		cfg, err := convertModuleConfig(m)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry at index %d: %w", key, i, err)
		}
		modules = append(modules, *cfg)
	}
	return modules, nil
}

// convertModuleConfig converts a raw module map. Settings live under
// "config"; other keys beside "type" are merged in as well.
func convertModuleConfig(data map[string]interface{}) (*ratings.ModuleConfig, error) {
	moduleType, ok := data["type"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	moduleConfig := &ratings.ModuleConfig{
		Type:   moduleType,
		Config: make(map[string]interface{}),
	}
	if nested, ok := data["config"].(map[string]interface{}); ok {
		for key, value := range nested {
			moduleConfig.Config[key] = value
		}
	}
	for key, value := range data {
		if key != "type" && key != "config" {
			moduleConfig.Config[key] = value
		}
	}
	return moduleConfig, nil
}

// intValue accepts the numeric forms produced by the JSON and YAML decoders.
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
