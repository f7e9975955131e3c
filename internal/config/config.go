// Package config provides functionality for parsing and validating
// analysis configuration files (JSON/YAML).
package config

import (
	"errors"
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// ErrInvalidConfig is returned by Load when parsing or validation failed.
// The Result carries the individual errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load parses, validates and converts a configuration file.
//
// The Result is always returned so callers can report parse and validation
// errors separately.
func Load(path string) (*ratings.Analysis, *Result, error) {
	result := ParseConfig(path)
	if !result.IsValid() {
		return nil, result, fmt.Errorf("%w: %s", ErrInvalidConfig, path)
	}

	analysis, err := ConvertToAnalysis(result.Data)
	if err != nil {
		return nil, result, fmt.Errorf("converting configuration %s: %w", path, err)
	}
	return analysis, result, nil
}
