// Package input provides implementations for input modules.
// Input modules read the raw ratings table into rows of column name to value.
// Every cell arrives as a string, or nil when the source marks it missing,
// unless a json input keeps nested documents as decoded.
package input

import (
	"context"
	"errors"
)

// ErrEmptySource is returned when a source holds no bytes at all.
var ErrEmptySource = errors.New("no data in source")

// Module represents an input module that fetches rows from a source.
type Module interface {
	// Fetch reads all rows from the source.
	// The context can be used to cancel long-running operations.
	Fetch(ctx context.Context) ([]map[string]interface{}, error)
	// Close releases any resources held by the module.
	Close() error
}

// DefaultMissingTokens are the cell values read as missing.
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null", "<nil>",
}

func missingTokens(extra []string) []string {
	out := make([]string, 0, len(DefaultMissingTokens)+len(extra))
	out = append(out, DefaultMissingTokens...)
	return append(out, extra...)
}

func stringList(v interface{}) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
