// Package filter provides implementations for filter modules.
// Filter modules drop, coerce and annotate raw rows before they become records.
package filter

import (
	"context"
	"math"
	"sort"
)

// Module represents a filter module that transforms rows.
type Module interface {
	// Process transforms the input rows and returns the retained ones.
	Process(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error)
}

// Error handling modes shared by the user-configurable filters.
const (
	OnErrorFail = "fail"
	OnErrorSkip = "skip"
	OnErrorLog  = "log"
)

// cancelCheckInterval is how many rows are processed between context checks.
const cancelCheckInterval = 100

func checkCanceled(ctx context.Context, i int) error {
	if i%cancelCheckInterval != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// IsMissing reports whether a row value counts as missing: nil or a NaN float.
func IsMissing(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// Columns returns the sorted union of the keys of all rows.
// A row that lacks one of these keys has a missing value in that column.
func Columns(records []map[string]interface{}) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// copyRecord returns a shallow copy of a row.
func copyRecord(record map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}

func normalizeOnError(onError string) (string, bool) {
	switch onError {
	case "":
		return OnErrorFail, true
	case OnErrorFail, OnErrorSkip, OnErrorLog:
		return onError, true
	default:
		return OnErrorFail, false
	}
}

func stringList(v interface{}) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	default:
		return nil
	}
}
