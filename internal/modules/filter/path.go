// Path utilities for reading values out of nested rows, as produced by the
// json input for nested documents.
//
// Path notation supports:
// - Dot notation for nested objects: "movie.title"
// - Array indexing: "genres[0]", "ratings[1].value"
// - Combined: "releases[0].date.year"
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path parsing errors
var (
	ErrEmptyPath         = errors.New("empty path")
	ErrInvalidArrayIndex = errors.New("invalid array index in path")
)

// IsNestedPath checks if a path contains dot notation or array indexing.
// Returns true for paths like "movie.year", "genres[0]", "movie.genres[0]".
// Returns false for plain column names like "Genre".
func IsNestedPath(path string) bool {
	for _, c := range path {
		if c == '.' || c == '[' {
			return true
		}
	}
	return false
}

// GetNestedValue extracts a value from a nested object using dot notation.
// Supports paths like "movie.title" and array indexing like "genres[0]".
// Returns the value and a boolean indicating whether the path was found.
func GetNestedValue(obj map[string]interface{}, path string) (interface{}, bool) {
	return navigate(obj, path)
}

// navigate walks a path through nested maps and arrays.
func navigate(obj map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	current := interface{}(obj)
	for _, part := range strings.Split(path, ".") {
		var ok bool
		current, ok = navigateStep(current, part)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// navigateStep advances one step through a path segment (e.g. "key" or "items[0]").
func navigateStep(current interface{}, part string) (next interface{}, ok bool) {
	key, arrayIdx, hasIndex, err := ParsePathPart(part)
	if err != nil {
		return nil, false
	}
	next, ok = getFromMap(current, key)
	if !ok {
		return nil, false
	}
	if hasIndex {
		next, ok = getFromArray(next, arrayIdx)
	}
	return next, ok
}

func getFromMap(current interface{}, key string) (interface{}, bool) {
	m, ok := current.(map[string]interface{})
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}

func getFromArray(current interface{}, index int) (interface{}, bool) {
	arr, ok := current.([]interface{})
	if !ok || index < 0 || index >= len(arr) {
		return nil, false
	}
	return arr[index], true
}

// ParsePathPart parses a path segment and extracts the key and optional array index.
// For "items[0]" returns ("items", 0, true, nil)
// For "name" returns ("name", -1, false, nil)
func ParsePathPart(part string) (key string, index int, hasIndex bool, err error) {
	idx := strings.Index(part, "[")
	if idx == -1 {
		return part, -1, false, nil
	}
	endIdx := strings.Index(part, "]")
	if endIdx == -1 || endIdx < idx+1 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	if endIdx != len(part)-1 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	arrayIndex, parseErr := strconv.Atoi(part[idx+1 : endIdx])
	if parseErr != nil || arrayIndex < 0 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	return part[:idx], arrayIndex, true, nil
}
