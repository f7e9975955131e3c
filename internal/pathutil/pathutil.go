// Package pathutil provides shared path validation helpers for input files,
// filter scripts and report destinations.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilePath validates a file path for path traversal and invalid characters.
// Detection is segment-based so "data/../etc/passwd" is rejected before cleaning
// would turn it into "etc/passwd".
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}
	for _, segment := range strings.Split(filepath.ToSlash(filePath), "/") {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", filePath)
		}
	}
	return nil
}

// EnsureDir validates dir and creates it with its parents if needed.
func EnsureDir(dir string) error {
	if err := ValidateFilePath(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Clean(dir), 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	return nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." {
		return nil
	}
	return EnsureDir(dir)
}
