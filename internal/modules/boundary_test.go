// Package modules_test verifies module boundary compliance.
package modules_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis"

// TestModuleBoundaryCompliance verifies that input, filter and output modules
// do not import the layers that construct and drive them. Modules see rows,
// reports and datasets only through pkg/ratings.
func TestModuleBoundaryCompliance(t *testing.T) {
	modulePackages := []string{
		"internal/modules/input",
		"internal/modules/filter",
		"internal/modules/output",
	}

	forbiddenImports := []string{
		modulePath + "/internal/runtime",
		modulePath + "/internal/factory",
		modulePath + "/internal/registry",
		modulePath + "/internal/config",
		modulePath + "/internal/cli",
		modulePath + "/internal/analysis",
		modulePath + "/internal/dataset",
	}

	for _, pkgPath := range modulePackages {
		t.Run(pkgPath, func(t *testing.T) {
			matches, err := filepath.Glob(filepath.Join("../..", pkgPath, "*.go"))
			require.NoError(t, err)
			require.NotEmpty(t, matches, "no Go files found in %s", pkgPath)

			for _, file := range matches {
				// tests may wire modules together
				if strings.HasSuffix(file, "_test.go") {
					continue
				}

				f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
				require.NoError(t, err, "failed to parse file %s", file)

				for _, imp := range f.Imports {
					importPath := strings.Trim(imp.Path.Value, `"`)
					assert.NotContains(t, forbiddenImports, importPath,
						"BOUNDARY VIOLATION: %s imports a layer that drives modules", filepath.Base(file))
				}
			}
		})
	}
}
