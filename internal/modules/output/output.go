// Package output provides implementations for output modules.
// Output modules render an analysis report: summary lines, a JSON document
// or chart images.
package output

import (
	"context"
	"errors"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/template"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// ErrNilReport is returned by Send when no report is given.
var ErrNilReport = errors.New("report is nil")

// Module represents an output module that renders a report.
type Module interface {
	// Send renders the report. ds is the cleaned dataset the report was computed from.
	Send(ctx context.Context, report *ratings.Report, ds ratings.Dataset) error

	// Close releases any resources held by the module.
	Close() error
}

// PreviewableModule is implemented by modules that write files.
// In dry-run mode the runtime logs Preview instead of calling Send.
type PreviewableModule interface {
	Module

	// Preview returns the files Send would write for report.
	Preview(report *ratings.Report) []string
}

// pathVars exposes the report identity to path templates as run.* and analysis.*.
func pathVars(report *ratings.Report) map[string]interface{} {
	return map[string]interface{}{
		"run": map[string]interface{}{
			"id":   report.RunID,
			"date": report.GeneratedAt.Format("2006-01-02"),
		},
		"analysis": map[string]interface{}{
			"name": report.Name,
		},
	}
}

func expandPath(path string, report *ratings.Report) string {
	return template.NewEvaluator().Evaluate(path, pathVars(report))
}
