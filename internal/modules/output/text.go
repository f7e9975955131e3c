package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Labels of the text summary lines.
const (
	labelPearson = "Pearson Correlation"
	labelANOVA   = "ANOVA"
	labelTTest   = "T-test"
)

// TextConfig represents the configuration for a text output module.
type TextConfig struct {
	// Path writes the summary to a file instead of standard output
	Path string `json:"path,omitempty"`
	// CleanStats adds a line with the cleaning counts
	CleanStats bool `json:"cleanStats,omitempty"`
}

// TextModule prints the summary lines:
//
//	Pearson Correlation: r = -0.694, p = 0.0562
//	ANOVA F = 2.370, p = 0.0105
//	T-test: t = 1.239, p = 0.2177
//	Drama Mean: 8.93, Action Mean: 8.17
//
// A failed test prints "<label>: failed (<code>): <message>" in place of its line.
type TextModule struct {
	w          io.Writer
	path       string
	cleanStats bool
}

// NewText creates a text output module writing to w.
func NewText(w io.Writer) *TextModule {
	return &TextModule{w: w}
}

// NewTextFromConfig creates a text output module. Without a path it writes to stdout.
func NewTextFromConfig(config TextConfig) (*TextModule, error) {
	m := &TextModule{w: os.Stdout, cleanStats: config.CleanStats}
	if config.Path != "" {
		if err := pathutil.ValidateFilePath(config.Path); err != nil {
			return nil, fmt.Errorf("invalid text output path: %w", err)
		}
		m.path = filepath.Clean(config.Path)
		m.w = nil
	}
	return m, nil
}

// ParseTextConfig parses a raw configuration map into TextConfig.
func ParseTextConfig(config map[string]interface{}) TextConfig {
	var cfg TextConfig
	if p, ok := config["path"].(string); ok {
		cfg.Path = p
	}
	if c, ok := config["cleanStats"].(bool); ok {
		cfg.CleanStats = c
	}
	return cfg
}

// Send implements the output.Module interface.
func (m *TextModule) Send(ctx context.Context, report *ratings.Report, _ ratings.Dataset) error {
	if report == nil {
		return ErrNilReport
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.path == "" {
		if err := WriteSummary(m.w, report, m.cleanStats); err != nil {
			return errhandling.NewOutputError("writing summary", err)
		}
		return nil
	}

	path := expandPath(m.path, report)
	if err := pathutil.EnsureParentDir(path); err != nil {
		return errhandling.NewOutputError("creating summary directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errhandling.NewOutputError(fmt.Sprintf("creating %s", path), err)
	}
	if err := WriteSummary(f, report, m.cleanStats); err != nil {
		_ = f.Close()
		return errhandling.NewOutputError(fmt.Sprintf("writing %s", path), err)
	}
	if err := f.Close(); err != nil {
		return errhandling.NewOutputError(fmt.Sprintf("closing %s", path), err)
	}
	return nil
}

// Close releases resources (no-op for text).
func (m *TextModule) Close() error {
	return nil
}

// WriteSummary writes the summary lines of report to w.
func WriteSummary(w io.Writer, report *ratings.Report, cleanStats bool) error {
	bw := bufio.NewWriter(w)

	if cleanStats {
		c := report.Clean
		fmt.Fprintf(bw, "Rows: %d read, %d dropped (missing), %d dropped (non-numeric), %d kept\n",
			c.RowsIn, c.DroppedMissing, c.DroppedNonNumeric, c.RowsOut)
	}

	writeOutcome(bw, labelPearson, report.Correlation, func(r *ratings.StatResult) string {
		return fmt.Sprintf("%s: r = %.3f, p = %.4f", labelPearson, r.Statistic, r.PValue)
	})

	writeOutcome(bw, labelANOVA, report.ANOVA, func(r *ratings.StatResult) string {
		return fmt.Sprintf("%s F = %.3f, p = %.4f", labelANOVA, r.Statistic, r.PValue)
	})
	if r := report.ANOVA.Result; r != nil && len(r.ExcludedGroups) > 0 {
		fmt.Fprintf(bw, "Note: decades with fewer than 2 ratings excluded from ANOVA: %s\n",
			strings.Join(r.ExcludedGroups, ", "))
	}

	writeOutcome(bw, labelTTest, report.TTest, func(r *ratings.StatResult) string {
		return fmt.Sprintf("%s: t = %.3f, p = %.4f", labelTTest, r.Statistic, r.PValue)
	})

	fmt.Fprintf(bw, "%s Mean: %s, %s Mean: %s\n",
		report.Genres.A, genreMean(report, report.Genres.A),
		report.Genres.B, genreMean(report, report.Genres.B))

	return bw.Flush()
}

func writeOutcome(w io.Writer, label string, o ratings.TestOutcome, format func(*ratings.StatResult) string) {
	switch {
	case o.Error != nil:
		fmt.Fprintf(w, "%s: failed (%s): %s\n", label, o.Error.Code, o.Error.Message)
	case o.Result != nil:
		fmt.Fprintln(w, format(o.Result))
	default:
		fmt.Fprintf(w, "%s: not computed\n", label)
	}
}

func genreMean(report *ratings.Report, label string) string {
	g, ok := report.Summary.Genre(label)
	if !ok || g.Count == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", g.Mean)
}

var _ Module = (*TextModule)(nil)
