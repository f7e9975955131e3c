package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/pathutil"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/template"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Chart file names, written under the configured directory.
const (
	HistogramFile   = "rating_histogram.png"
	RegressionFile  = "rating_by_year.png"
	DecadeBoxFile   = "decade_ratings.png"
	GenreMeansFile  = "genre_means.png"
)

const (
	defaultChartsDir    = "charts"
	defaultChartWidth   = 800
	defaultChartHeight  = 500
	maxRating           = 10
	minBarSlot          = 70
	maxBoxWidth         = 40
	chartTitlePadding   = 40
	chartDefaultPadding = 16
)

// ChartsConfig represents the configuration for a charts output module.
type ChartsConfig struct {
	// Dir receives the PNG files (default "charts"); may contain {{run.id}}
	Dir string `json:"dir,omitempty"`
	// Width and Height are the image size in pixels
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// ChartsModule renders four PNG charts: the rating histogram, ratings by
// release year with the regression line, a box plot of ratings per decade and
// mean rating of the two compared genres (exact genre match).
// A chart without data is skipped.
type ChartsModule struct {
	dir    string
	width  int
	height int
}

// NewChartsFromConfig creates a charts output module.
func NewChartsFromConfig(config ChartsConfig) (*ChartsModule, error) {
	dir := config.Dir
	if dir == "" {
		dir = defaultChartsDir
	}
	if err := template.ValidateSyntax(dir); err != nil {
		return nil, fmt.Errorf("invalid charts dir: %w", err)
	}
	if err := pathutil.ValidateFilePath(dir); err != nil {
		return nil, fmt.Errorf("invalid charts dir: %w", err)
	}
	if config.Width < 0 || config.Height < 0 {
		return nil, fmt.Errorf("chart size must be positive, got %dx%d", config.Width, config.Height)
	}

	m := &ChartsModule{
		dir:    filepath.Clean(dir),
		width:  config.Width,
		height: config.Height,
	}
	if m.width == 0 {
		m.width = defaultChartWidth
	}
	if m.height == 0 {
		m.height = defaultChartHeight
	}
	return m, nil
}

// ParseChartsConfig parses a raw configuration map into ChartsConfig.
func ParseChartsConfig(config map[string]interface{}) ChartsConfig {
	var cfg ChartsConfig
	if d, ok := config["dir"].(string); ok {
		cfg.Dir = d
	}
	cfg.Width = intValue(config["width"])
	cfg.Height = intValue(config["height"])
	return cfg
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Send implements the output.Module interface.
func (m *ChartsModule) Send(ctx context.Context, report *ratings.Report, ds ratings.Dataset) error {
	if report == nil {
		return ErrNilReport
	}

	dir := expandPath(m.dir, report)
	if err := pathutil.EnsureDir(dir); err != nil {
		return errhandling.NewOutputError("creating charts directory", err)
	}

	charts := []struct {
		file string
		c    renderer
	}{
		{HistogramFile, m.histogram(report.Summary.Histogram)},
		{RegressionFile, m.scatter(ds, report.Summary.Regression)},
		{DecadeBoxFile, m.boxes(report.Summary.Decades)},
		{GenreMeansFile, m.bars(fmt.Sprintf("Average Rating: %s vs %s", report.Genres.A, report.Genres.B),
			"Average Rating", report.Summary.ExactGenres)},
	}

	written := 0
	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.c == nil {
			logger.Debug("chart skipped, no data",
				slog.String("module_type", "charts"),
				slog.String("chart", c.file),
			)
			continue
		}
		path := filepath.Join(dir, c.file)
		if err := writeChart(path, c.c); err != nil {
			return errhandling.NewOutputError(fmt.Sprintf("rendering %s", c.file), err)
		}
		written++
	}

	logger.Info("charts written",
		slog.String("module_type", "charts"),
		slog.String("dir", dir),
		slog.Int("count", written),
	)
	return nil
}

func writeChart(path string, c renderer) error {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Preview implements the output.PreviewableModule interface.
func (m *ChartsModule) Preview(report *ratings.Report) []string {
	dir := expandPath(m.dir, report)
	return []string{
		filepath.Join(dir, HistogramFile),
		filepath.Join(dir, RegressionFile),
		filepath.Join(dir, DecadeBoxFile),
		filepath.Join(dir, GenreMeansFile),
	}
}

// Close releases resources (no-op for charts).
func (m *ChartsModule) Close() error {
	return nil
}

func (m *ChartsModule) background() chart.Style {
	return chart.Style{Padding: chart.Box{
		Top:    chartTitlePadding,
		Left:   chartDefaultPadding,
		Right:  chartDefaultPadding,
		Bottom: chartDefaultPadding,
	}}
}

func (m *ChartsModule) barWidth(n int) int {
	if w := n * minBarSlot; w > m.width {
		return w
	}
	return m.width
}

func (m *ChartsModule) histogram(bins []ratings.Bin) renderer {
	if len(bins) == 0 {
		return nil
	}
	bars := make([]chart.Value, len(bins))
	maxCount := 1
	for i, b := range bins {
		bars[i] = chart.Value{Value: float64(b.Count), Label: fmt.Sprintf("%.2f", b.Low)}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return chart.BarChart{
		Title:      "Distribution of IMDB Ratings",
		Background: m.background(),
		Width:      m.barWidth(len(bars)),
		Height:     m.height,
		BarWidth:   minBarSlot / 2,
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}
}

// scatter needs at least two distinct years; nil line means there are not.
func (m *ChartsModule) scatter(ds ratings.Dataset, line *ratings.Line) renderer {
	if line == nil || ds.Len() < 2 {
		return nil
	}
	years, scores := ds.Years(), ds.Ratings()
	lo, hi := years[0], years[0]
	for _, y := range years {
		lo, hi = min(lo, y), max(hi, y)
	}

	points := chart.ContinuousSeries{
		Name:    "Movies",
		XValues: years,
		YValues: scores,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    2,
			DotColor:    drawing.ColorBlue.WithAlpha(128),
		},
	}
	fit := chart.ContinuousSeries{
		Name:    "Regression",
		XValues: []float64{lo, hi},
		YValues: []float64{line.Intercept + line.Slope*lo, line.Intercept + line.Slope*hi},
		Style: chart.Style{
			StrokeColor: drawing.ColorRed,
			StrokeWidth: 2,
		},
	}

	c := chart.Chart{
		Title:      "Linear Regression: IMDB Rating Over Years",
		Background: m.background(),
		Width:      m.width,
		Height:     m.height,
		XAxis: chart.XAxis{
			Name:           "Released Year",
			Range:          &chart.ContinuousRange{Min: lo - 1, Max: hi + 1},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		YAxis: chart.YAxis{
			Name:  "IMDB Rating",
			Range: &chart.ContinuousRange{Min: 0, Max: maxRating},
		},
		Series: []chart.Series{points, fit},
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c
}

// boxes draws one box per decade: a whisker from min to max, a box from Q1
// to Q3, a median bar and a mean dot. Decades without a spread are skipped.
func (m *ChartsModule) boxes(groups []ratings.GroupSummary) renderer {
	var shown []ratings.GroupSummary
	for _, g := range groups {
		if g.Spread != nil {
			shown = append(shown, g)
		}
	}
	if len(shown) == 0 {
		return nil
	}

	width := m.barWidth(len(shown))
	boxWidth := float64(width) / float64(2*len(shown)+2)
	if boxWidth > maxBoxWidth {
		boxWidth = maxBoxWidth
	}

	var (
		series []chart.Series
		ticks  = make([]chart.Tick, len(shown))
	)
	for i, g := range shown {
		x := float64(i + 1)
		d := g.Spread
		ticks[i] = chart.Tick{Value: x, Label: g.Label}
		series = append(series,
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{d.Min, d.Max},
				Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{d.Q1, d.Q3},
				Style:   chart.Style{StrokeColor: drawing.ColorBlue.WithAlpha(160), StrokeWidth: boxWidth},
			},
			chart.ContinuousSeries{
				XValues: []float64{x - 0.2, x + 0.2},
				YValues: []float64{d.Median, d.Median},
				Style:   chart.Style{StrokeColor: drawing.ColorRed, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				XValues: []float64{x},
				YValues: []float64{g.Mean},
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    drawing.ColorWhite,
				},
			},
		)
	}

	return chart.Chart{
		Title:      "IMDB Ratings by Decade",
		Background: m.background(),
		Width:      width,
		Height:     m.height,
		XAxis: chart.XAxis{
			Name:  "Decade",
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(shown)) + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "IMDB Rating",
			Range: &chart.ContinuousRange{Min: 0, Max: maxRating},
		},
		Series: series,
	}
}

func (m *ChartsModule) bars(title, axis string, groups []ratings.GroupSummary) renderer {
	var bars []chart.Value
	for _, g := range groups {
		if g.Count == 0 {
			continue
		}
		bars = append(bars, chart.Value{Value: g.Mean, Label: g.Label})
	}
	if len(bars) == 0 {
		return nil
	}
	return chart.BarChart{
		Title:      title,
		Background: m.background(),
		Width:      m.barWidth(len(bars)),
		Height:     m.height,
		BarWidth:   minBarSlot / 2,
		YAxis: chart.YAxis{
			Name:  axis,
			Range: &chart.ContinuousRange{Min: 0, Max: maxRating},
		},
		Bars: bars,
	}
}

var _ PreviewableModule = (*ChartsModule)(nil)
