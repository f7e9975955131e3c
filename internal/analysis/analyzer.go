package analysis

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/logger"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Options configures Analyze.
type Options struct {
	// RunID and Name are copied into the report
	RunID string
	Name  string
	// Genres is the pair compared by the t-test (defaults to Drama and Action)
	Genres ratings.GenrePair
	// HistogramBins is the number of rating histogram bins (default 10)
	HistogramBins int
}

func (o Options) withDefaults() Options {
	if o.Genres.A == "" {
		o.Genres.A = ratings.DefaultGenreA
	}
	if o.Genres.B == "" {
		o.Genres.B = ratings.DefaultGenreB
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = ratings.DefaultHistogramBins
	}
	return o
}

// Analyze runs the three tests concurrently and assembles the report.
//
// A precondition failure is recorded on its own test and leaves the others
// untouched; check Report.Complete. The returned error is non-nil only for
// cancellation or an unexpected failure.
func Analyze(ctx context.Context, ds ratings.Dataset, opts Options) (*ratings.Report, error) {
	opts = opts.withDefaults()

	report := &ratings.Report{
		RunID:       opts.RunID,
		Name:        opts.Name,
		GeneratedAt: time.Now().UTC(),
		Genres:      opts.Genres,
	}

	years, scores := ds.Years(), ds.Ratings()
	genreA, genreB := ds.GenreRatings(opts.Genres.A), ds.GenreRatings(opts.Genres.B)

	g, gctx := errgroup.WithContext(ctx)
	run := func(dst *ratings.TestOutcome, test func() (*ratings.StatResult, error)) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := toOutcome(test())
			if err != nil {
				return err
			}
			*dst = outcome
			return nil
		})
	}

	run(&report.Correlation, func() (*ratings.StatResult, error) {
		return Correlation(years, scores)
	})
	run(&report.ANOVA, func() (*ratings.StatResult, error) {
		return GroupVarianceTest(ds.ByDecade())
	})
	run(&report.TTest, func() (*ratings.StatResult, error) {
		return welch(opts.Genres.A, genreA, opts.Genres.B, genreB)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if res := report.ANOVA.Result; res != nil && len(res.ExcludedGroups) > 0 {
		logger.WithRun(opts.RunID).Warn("decades with fewer than two ratings excluded from ANOVA",
			slog.String("decades", strings.Join(res.ExcludedGroups, ",")),
		)
	}

	report.Summary = summarize(ds, years, scores, genreA, genreB, opts)
	return report, nil
}

// toOutcome turns a precondition failure into a failed outcome.
func toOutcome(res *ratings.StatResult, err error) (ratings.TestOutcome, error) {
	if err == nil {
		return ratings.TestOutcome{Result: res}, nil
	}
	if !errhandling.IsPrecondition(err) {
		return ratings.TestOutcome{}, err
	}
	classified := errhandling.ClassifyError(err)
	msg := classified.Message
	if classified.OriginalErr != nil {
		msg = classified.OriginalErr.Error()
	}
	return ratings.TestOutcome{Error: &ratings.ExecutionError{
		Code:          classified.Code,
		Message:       msg,
		Module:        logger.StageAnalyze,
		ErrorCategory: string(classified.Category),
	}}, nil
}

func summarize(ds ratings.Dataset, years, scores, genreA, genreB []float64, opts Options) ratings.Summary {
	s := ratings.Summary{
		Ratings:    Describe(scores),
		Regression: Regression(years, scores),
		Histogram:  Histogram(scores, opts.HistogramBins),
		Genres: []ratings.GroupSummary{
			Summarize(opts.Genres.A, genreA),
			Summarize(opts.Genres.B, genreB),
		},
	}

	byDecade := ds.ByDecade()
	for _, dec := range ds.Decades() {
		s.Decades = append(s.Decades, SummarizeSpread(strconv.Itoa(dec), byDecade[dec]))
	}

	for _, label := range []string{opts.Genres.A, opts.Genres.B} {
		if exact := ds.ExactGenreRatings(label); len(exact) > 0 {
			s.ExactGenres = append(s.ExactGenres, Summarize(label, exact))
		}
	}
	return s
}
