package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// TwoSampleMeanTest runs Welch's unequal-variance t-test (two-sided) of a against b.
// Group sizes and means are recorded under the labels "a" and "b".
func TwoSampleMeanTest(a, b []float64) (*ratings.StatResult, error) {
	return welch("a", a, "b", b)
}

// welch is TwoSampleMeanTest with caller-chosen group labels.
//
// When both samples have zero variance the statistic is undefined: t and p are
// NaN and the result is marked degenerate.
func welch(labelA string, a []float64, labelB string, b []float64) (*ratings.StatResult, error) {
	for _, s := range []struct {
		label string
		xs    []float64
	}{{labelA, a}, {labelB, b}} {
		if len(s.xs) == 0 {
			return nil, preconditionError(errhandling.CodeEmptySample, ErrEmptySample,
				"no ratings for %q", s.label)
		}
		if len(s.xs) < 2 {
			return nil, preconditionError(errhandling.CodeInsufficientPoints, ErrInsufficientPoints,
				"%q has %d rating, the t-test needs at least 2", s.label, len(s.xs))
		}
	}

	res := &ratings.StatResult{
		Name:          ratings.TestWelchT,
		StatisticName: "t",
		N:             len(a) + len(b),
		GroupSizes:    map[string]int{labelA: len(a), labelB: len(b)},
		GroupMeans: map[string]float64{
			labelA: stat.Mean(a, nil),
			labelB: stat.Mean(b, nil),
		},
	}

	r, err := stats.TwoSampleWelchTTest(stats.Sample{Xs: a}, stats.Sample{Xs: b}, stats.LocationDiffers)
	switch {
	case errors.Is(err, stats.ErrZeroVariance):
		res.Statistic = math.NaN()
		res.PValue = math.NaN()
		res.Degenerate = true
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("welch t-test: %w", err)
	}

	res.Statistic = r.T
	res.PValue = r.P
	res.DegreesOfFreedom = []float64{r.DoF}
	return res, nil
}
