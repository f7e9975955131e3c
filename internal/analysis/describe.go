package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Describe summarizes a sample. An empty sample yields the zero value; the
// standard deviation of a single value is 0.
func Describe(xs []float64) ratings.Descriptive {
	if len(xs) == 0 {
		return ratings.Descriptive{}
	}
	sorted := sortedCopy(xs)

	d := ratings.Descriptive{
		N:      len(xs),
		Mean:   stat.Mean(xs, nil),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: median(sorted),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(xs) > 1 {
		d.StdDev = stat.StdDev(xs, nil)
	}
	return d
}

// Regression fits y = a + b*x by least squares. It returns nil when the fit is
// undefined: fewer than two points, mismatched lengths or constant x.
func Regression(x, y []float64) *ratings.Line {
	if len(x) < 2 || len(x) != len(y) || isConstant(x) {
		return nil
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return &ratings.Line{Intercept: alpha, Slope: beta}
}

// Histogram counts xs into bins of equal width spanning [min, max].
// The last bin includes max. A constant sample gets a single unit-wide bin.
func Histogram(xs []float64, bins int) []ratings.Bin {
	if len(xs) == 0 || bins < 1 {
		return nil
	}
	sorted := sortedCopy(xs)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []ratings.Bin{{Low: lo - 0.5, High: hi + 0.5, Count: len(xs)}}
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	edges := append([]float64(nil), dividers...)
	// stat.Histogram counts [d[i], d[i+1]); nudge the top edge so max lands in the last bin.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]ratings.Bin, bins)
	for i := range out {
		out[i] = ratings.Bin{Low: edges[i], High: edges[i+1], Count: int(counts[i])}
	}
	return out
}

// Summarize describes one labeled group. An empty group has zero mean and median.
func Summarize(label string, xs []float64) ratings.GroupSummary {
	g := ratings.GroupSummary{Label: label, Count: len(xs)}
	if len(xs) == 0 {
		return g
	}
	g.Mean = stat.Mean(xs, nil)
	g.Median = median(sortedCopy(xs))
	return g
}

// SummarizeSpread is Summarize plus the group's quartiles.
func SummarizeSpread(label string, xs []float64) ratings.GroupSummary {
	g := Summarize(label, xs)
	if len(xs) > 0 {
		d := Describe(xs)
		g.Spread = &d
	}
	return g
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// median of an already sorted, non-empty sample.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
