package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

func TestDescribe(t *testing.T) {
	d := Describe([]float64{9.0, 7.0, 8.0, 6.0})
	assert.Equal(t, 4, d.N)
	assert.InDelta(t, 7.5, d.Mean, tol)
	assert.InDelta(t, 1.2909944487358056, d.StdDev, tol)
	assert.Equal(t, 6.0, d.Min)
	assert.Equal(t, 7.5, d.Median)
	assert.Equal(t, 9.0, d.Max)
	assert.LessOrEqual(t, d.Q1, d.Median)
	assert.GreaterOrEqual(t, d.Q3, d.Median)

	assert.Equal(t, ratings.Descriptive{}, Describe(nil))

	single := Describe([]float64{8.1})
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, 8.1, single.Median)
}

func TestRegression(t *testing.T) {
	line := Regression([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.NotNil(t, line)
	assert.InDelta(t, 1.0, line.Intercept, tol)
	assert.InDelta(t, 2.0, line.Slope, tol)

	assert.Nil(t, Regression([]float64{1}, []float64{1}))
	assert.Nil(t, Regression([]float64{2000, 2000}, []float64{7, 8}))
	assert.Nil(t, Regression([]float64{1, 2}, []float64{1}))
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{7.6, 7.7, 8.0, 8.5, 9.3}, 2)
	require.Len(t, bins, 2)
	assert.InDelta(t, 7.6, bins[0].Low, tol)
	assert.InDelta(t, 8.45, bins[0].High, tol)
	assert.InDelta(t, 9.3, bins[1].High, tol)
	assert.Equal(t, 3, bins[0].Count)
	assert.Equal(t, 2, bins[1].Count, "the maximum lands in the last bin")

	total := 0
	for _, b := range Histogram([]float64{7.6, 7.7, 8.0, 8.5, 9.3, 8.1, 8.8}, 10) {
		total += b.Count
	}
	assert.Equal(t, 7, total)

	constant := Histogram([]float64{8, 8, 8}, 10)
	require.Len(t, constant, 1)
	assert.Equal(t, 3, constant[0].Count)

	assert.Nil(t, Histogram(nil, 10))
	assert.Nil(t, Histogram([]float64{1}, 0))
}

func TestSummarize(t *testing.T) {
	g := Summarize("Drama", []float64{8.5, 9.0})
	assert.Equal(t, ratings.GroupSummary{Label: "Drama", Count: 2, Mean: 8.75, Median: 8.75}, g)

	assert.Equal(t, ratings.GroupSummary{Label: "Western"}, Summarize("Western", nil))
}

func TestSummarizeSpread(t *testing.T) {
	g := SummarizeSpread("1990", []float64{7.0, 9.0, 8.5, 6.0})
	require.NotNil(t, g.Spread)
	assert.Equal(t, 4, g.Spread.N)
	assert.Equal(t, 6.0, g.Spread.Min)
	assert.Equal(t, 9.0, g.Spread.Max)
	assert.InDelta(t, 7.75, g.Spread.Median, 1e-9)
	assert.Equal(t, g.Median, g.Spread.Median)
	assert.LessOrEqual(t, g.Spread.Q1, g.Spread.Median)
	assert.GreaterOrEqual(t, g.Spread.Q3, g.Spread.Median)

	assert.Nil(t, SummarizeSpread("1920", nil).Spread)
}
