package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Correlation returns Pearson's r between x and y and its two-sided p-value
// from Student's t with n-2 degrees of freedom.
//
// With n == 2 the line is exact and p is 1. A constant input has no defined
// correlation: r and p are NaN and the result is marked degenerate.
func Correlation(x, y []float64) (*ratings.StatResult, error) {
	if len(x) != len(y) {
		return nil, preconditionError(errhandling.CodeLengthMismatch, ErrLengthMismatch,
			"len(x) = %d, len(y) = %d", len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return nil, preconditionError(errhandling.CodeInsufficientPoints, ErrInsufficientPoints,
			"correlation needs at least 2 points, got %d", n)
	}

	res := &ratings.StatResult{
		Name:             ratings.TestPearson,
		StatisticName:    "r",
		N:                n,
		DegreesOfFreedom: []float64{float64(n - 2)},
	}

	if isConstant(x) || isConstant(y) {
		res.Statistic = math.NaN()
		res.PValue = math.NaN()
		res.Degenerate = true
		return res, nil
	}

	r := stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	res.Statistic = r

	switch {
	case n == 2:
		res.PValue = 1
	case math.Abs(r) == 1:
		res.PValue = 0
	default:
		df := float64(n - 2)
		t := r * math.Sqrt(df/(1-r*r))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		res.PValue = math.Min(1, 2*dist.Survival(math.Abs(t)))
	}
	return res, nil
}

func isConstant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
