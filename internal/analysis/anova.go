package analysis

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// minGroupSize is the smallest group that enters the variance test.
const minGroupSize = 2

// GroupVarianceTest runs a one-way ANOVA over the groups (decade to ratings).
//
// Groups with fewer than two members are left out and listed in
// ExcludedGroups, so the result equals the test run without them. When every
// qualifying group is constant, F is +Inf with p = 0 if the group means differ
// and NaN otherwise; both cases are marked degenerate.
func GroupVarianceTest(groups map[int][]float64) (*ratings.StatResult, error) {
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	res := &ratings.StatResult{
		Name:          ratings.TestANOVA,
		StatisticName: "F",
		GroupSizes:    make(map[string]int),
		GroupMeans:    make(map[string]float64),
	}

	var included [][]float64
	for _, k := range keys {
		label := strconv.Itoa(k)
		if len(groups[k]) < minGroupSize {
			res.ExcludedGroups = append(res.ExcludedGroups, label)
			continue
		}
		included = append(included, groups[k])
		res.GroupSizes[label] = len(groups[k])
		res.GroupMeans[label] = stat.Mean(groups[k], nil)
	}

	if len(included) < 2 {
		return nil, preconditionError(errhandling.CodeInsufficientGroups, ErrInsufficientGroups,
			"%d of %d groups have at least %d members", len(included), len(groups), minGroupSize)
	}

	var total, sum float64
	for _, g := range included {
		for _, v := range g {
			sum += v
		}
		total += float64(len(g))
	}
	grand := sum / total

	var ssBetween, ssWithin float64
	for _, g := range included {
		mean := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := float64(len(included) - 1)
	dfWithin := total - float64(len(included))
	res.N = int(total)
	res.DegreesOfFreedom = []float64{dfBetween, dfWithin}

	msBetween := ssBetween / dfBetween
	msWithin := ssWithin / dfWithin

	switch {
	case msWithin == 0 && msBetween > 0:
		res.Statistic = math.Inf(1)
		res.PValue = 0
		res.Degenerate = true
	case msWithin == 0:
		res.Statistic = math.NaN()
		res.PValue = math.NaN()
		res.Degenerate = true
	default:
		res.Statistic = msBetween / msWithin
		res.PValue = distuv.F{D1: dfBetween, D2: dfWithin}.Survival(res.Statistic)
	}
	return res, nil
}
