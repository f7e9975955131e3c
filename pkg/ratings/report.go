package ratings

import (
	"encoding/json"
	"math"
	"time"
)

// Test names used in reports.
const (
	TestPearson = "pearson"
	TestANOVA   = "anova"
	TestWelchT  = "welch_t"
)

// StatResult is the outcome of one statistical test.
type StatResult struct {
	// Name identifies the test (pearson, anova, welch_t)
	Name string `json:"name"`

	// StatisticName is the conventional symbol of the statistic (r, F, t)
	StatisticName string `json:"statisticName"`

	// Statistic is the computed test statistic
	Statistic float64 `json:"statistic"`

	// PValue is the two-sided p-value
	PValue float64 `json:"pValue"`

	// DegreesOfFreedom lists the degrees of freedom used for the p-value
	DegreesOfFreedom []float64 `json:"degreesOfFreedom,omitempty"`

	// N is the total number of observations used
	N int `json:"n"`

	// Degenerate is set when the inputs had no variance and the statistic
	// and p-value are undefined (NaN) or infinite.
	Degenerate bool `json:"degenerate,omitempty"`

	// GroupSizes and GroupMeans describe the groups entering the test
	GroupSizes map[string]int     `json:"groupSizes,omitempty"`
	GroupMeans map[string]float64 `json:"groupMeans,omitempty"`

	// ExcludedGroups lists groups left out of the test for being too small
	ExcludedGroups []string `json:"excludedGroups,omitempty"`
}

// MarshalJSON encodes NaN and infinite floats as null, which encoding/json rejects.
func (s StatResult) MarshalJSON() ([]byte, error) {
	type alias StatResult
	means := make(map[string]*float64, len(s.GroupMeans))
	for k, v := range s.GroupMeans {
		means[k] = finite(v)
	}
	return json.Marshal(struct {
		alias
		Statistic  *float64            `json:"statistic"`
		PValue     *float64            `json:"pValue"`
		GroupMeans map[string]*float64 `json:"groupMeans,omitempty"`
	}{
		alias:      alias(s),
		Statistic:  finite(s.Statistic),
		PValue:     finite(s.PValue),
		GroupMeans: means,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// TestOutcome holds either a result or the precondition failure that prevented it.
type TestOutcome struct {
	Result *StatResult     `json:"result,omitempty"`
	Error  *ExecutionError `json:"error,omitempty"`
}

// Failed reports whether the test could not be computed.
func (o TestOutcome) Failed() bool {
	return o.Error != nil
}

// CleanStats counts what the cleaning pass did.
type CleanStats struct {
	RowsIn            int `json:"rowsIn"`
	DroppedMissing    int `json:"droppedMissing"`
	DroppedNonNumeric int `json:"droppedNonNumeric"`
	RowsOut           int `json:"rowsOut"`
}

// Descriptive summarizes a numeric sample.
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Line is a least-squares fit y = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// Bin is one histogram bucket covering [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// GroupSummary describes the ratings of one group.
type GroupSummary struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`

	// Spread is the five-number summary of a non-empty decade group
	Spread *Descriptive `json:"spread,omitempty"`
}

// Summary carries the descriptive values the report sinks need for plots.
type Summary struct {
	Ratings    Descriptive    `json:"ratings"`
	Regression *Line          `json:"regression,omitempty"`
	Histogram  []Bin          `json:"histogram,omitempty"`
	Decades    []GroupSummary `json:"decades,omitempty"`

	// Genres summarizes the compared genre pair (substring membership), A first
	Genres []GroupSummary `json:"genres"`

	// ExactGenres summarizes records whose genre equals one of the pair exactly
	ExactGenres []GroupSummary `json:"exactGenres,omitempty"`
}

// Genre returns the summary of the named genre group.
func (s Summary) Genre(label string) (GroupSummary, bool) {
	for _, g := range s.Genres {
		if g.Label == label {
			return g, true
		}
	}
	return GroupSummary{}, false
}

// Report is everything the analyzer computed for one run.
type Report struct {
	RunID       string     `json:"runId"`
	Name        string     `json:"name"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Genres      GenrePair  `json:"genres"`
	Clean       CleanStats `json:"clean"`

	Correlation TestOutcome `json:"correlation"`
	ANOVA       TestOutcome `json:"anova"`
	TTest       TestOutcome `json:"tTest"`

	Summary Summary `json:"summary"`
}

// Outcomes returns the three test outcomes in report order.
func (r *Report) Outcomes() []TestOutcome {
	return []TestOutcome{r.Correlation, r.ANOVA, r.TTest}
}

// Complete reports whether every test produced a result.
func (r *Report) Complete() bool {
	for _, o := range r.Outcomes() {
		if o.Failed() {
			return false
		}
	}
	return true
}
