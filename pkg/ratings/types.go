// Package ratings provides public types for the movie ratings analysis pipeline.
// This package is intended to be importable by external projects that need
// to consume analysis reports or drive the runtime programmatically.
package ratings

import "time"

// Column names of the source table used by the analysis.
const (
	FieldReleasedYear = "Released_Year"
	FieldIMDBRating   = "IMDB_Rating"
	FieldGenre        = "Genre"
	FieldTitle        = "Series_Title"

	// FieldDecade is the derived grouping column added during cleaning.
	FieldDecade = "Decade"
)

// Defaults reproduce the reference analysis run.
const (
	DefaultInputPath     = "imdb_top_1000.csv"
	DefaultGenreA        = "Drama"
	DefaultGenreB        = "Action"
	DefaultHistogramBins = 10
)

// Analysis represents a complete analysis run configuration.
// It names the data source, optional pre-clean filters, the genre pair
// compared by the mean-difference test and the report sinks.
type Analysis struct {
	// ID is the identifier for this analysis (defaults to Name)
	ID string `json:"id"`

	// Name is the human-readable name of the analysis
	Name string `json:"name"`

	// Description provides additional context about the analysis
	Description string `json:"description,omitempty"`

	// Input defines the data source module
	Input *ModuleConfig `json:"input"`

	// Filters is an ordered list of row filters applied before cleaning
	Filters []ModuleConfig `json:"filters,omitempty"`

	// Outputs are the report sinks, run in order
	Outputs []ModuleConfig `json:"outputs,omitempty"`

	// Genres is the pair of genre labels compared by the t-test
	Genres GenrePair `json:"genres"`

	// HistogramBins is the number of bins of the rating histogram
	HistogramBins int `json:"histogramBins"`
}

// GenrePair names the two genre groups compared by the mean-difference test.
// Membership is a case-sensitive substring match on the genre text.
type GenrePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ModuleConfig represents the configuration for a pipeline module.
// Modules can be input, filter, or output types.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "csv", "condition", "charts")
	Type string `json:"type"`

	// Config contains the module-specific configuration
	Config map[string]interface{} `json:"config"`
}

// DefaultAnalysis returns the configuration used when no configuration file is given:
// the fixed input file, Drama vs Action and a text summary on stdout.
func DefaultAnalysis() *Analysis {
	return &Analysis{
		ID:   "imdb-top-1000",
		Name: "imdb-top-1000",
		Input: &ModuleConfig{
			Type:   "csv",
			Config: map[string]interface{}{"path": DefaultInputPath},
		},
		Outputs: []ModuleConfig{
			{Type: "text", Config: map[string]interface{}{}},
		},
		Genres:        GenrePair{A: DefaultGenreA, B: DefaultGenreB},
		HistogramBins: DefaultHistogramBins,
	}
}

// ExecutionResult represents the result of an analysis run.
type ExecutionResult struct {
	// RunID uniquely identifies this run in logs and reports
	RunID string `json:"runId"`

	// AnalysisID is the ID of the executed analysis
	AnalysisID string `json:"analysisId"`

	// Status is the execution status ("success", "error", "partial")
	Status string `json:"status"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// RecordsLoaded is the number of raw rows produced by the input module
	RecordsLoaded int `json:"recordsLoaded"`

	// RecordsRetained is the number of records left after cleaning
	RecordsRetained int `json:"recordsRetained"`

	// Report holds the computed statistics (nil if the run failed before analysis)
	Report *Report `json:"report,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`
}

// ExecutionError contains details about an execution failure.
type ExecutionError struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Module is the module or stage where the error occurred
	Module string `json:"module,omitempty"`

	// ErrorCategory is the classified category (source, precondition, ...)
	ErrorCategory string `json:"errorCategory,omitempty"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`
}
