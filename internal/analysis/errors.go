// Package analysis computes the statistics of a cleaned ratings dataset:
// Pearson correlation of release year and rating, one-way ANOVA of rating by
// decade, Welch's t-test between two genres, and the descriptive summaries
// used by the report sinks.
//
// Every test is a pure function of its inputs. A test whose inputs violate its
// preconditions returns a precondition error (see internal/errhandling) and
// never a partial result.
package analysis

import (
	"errors"
	"fmt"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
)

// Precondition sentinels. Returned errors wrap them; test with errors.Is.
var (
	// ErrInsufficientPoints is returned when a sample is too small for the test
	ErrInsufficientPoints = errors.New("insufficient data points")
	// ErrLengthMismatch is returned when paired samples differ in length
	ErrLengthMismatch = errors.New("paired samples differ in length")
	// ErrInsufficientGroups is returned when fewer than two groups have two or more members
	ErrInsufficientGroups = errors.New("fewer than two groups with at least two members")
	// ErrEmptySample is returned when a compared sample has no members
	ErrEmptySample = errors.New("sample is empty")
)

func preconditionError(code string, sentinel error, format string, args ...any) error {
	return errhandling.NewPreconditionError(code,
		fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}
