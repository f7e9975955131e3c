// Package errhandling provides error types and classification for the analysis runtime.
// Errors are grouped into categories that decide how a failure surfaces:
// data-quality problems are absorbed by cleaning, precondition violations are
// reported per statistical test, and source or configuration errors abort the run.
//
// Nothing in the runtime is retried: every operation is a deterministic
// computation over data that is already loaded.
package errhandling

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategorySource represents an input that cannot be read or parsed at all.
	// Source errors are fatal: no partial processing happens.
	CategorySource ErrorCategory = "source"

	// CategoryDataQuality represents missing or malformed fields in a row.
	// These never reach the caller; the row is dropped during cleaning.
	CategoryDataQuality ErrorCategory = "data_quality"

	// CategoryPrecondition represents a statistical test whose inputs do not
	// satisfy its preconditions (too few points, groups or samples).
	CategoryPrecondition ErrorCategory = "precondition"

	// CategoryConfiguration represents an invalid module or analysis configuration.
	CategoryConfiguration ErrorCategory = "configuration"

	// CategoryOutput represents a report sink that failed to write.
	CategoryOutput ErrorCategory = "output"

	// CategoryCanceled represents a run stopped through its context.
	CategoryCanceled ErrorCategory = "canceled"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Error codes attached to classified errors.
const (
	CodeInputFailed        = "INPUT_FAILED"
	CodeFilterFailed       = "FILTER_FAILED"
	CodeOutputFailed       = "OUTPUT_FAILED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodeLengthMismatch     = "LENGTH_MISMATCH"
	CodeInsufficientGroups = "INSUFFICIENT_GROUPS"
	CodeEmptySample        = "EMPTY_SAMPLE"
	CodeCanceled           = "CANCELED"
	CodeUnknown            = "UNKNOWN"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Code is a stable machine-readable error code.
	Code string

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	switch {
	case e.OriginalErr != nil && e.Message == "":
		return fmt.Sprintf("%s error: %v", e.Category, e.OriginalErr)
	case e.OriginalErr != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Category, e.Message, e.OriginalErr)
	default:
		return fmt.Sprintf("%s error: %s", e.Category, e.Message)
	}
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// NewSourceError creates a ClassifiedError for an unreadable or malformed input.
func NewSourceError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategorySource,
		Code:        CodeInputFailed,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewPreconditionError creates a ClassifiedError for a statistical precondition violation.
func NewPreconditionError(code string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryPrecondition,
		Code:        code,
		OriginalErr: originalErr,
	}
}

// NewConfigurationError creates a ClassifiedError for invalid configuration.
func NewConfigurationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Code:        CodeInvalidConfig,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewOutputError creates a ClassifiedError for a failing report sink.
func NewOutputError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryOutput,
		Code:        CodeOutputFailed,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// ClassifyError classifies any error into a ClassifiedError.
// Already classified errors are returned as is.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{
			Category: CategoryUnknown,
			Code:     CodeUnknown,
			Message:  "nil error",
		}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{
			Category:    CategoryCanceled,
			Code:        CodeCanceled,
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Code:        CodeUnknown,
		OriginalErr: err,
	}
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil or unclassified errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	return ClassifyError(err).Category
}

// ErrorCode returns the code of a classified error, CodeUnknown for
// unclassified errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	return ClassifyError(err).Code
}

// IsFatal returns true if the error must abort the whole run.
// Precondition and data-quality errors are scoped to one test or one row.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetErrorCategory(err) {
	case CategoryPrecondition, CategoryDataQuality:
		return false
	default:
		return true
	}
}

// IsPrecondition reports whether err is a statistical precondition violation.
func IsPrecondition(err error) bool {
	return err != nil && GetErrorCategory(err) == CategoryPrecondition
}
