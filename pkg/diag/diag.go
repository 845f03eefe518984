// Package diag holds the positioned error types shared by every format
// engine: single strict-mode errors and the bounded multi-error result.
package diag

import "github.com/confkit/confkit/pkg/textspan"

// MaxMultiErrors caps how many errors one multi-validation call may
// collect, regardless of what the caller asked for.
const MaxMultiErrors = 10

// DetailedError is one classified, positioned diagnostic. Code is a
// stable machine-readable classification such as "json.missing_comma";
// Message is human text. Line and Column are 1-based and computed from
// the same LineIndex as Span, so the two never disagree within a call.
type DetailedError struct {
	Message string
	Code    string // empty when the error has no stable classification
	Line    int
	Column  int
	Span    textspan.Span
}

// PositionedError is the strict-mode single error: first failure only.
type PositionedError struct {
	Message string
	Line    int
	Column  int
	Span    textspan.Span
}

func (e *PositionedError) Error() string {
	return e.Message
}

// MultiValidationResult is the outcome of lenient validation. Summary
// is the first-encountered (lowest-offset) error and always appears in
// Errors; Valid is true exactly when Errors is empty.
type MultiValidationResult struct {
	Valid   bool
	Summary *DetailedError
	Errors  []DetailedError
}

// Success returns the valid result.
func Success() MultiValidationResult {
	return MultiValidationResult{Valid: true}
}

// Invalid builds a failed result, guaranteeing the summary is present
// in the error list (prepended unless an entry with the same span and
// message is already there).
func Invalid(summary DetailedError, errors []DetailedError) MultiValidationResult {
	if len(errors) == 0 {
		errors = []DetailedError{summary}
	} else if !containsError(errors, summary) {
		errors = append([]DetailedError{summary}, errors...)
	}
	return MultiValidationResult{
		Valid:   false,
		Summary: &summary,
		Errors:  errors,
	}
}

func containsError(errors []DetailedError, e DetailedError) bool {
	for i := range errors {
		if errors[i].Span == e.Span && errors[i].Message == e.Message {
			return true
		}
	}
	return false
}

// Truncate bounds the error list to maxErrors entries.
func (r MultiValidationResult) Truncate(maxErrors int) MultiValidationResult {
	if len(r.Errors) > maxErrors {
		r.Errors = r.Errors[:maxErrors]
	}
	return r
}

// ClampBudget normalizes a caller-requested error budget into 1..=MaxMultiErrors.
func ClampBudget(maxErrors int) int {
	if maxErrors < 1 {
		return 1
	}
	if maxErrors > MaxMultiErrors {
		return MaxMultiErrors
	}
	return maxErrors
}
