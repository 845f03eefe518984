package diag

import (
	"testing"

	"github.com/confkit/confkit/pkg/textspan"
)

func TestInvalidPrependsSummary(t *testing.T) {
	summary := DetailedError{Message: "first", Span: textspan.NewSpan(0, 1), Line: 1, Column: 1}
	other := DetailedError{Message: "second", Span: textspan.NewSpan(5, 6), Line: 1, Column: 6}

	r := Invalid(summary, []DetailedError{other})
	if r.Valid {
		t.Fatal("Invalid() produced a valid result")
	}
	if len(r.Errors) != 2 || r.Errors[0].Message != "first" {
		t.Fatalf("summary not prepended: %+v", r.Errors)
	}
}

func TestInvalidDeduplicatesSummary(t *testing.T) {
	summary := DetailedError{Message: "boom", Span: textspan.NewSpan(3, 4)}
	dup := DetailedError{Message: "boom", Span: textspan.NewSpan(3, 4), Code: "json.missing_comma"}

	r := Invalid(summary, []DetailedError{dup})
	if len(r.Errors) != 1 {
		t.Fatalf("expected deduplicated single error, got %d", len(r.Errors))
	}
}

func TestInvalidWithEmptyList(t *testing.T) {
	summary := DetailedError{Message: "only"}
	r := Invalid(summary, nil)
	if len(r.Errors) != 1 || r.Errors[0].Message != "only" {
		t.Fatalf("summary missing from errors: %+v", r.Errors)
	}
	if r.Summary == nil || r.Summary.Message != "only" {
		t.Fatal("summary not set")
	}
}

func TestValidMatchesEmptyErrors(t *testing.T) {
	if r := Success(); !r.Valid || len(r.Errors) != 0 {
		t.Fatalf("Success() inconsistent: %+v", r)
	}
	if r := Invalid(DetailedError{Message: "x"}, nil); r.Valid || len(r.Errors) == 0 {
		t.Fatalf("Invalid() inconsistent: %+v", r)
	}
}

func TestTruncate(t *testing.T) {
	errs := make([]DetailedError, 5)
	r := MultiValidationResult{Valid: false, Errors: errs}
	if got := r.Truncate(3); len(got.Errors) != 3 {
		t.Fatalf("Truncate(3) kept %d errors", len(got.Errors))
	}
	if got := r.Truncate(10); len(got.Errors) != 5 {
		t.Fatalf("Truncate(10) kept %d errors", len(got.Errors))
	}
}

func TestClampBudget(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {-4, 1}, {1, 1}, {7, 7}, {10, 10}, {50, 10},
	}
	for _, tt := range tests {
		if got := ClampBudget(tt.in); got != tt.want {
			t.Errorf("ClampBudget(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
