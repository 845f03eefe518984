package jsontext

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/confkit/confkit/pkg/diag"
)

// ValidateSyntax is the strict gate used before editing. It defers to
// the standards-compliant decoder so strict mode and the multi-error
// summary can never disagree about whether a document is valid.
func ValidateSyntax(content string) error {
	if pe := FirstError(content); pe != nil {
		return pe
	}
	return nil
}

// FirstError reports the canonical first syntax error with position
// and span, or nil when the document is valid JSON.
func FirstError(content string) *diag.PositionedError {
	detailed := groundTruth(content)
	if detailed == nil {
		return nil
	}
	return &diag.PositionedError{
		Message: detailed.Message,
		Line:    detailed.Line,
		Column:  detailed.Column,
		Span:    detailed.Span,
	}
}

// IsLiteral reports whether s can be inserted into a JSON document
// verbatim: true/false/null, or text that decodes as a number, array,
// or object. Plain strings are excluded so they get quoted.
func IsLiteral(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return false
	}
	switch v.(type) {
	case float64, map[string]any, []any:
		return true
	}
	return false
}

// Quote escapes s as a JSON string literal, including the surrounding
// quotes. Control characters outside the short escapes become \u00XX.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
