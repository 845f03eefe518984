// Package envtext parses dotenv-style files into byte spans. Lines are
// the unit of structure: blank lines and comments are skipped, every
// other line must be KEY=VALUE with an optional leading "export".
package envtext

import (
	"fmt"
	"strings"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/textspan"
)

// QuoteKind records how a value was quoted in the source.
type QuoteKind byte

const (
	Unquoted QuoteKind = iota
	SingleQuoted
	DoubleQuoted
)

// Entry is one KEY=VALUE line. KeySpan covers the bare key; ValueSpan
// covers the value and, for quoted values, INCLUDES the quote bytes,
// so replacing the span replaces the quoting decision too.
type Entry struct {
	KeySpan   textspan.Span
	ValueSpan textspan.Span
	Quote     QuoteKind
}

func (q QuoteKind) byte() byte {
	if q == SingleQuoted {
		return '\''
	}
	return '"'
}

// lexEntries tokenizes content line by line. Spans are computed
// against the original untrimmed buffer; only the parsing view is
// trimmed. The first lexical error stops the scan.
func lexEntries(content string) ([]Entry, *diag.PositionedError) {
	var entries []Entry
	offset := 0
	lineNo := 1

	for offset < len(content) {
		lineEnd := offset
		for lineEnd < len(content) && content[lineEnd] != '\n' && content[lineEnd] != '\r' {
			lineEnd++
		}
		eolLen := 0
		if lineEnd < len(content) {
			if content[lineEnd] == '\r' && lineEnd+1 < len(content) && content[lineEnd+1] == '\n' {
				eolLen = 2
			} else {
				eolLen = 1
			}
		}
		line := content[offset:lineEnd]

		leadWS := 0
		for leadWS < len(line) && isSpace(line[leadWS]) {
			leadWS++
		}
		trimmed := strings.TrimRight(line[leadWS:], " \t")
		base := offset + leadWS // offset of trimmed[0] in content

		if trimmed == "" || trimmed[0] == '#' {
			offset = lineEnd + eolLen
			lineNo++
			continue
		}

		idx := 0
		if hasExportKeyword(trimmed) {
			idx = len("export")
			for idx < len(trimmed) && isSpace(trimmed[idx]) {
				idx++
			}
		}

		keyStart := idx
		for idx < len(trimmed) && !isSpace(trimmed[idx]) && trimmed[idx] != '=' {
			idx++
		}
		keyEnd := idx
		for idx < len(trimmed) && isSpace(trimmed[idx]) {
			idx++
		}

		if idx >= len(trimmed) || trimmed[idx] != '=' {
			col := leadWS + idx + 1
			return nil, positioned("missing '=' separator", lineNo, col, base+idx)
		}
		idx++
		for idx < len(trimmed) && isSpace(trimmed[idx]) {
			idx++
		}

		quote := Unquoted
		bodyStart := idx
		if idx < len(trimmed) {
			switch trimmed[idx] {
			case '"':
				quote = DoubleQuoted
				bodyStart = idx + 1
			case '\'':
				quote = SingleQuoted
				bodyStart = idx + 1
			}
		}

		var valStart, valEnd int
		if quote != Unquoted {
			j := bodyStart
			for j < len(trimmed) && trimmed[j] != quote.byte() {
				j++
			}
			if j >= len(trimmed) {
				col := leadWS + j + 1
				return nil, positioned("unterminated quoted value", lineNo, col, base+j)
			}
			valStart = bodyStart - 1 // include opening quote
			valEnd = j + 1           // include closing quote
		} else {
			j := len(trimmed)
			if pos := indexUnescaped(trimmed[bodyStart:], '#'); pos >= 0 {
				j = bodyStart + pos
			}
			for j > bodyStart && isSpace(trimmed[j-1]) {
				j--
			}
			valStart = bodyStart
			valEnd = j
		}

		entries = append(entries, Entry{
			KeySpan:   textspan.NewSpan(base+keyStart, base+keyEnd),
			ValueSpan: textspan.NewSpan(base+valStart, base+valEnd),
			Quote:     quote,
		})

		offset = lineEnd + eolLen
		lineNo++
	}
	return entries, nil
}

// indexUnescaped finds the first occurrence of c not preceded by a
// backslash.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

func positioned(msg string, line, col int, offset int) *diag.PositionedError {
	return &diag.PositionedError{
		Message: msg,
		Line:    line,
		Column:  col,
		Span:    textspan.NewSpan(offset, offset),
	}
}

// ValidateSyntax reports the first lexical or duplicate-key error with
// its 1-based position. Duplicate keys are reported at the second
// occurrence.
func ValidateSyntax(content string) error {
	if pe := firstPositionedError(content); pe != nil {
		return pe
	}
	return nil
}

func firstPositionedError(content string) *diag.PositionedError {
	entries, lexErr := lexEntries(content)
	if lexErr != nil {
		return lexErr
	}
	index := textspan.NewLineIndex(content)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		key := strings.TrimSpace(e.KeySpan.Slice(content))
		if _, dup := seen[key]; dup {
			line, col := index.LineCol(e.KeySpan.Start)
			return &diag.PositionedError{
				Message: fmt.Sprintf("duplicate key '%s'", key),
				Line:    line,
				Column:  col,
				Span:    e.KeySpan,
			}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// FindValueSpan returns the value span for a key. An ENV path contains
// exactly one segment.
func FindValueSpan(content string, path []string) (textspan.Span, error) {
	if len(path) != 1 {
		return textspan.Span{}, fmt.Errorf("ENV path must contain exactly one key")
	}
	entries, lexErr := lexEntries(content)
	if lexErr != nil {
		return textspan.Span{}, lexErr
	}
	index := textspan.NewLineIndex(content)
	seen := make(map[string]struct{}, len(entries))
	var found *Entry
	for i, e := range entries {
		key := strings.TrimSpace(e.KeySpan.Slice(content))
		if _, dup := seen[key]; dup {
			line, col := index.LineCol(e.KeySpan.Start)
			return textspan.Span{}, &diag.PositionedError{
				Message: fmt.Sprintf("duplicate key '%s'", key),
				Line:    line,
				Column:  col,
				Span:    e.KeySpan,
			}
		}
		seen[key] = struct{}{}
		if key == path[0] && found == nil {
			found = &entries[i]
		}
	}
	if found != nil {
		return found.ValueSpan, nil
	}
	return textspan.Span{}, fmt.Errorf("key '%s' not found", path[0])
}

// ValidateMulti adapts the single positioned error to the multi-error
// result shape. ENV is line-local, so the first error is the only safe
// one to report: it poisons key uniqueness for the rest of the file.
func ValidateMulti(content string) diag.MultiValidationResult {
	err := firstPositionedError(content)
	if err == nil {
		return diag.Success()
	}
	return diag.Invalid(diag.DetailedError{
		Message: err.Message,
		Line:    err.Line,
		Column:  err.Column,
		Span:    err.Span,
	}, nil)
}

// NeedsQuoting reports whether a raw value must be double-quoted when
// written into an ENV file.
func NeedsQuoting(s string) bool {
	return strings.ContainsAny(s, " #\n\t")
}

// Quote wraps s in double quotes, escaping the characters that cannot
// appear raw inside them.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
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
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func hasExportKeyword(s string) bool {
	const kw = "export"
	if !strings.HasPrefix(s, kw) {
		return false
	}
	return len(s) == len(kw) || isSpace(s[len(kw)])
}
