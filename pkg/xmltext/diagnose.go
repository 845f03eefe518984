package xmltext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/textspan"
)

// ByteLimit is the document size above which multi-error collection
// degrades to the single strict error, keeping worst-case cost bounded.
const ByteLimit = 1_000_000

// ValidateMulti runs lenient validation: it collects up to maxErrors
// classified diagnostics instead of stopping at the first failure.
// Tokenizer errors are recovered by resuming at the next '<'; when the
// document tokenizes cleanly, element nesting is checked as well.
// maxErrors <= 0 means "no caller limit" (the package cap still holds).
func ValidateMulti(content string, maxErrors int) diag.MultiValidationResult {
	budget := diag.MaxMultiErrors
	if maxErrors > 0 {
		budget = diag.ClampBudget(maxErrors)
	}

	if len(content) > ByteLimit {
		if err := ValidateSyntax(content); err != nil {
			return singleResult(err)
		}
		return diag.Success()
	}

	ix := textspan.NewLineIndex(content)
	var collected []diag.DetailedError
	emit := func(msg, code string, sp textspan.Span) bool {
		line, col := ix.LineCol(sp.Start)
		collected = append(collected, diag.DetailedError{
			Message: msg,
			Code:    code,
			Line:    line,
			Column:  col,
			Span:    sp,
		})
		return len(collected) >= budget
	}

	clean := true
	pos := 0
	for pos <= len(content) {
		z := NewTokenizerAt(content, pos)
		var err error
		for {
			if _, err = z.Next(); err != nil {
				break
			}
		}
		if err == io.EOF {
			break
		}
		clean = false
		var se *SyntaxError
		if !errors.As(err, &se) {
			break
		}
		sp := errorSpan(content, se)
		if emit(se.Message, classifyCode(se.Message), sp) {
			break
		}
		next := strings.IndexByte(content[sp.End:], '<')
		if next < 0 {
			break
		}
		pos = sp.End + next
	}

	if clean && len(collected) < budget {
		collectNestingErrors(content, emit)
	}

	if len(collected) == 0 {
		return diag.Success()
	}
	return diag.Invalid(collected[0], collected).Truncate(budget)
}

// collectNestingErrors reports mismatched closing tags and unclosed
// elements on a document that tokenizes without lexical errors.
func collectNestingErrors(content string, emit func(msg, code string, sp textspan.Span) bool) {
	z := NewTokenizer(content)
	type openTag struct {
		name string
		span textspan.Span
	}
	var stack []openTag
	for {
		tok, err := z.Next()
		if err != nil {
			break
		}
		switch tok.Kind {
		case ElementStart:
			stack = append(stack, openTag{name: tok.Name, span: tok.Span})
		case ElementEndEmpty:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ElementClose:
			if len(stack) == 0 {
				if emit(fmt.Sprintf("mismatched closing tag </%s> with no open element", tok.Name),
					"xml.mismatched_tag", tok.Span) {
					return
				}
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.name != tok.Name {
				if emit(fmt.Sprintf("mismatched closing tag </%s>, expected </%s>", tok.Name, top.name),
					"xml.mismatched_tag", tok.Span) {
					return
				}
			}
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if emit(fmt.Sprintf("unclosed tag <%s>", stack[i].name), "xml.unclosed_tag", stack[i].span) {
			return
		}
	}
}

// classifyCode maps a tokenizer message onto a stable error code.
func classifyCode(msg string) string {
	switch {
	case strings.Contains(msg, "unterminated attribute quote"):
		return "xml.unterminated_quote"
	case strings.Contains(msg, "mismatched"):
		return "xml.mismatched_tag"
	case strings.Contains(msg, "expected"):
		return "xml.unexpected_token"
	default:
		return "xml.parse_error"
	}
}

// errorSpan widens a tokenizer error offset into a useful highlight:
// an unterminated quote runs to the next quote or line end, anything
// else to the end of the enclosing construct, minimum one byte.
func errorSpan(content string, se *SyntaxError) textspan.Span {
	start := se.Offset
	if start >= len(content) {
		if len(content) == 0 {
			return textspan.NewSpan(0, 0)
		}
		return textspan.NewSpan(len(content)-1, len(content))
	}
	if strings.Contains(se.Message, "unterminated attribute quote") {
		end := start + 1
		for end < len(content) && content[end] != '"' && content[end] != '\'' && content[end] != '\n' {
			end++
		}
		return textspan.NewSpan(start, end)
	}
	if strings.Contains(se.Message, "expected") {
		return textspan.NewSpan(start, start+1)
	}
	end := start + 1
	for end < len(content) && content[end] != '>' && content[end] != '\n' {
		end++
	}
	if end < len(content) && content[end] == '>' {
		end++
	}
	return textspan.NewSpan(start, end)
}

// singleResult wraps a strict-mode error as a one-entry multi result.
func singleResult(err error) diag.MultiValidationResult {
	var pe *diag.PositionedError
	de := diag.DetailedError{Message: err.Error()}
	if errors.As(err, &pe) {
		de = diag.DetailedError{Message: pe.Message, Line: pe.Line, Column: pe.Column, Span: pe.Span}
	}
	return diag.Invalid(de, nil)
}
