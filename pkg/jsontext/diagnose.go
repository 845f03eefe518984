package jsontext

import (
	"encoding/json"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/textspan"
)

// ByteLimit is the size ceiling above which multi-error collection is
// skipped and only the ground-truth single error is reported. A hard
// cutoff, not a timeout: every pass is linear, so bounding input size
// bounds worst-case CPU.
const ByteLimit = 1_000_000

// ValidateMulti runs the lenient diagnostic pipeline: a ground-truth
// parse with the standard library decoder for the summary, a lenient
// lex pass, then the structural pass over whatever tokens were
// collected. The lexical and structural passes share one budget, with
// lexical errors ordered first because they are collected first.
func ValidateMulti(content string, maxErrors int) diag.MultiValidationResult {
	if len(content) > ByteLimit {
		return basicResult(content)
	}

	summary := groundTruth(content)
	if summary == nil {
		return diag.Success()
	}

	budget := diag.ClampBudget(maxErrors)
	index := textspan.NewLineIndex(content)
	tokens, lexErrors := LexLenient(content, budget)

	var errors []diag.DetailedError
	for _, le := range lexErrors {
		line, col := index.LineCol(le.Span.Start)
		errors = append(errors, diag.DetailedError{
			Message: le.Message,
			Code:    le.Code,
			Line:    line,
			Column:  col,
			Span:    le.Span,
		})
		if len(errors) >= budget {
			break
		}
	}
	if len(errors) < budget {
		errors = append(errors, collectStructuralErrors(content, tokens, index, budget-len(errors))...)
	}

	return diag.Invalid(*summary, errors).Truncate(budget)
}

// basicResult is the degraded mode for oversized inputs: ground truth
// only, no lenient collection.
func basicResult(content string) diag.MultiValidationResult {
	if summary := groundTruth(content); summary != nil {
		return diag.Invalid(*summary, nil)
	}
	return diag.Success()
}

// groundTruth decodes content with encoding/json and, on failure,
// returns the canonical first error positioned via InferSpan. This is
// the only place a value-producing decoder is consulted; spans used
// for editing never come from here.
func groundTruth(content string) *diag.DetailedError {
	var v any
	err := json.Unmarshal([]byte(content), &v)
	if err == nil {
		return nil
	}

	index := textspan.NewLineIndex(content)
	start := len(content)
	if serr, ok := err.(*json.SyntaxError); ok {
		// Offset counts bytes read when the error surfaced; the
		// offending byte sits just before it.
		start = int(serr.Offset) - 1
		if start < 0 {
			start = 0
		}
	}
	span := InferSpan(content, start)
	line, col := index.LineCol(span.Start)
	return &diag.DetailedError{
		Message: err.Error(),
		Line:    line,
		Column:  col,
		Span:    span,
	}
}

// InferSpan widens a decoder byte offset to the token sitting at it: a
// full string literal, a full number, or the run of non-whitespace
// bytes.
func InferSpan(content string, start int) textspan.Span {
	if start >= len(content) {
		return textspan.NewSpan(len(content), len(content))
	}
	c := content[start]
	switch {
	case c == '"':
		i := start + 1
		esc := false
		for i < len(content) {
			b := content[i]
			if b == '\\' && !esc {
				esc = true
				i++
				continue
			}
			if b == '"' && !esc {
				i++
				break
			}
			esc = false
			i++
		}
		return textspan.NewSpan(start, i)
	case c == '-' || (c >= '0' && c <= '9'):
		return textspan.NewSpan(start, scanNumber(content, start))
	default:
		i := start + 1
		for i < len(content) && !isWhitespace(content[i]) {
			i++
		}
		return textspan.NewSpan(start, i)
	}
}

// Structural pass state. Each open container is either an object with
// a four-state machine or an array with an expect-value flag; comma
// guards remember a separator that has not been followed by a value
// yet, which is what turns `[1,]` into a trailing-comma diagnostic.
type objState int

const (
	expectKeyOrEnd objState = iota
	expectColon
	expectValue
	expectCommaOrEnd
)

type ctxKind int

const (
	ctxObject ctxKind = iota
	ctxArray
)

type context struct {
	kind ctxKind

	// object fields
	state      objState
	keySpan    textspan.Span
	commaGuard bool

	// array fields
	expectVal bool
	hasValue  bool
}

// collectStructuralErrors walks the token list once with an explicit
// context stack and classifies grammar errors the lexer cannot see.
// Missing-comma recovery re-processes the offending token without
// advancing, so adjacent values like `[1 2]` surface exactly one
// diagnostic per gap instead of a cascade.
func collectStructuralErrors(content string, tokens []Token, index *textspan.LineIndex, maxErrors int) []diag.DetailedError {
	var errors []diag.DetailedError
	var stack []context

	emit := func(span textspan.Span, code, message string) {
		line, col := index.LineCol(span.Start)
		errors = append(errors, diag.DetailedError{
			Message: message,
			Code:    code,
			Line:    line,
			Column:  col,
			Span:    span,
		})
	}

	// noteValueConsumed advances the enclosing context after any value
	// (scalar or whole container) completes.
	noteValueConsumed := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.kind == ctxObject {
			top.state = expectCommaOrEnd
			top.commaGuard = false
		} else {
			top.expectVal = false
			top.commaGuard = false
			top.hasValue = true
		}
	}

	i := 0
	for i < len(tokens) && len(errors) < maxErrors {
		tok := tokens[i]

		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.kind == ctxArray && !top.expectVal && tok.Kind != Comma && tok.Kind != RBrack {
				emit(tok.Span, "json.missing_comma", "Missing ',' between items")
				top.expectVal = true
				top.commaGuard = false
				continue // re-process the same token
			}
			if top.kind == ctxObject && top.state == expectCommaOrEnd && tok.Kind != Comma && tok.Kind != RBrace {
				emit(tok.Span, "json.missing_comma", "Missing ',' between items")
				top.state = expectKeyOrEnd
				top.commaGuard = false
				continue
			}
		}

		switch tok.Kind {
		case LBrace:
			noteValueConsumed()
			stack = append(stack, context{kind: ctxObject, state: expectKeyOrEnd})
			i++
		case RBrace:
			if len(stack) > 0 && stack[len(stack)-1].kind == ctxObject {
				top := stack[len(stack)-1]
				if top.state == expectKeyOrEnd && top.commaGuard {
					emit(tok.Span, "json.trailing_comma", "Trailing ',' before closing delimiter")
				}
				stack = stack[:len(stack)-1]
				noteValueConsumed()
			} else {
				emit(tok.Span, "json.mismatched_brace", "Mismatched closing delimiter")
				if len(stack) > 0 {
					stack = stack[:len(stack)-1] // pop anyway to keep recovering
				}
			}
			i++
		case LBrack:
			noteValueConsumed()
			stack = append(stack, context{kind: ctxArray, expectVal: true})
			i++
		case RBrack:
			if len(stack) > 0 && stack[len(stack)-1].kind == ctxArray {
				top := stack[len(stack)-1]
				if top.expectVal && top.hasValue {
					emit(tok.Span, "json.trailing_comma", "Trailing ',' before closing delimiter")
				}
				stack = stack[:len(stack)-1]
				noteValueConsumed()
			} else {
				emit(tok.Span, "json.mismatched_bracket", "Mismatched closing delimiter")
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
			i++
		case StringLit:
			if len(stack) > 0 && stack[len(stack)-1].kind == ctxObject {
				top := &stack[len(stack)-1]
				switch top.state {
				case expectKeyOrEnd:
					top.state = expectColon
					top.keySpan = tok.Span
					top.commaGuard = false
					i++
				case expectColon:
					// Another key-eligible token while the colon is
					// still owed: report at the key, treat this token
					// as the value.
					emit(top.keySpan, "json.missing_colon", "Missing ':' after object key")
					top.state = expectValue
					// do not consume the current token
				default:
					noteValueConsumed()
					i++
				}
			} else {
				noteValueConsumed()
				i++
			}
		case NumberLit, True, False, Null:
			noteValueConsumed()
			i++
		case Colon:
			if len(stack) > 0 && stack[len(stack)-1].kind == ctxObject {
				top := &stack[len(stack)-1]
				if top.state == expectColon {
					top.state = expectValue
				} else {
					emit(tok.Span, "json.unexpected_colon", "Unexpected ':'")
				}
			} else {
				emit(tok.Span, "json.unexpected_colon", "Unexpected ':'")
			}
			i++
		case Comma:
			if len(stack) > 0 && stack[len(stack)-1].kind == ctxObject {
				top := &stack[len(stack)-1]
				if top.state == expectCommaOrEnd {
					top.state = expectKeyOrEnd
					top.commaGuard = true
				} else {
					emit(tok.Span, "json.unexpected_comma", "Unexpected ','")
				}
			} else if len(stack) > 0 && stack[len(stack)-1].kind == ctxArray {
				top := &stack[len(stack)-1]
				if top.expectVal {
					emit(tok.Span, "json.unexpected_comma", "Unexpected ','")
				} else {
					top.expectVal = true
					top.commaGuard = true
				}
			} else {
				emit(tok.Span, "json.unexpected_comma", "Unexpected ','")
			}
			i++
		}
	}

	// Anything still open is reported innermost first, anchored at the
	// end of the buffer.
	if len(errors) < maxErrors && len(stack) > 0 {
		end := len(content)
		start := end - 1
		if start < 0 {
			start = 0
		}
		span := textspan.NewSpan(start, end)
		for j := len(stack) - 1; j >= 0 && len(errors) < maxErrors; j-- {
			if stack[j].kind == ctxObject {
				emit(span, "json.unclosed_object", "Unclosed '{'")
			} else {
				emit(span, "json.unclosed_array", "Unclosed '['")
			}
		}
	}

	if len(errors) > maxErrors {
		errors = errors[:maxErrors]
	}
	return errors
}
