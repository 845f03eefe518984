package jsontext

import (
	"errors"
	"fmt"

	"github.com/confkit/confkit/pkg/textspan"
)

// Lex performs a strict left-to-right scan, returning tokens or the
// first lexical error. Number grammar is not validated here; the lexer
// only needs token boundaries, greedily consuming [0-9.eE+-].
func Lex(content string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '{':
			tokens = append(tokens, Token{LBrace, textspan.NewSpan(i, i+1)})
			i++
		case c == '}':
			tokens = append(tokens, Token{RBrace, textspan.NewSpan(i, i+1)})
			i++
		case c == '[':
			tokens = append(tokens, Token{LBrack, textspan.NewSpan(i, i+1)})
			i++
		case c == ']':
			tokens = append(tokens, Token{RBrack, textspan.NewSpan(i, i+1)})
			i++
		case c == ':':
			tokens = append(tokens, Token{Colon, textspan.NewSpan(i, i+1)})
			i++
		case c == ',':
			tokens = append(tokens, Token{Comma, textspan.NewSpan(i, i+1)})
			i++
		case c == '"':
			end, ok := scanString(content, i)
			if !ok {
				return nil, errors.New("unterminated string")
			}
			tokens = append(tokens, Token{StringLit, textspan.NewSpan(i, end)})
			i = end
		case c == '-' || (c >= '0' && c <= '9'):
			end := scanNumber(content, i)
			tokens = append(tokens, Token{NumberLit, textspan.NewSpan(i, end)})
			i = end
		case c == 't' && hasLiteral(content, i, "true"):
			tokens = append(tokens, Token{True, textspan.NewSpan(i, i+4)})
			i += 4
		case c == 'f' && hasLiteral(content, i, "false"):
			tokens = append(tokens, Token{False, textspan.NewSpan(i, i+5)})
			i += 5
		case c == 'n' && hasLiteral(content, i, "null"):
			tokens = append(tokens, Token{Null, textspan.NewSpan(i, i+4)})
			i += 4
		case isWhitespace(c):
			i++
		default:
			return nil, fmt.Errorf("unexpected byte 0x%02x at %d", c, i)
		}
	}
	return tokens, nil
}

// LexLenient keeps scanning past lexical errors: an unterminated string
// yields an error span reaching the next quote or newline, an
// unexpected byte yields a 1-byte error span and the scan advances one
// byte. Every error consumes at least one byte, so the loop terminates.
// budget 0 means unlimited.
func LexLenient(content string, budget int) ([]Token, []LexError) {
	var tokens []Token
	var lexErrors []LexError
	if budget <= 0 {
		budget = int(^uint(0) >> 1)
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '{':
			tokens = append(tokens, Token{LBrace, textspan.NewSpan(i, i+1)})
			i++
		case c == '}':
			tokens = append(tokens, Token{RBrace, textspan.NewSpan(i, i+1)})
			i++
		case c == '[':
			tokens = append(tokens, Token{LBrack, textspan.NewSpan(i, i+1)})
			i++
		case c == ']':
			tokens = append(tokens, Token{RBrack, textspan.NewSpan(i, i+1)})
			i++
		case c == ':':
			tokens = append(tokens, Token{Colon, textspan.NewSpan(i, i+1)})
			i++
		case c == ',':
			tokens = append(tokens, Token{Comma, textspan.NewSpan(i, i+1)})
			i++
		case c == '"':
			end, ok := scanString(content, i)
			if !ok {
				// Best-effort span: reach for the next quote on the
				// same line, else stop at the newline.
				rescue := end
				for rescue < len(content) {
					if content[rescue] == '"' {
						rescue++
						break
					}
					if content[rescue] == '\n' || content[rescue] == '\r' {
						break
					}
					rescue++
				}
				if len(lexErrors) < budget {
					lexErrors = append(lexErrors, LexError{
						Code:    "json.unterminated_string",
						Message: "Unterminated string literal",
						Span:    textspan.NewSpan(i, rescue),
					})
				}
				i = rescue
			} else {
				tokens = append(tokens, Token{StringLit, textspan.NewSpan(i, end)})
				i = end
			}
		case c == '-' || (c >= '0' && c <= '9'):
			end := scanNumber(content, i)
			tokens = append(tokens, Token{NumberLit, textspan.NewSpan(i, end)})
			i = end
		case c == 't' && hasLiteral(content, i, "true"):
			tokens = append(tokens, Token{True, textspan.NewSpan(i, i+4)})
			i += 4
		case c == 'f' && hasLiteral(content, i, "false"):
			tokens = append(tokens, Token{False, textspan.NewSpan(i, i+5)})
			i += 5
		case c == 'n' && hasLiteral(content, i, "null"):
			tokens = append(tokens, Token{Null, textspan.NewSpan(i, i+4)})
			i += 4
		case isWhitespace(c):
			i++
		default:
			if len(lexErrors) < budget {
				lexErrors = append(lexErrors, LexError{
					Code:    "json.unexpected_token",
					Message: fmt.Sprintf("Unexpected byte 0x%02x", c),
					Span:    textspan.NewSpan(i, i+1),
				})
			}
			i++
		}
		if len(lexErrors) >= budget {
			break
		}
	}
	return tokens, lexErrors
}

// Validate is the coarse single-error grammar check over a token list:
// balanced brackets plus the object key-colon rule. The rich pass lives
// in ValidateMulti.
func Validate(tokens []Token) error {
	var stack []Kind
	expectKeyOrEnd := false

	for i := 0; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case LBrace:
			stack = append(stack, LBrace)
			expectKeyOrEnd = true
		case LBrack:
			stack = append(stack, LBrack)
		case RBrace:
			if len(stack) == 0 || stack[len(stack)-1] != LBrace {
				return errors.New("mismatched '}'")
			}
			stack = stack[:len(stack)-1]
			expectKeyOrEnd = false
		case RBrack:
			if len(stack) == 0 || stack[len(stack)-1] != LBrack {
				return errors.New("mismatched ']'")
			}
			stack = stack[:len(stack)-1]
		case StringLit:
			if len(stack) > 0 && stack[len(stack)-1] == LBrace && expectKeyOrEnd {
				if i+1 >= len(tokens) || tokens[i+1].Kind != Colon {
					return errors.New("object key not followed by ':'")
				}
			}
		case Colon:
			expectKeyOrEnd = false
		case Comma:
			expectKeyOrEnd = len(stack) > 0 && stack[len(stack)-1] == LBrace
		}
	}
	if len(stack) != 0 {
		return errors.New("unclosed brackets/braces")
	}
	return nil
}

// scanString scans a string literal starting at the opening quote.
// Returns the offset one past the closing quote, or (position reached,
// false) when the string hits a raw newline or the end of the buffer.
func scanString(content string, start int) (end int, ok bool) {
	i := start + 1
	esc := false
	for i < len(content) {
		switch {
		case content[i] == '\\' && !esc:
			esc = true
			i++
		case content[i] == '"' && !esc:
			return i + 1, true
		case (content[i] == '\n' || content[i] == '\r') && !esc:
			return i, false
		default:
			esc = false
			i++
		}
	}
	return i, false
}

func scanNumber(content string, start int) int {
	i := start + 1
	for i < len(content) {
		c := content[i]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			i++
			continue
		}
		break
	}
	return i
}

func hasLiteral(content string, at int, lit string) bool {
	return len(content)-at >= len(lit) && content[at:at+len(lit)] == lit
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
