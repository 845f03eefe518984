package xmltext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/textspan"
)

// FindValueSpan resolves a path to a byte span. Path segments name
// nested elements; a final segment of the form "@name" targets an
// attribute of the innermost element. Element values resolve to the
// trimmed text content, attribute values to the bytes between the
// quotes.
func FindValueSpan(content string, path []string) (textspan.Span, error) {
	if len(path) == 0 {
		return textspan.Span{}, errors.New("path must not be empty")
	}
	elements := path
	attr := ""
	if last := path[len(path)-1]; strings.HasPrefix(last, "@") {
		attr = last[1:]
		elements = path[:len(path)-1]
		if attr == "" {
			return textspan.Span{}, errors.New("attribute segment must not be empty")
		}
		if len(elements) == 0 {
			return textspan.Span{}, errors.New("attribute segment requires an enclosing element")
		}
	}

	z := NewTokenizer(content)
	var stack []string
	for {
		tok, err := z.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return textspan.Span{}, positioned(content, err)
		}
		switch tok.Kind {
		case ElementStart:
			stack = append(stack, tok.Name)
		case Attribute:
			if attr != "" && tok.Name == attr && pathMatches(stack, elements) {
				return tok.ValueSpan, nil
			}
		case ElementEndOpen:
			if attr != "" && pathMatches(stack, elements) {
				return textspan.Span{}, fmt.Errorf("attribute %q not found on element %q", attr, elements[len(elements)-1])
			}
		case ElementEndEmpty:
			if attr != "" && pathMatches(stack, elements) {
				return textspan.Span{}, fmt.Errorf("attribute %q not found on element %q", attr, elements[len(elements)-1])
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ElementClose:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case Text:
			if attr == "" && pathMatches(stack, elements) {
				if sp, ok := trimmedSpan(content, tok.Span); ok {
					return sp, nil
				}
			}
		}
	}
	return textspan.Span{}, fmt.Errorf("path not found: %s", strings.Join(path, "."))
}

// trimmedSpan narrows a text span to its non-whitespace core. Returns
// false when the text is whitespace only.
func trimmedSpan(content string, sp textspan.Span) (textspan.Span, bool) {
	start, end := sp.Start, sp.End
	for start < end && isXMLSpace(content[start]) {
		start++
	}
	for end > start && isXMLSpace(content[end-1]) {
		end--
	}
	if start == end {
		return textspan.Span{}, false
	}
	return textspan.NewSpan(start, end), true
}

func pathMatches(stack, elements []string) bool {
	if len(stack) != len(elements) {
		return false
	}
	for i := range stack {
		if stack[i] != elements[i] {
			return false
		}
	}
	return true
}

// ValidateSyntax tokenizes the whole document and checks element
// nesting. The first problem is returned as a positioned error.
func ValidateSyntax(content string) error {
	z := NewTokenizer(content)
	type openTag struct {
		name string
		span textspan.Span
	}
	var stack []openTag
	for {
		tok, err := z.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return positioned(content, err)
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
				return positioned(content, &SyntaxError{
					Message: fmt.Sprintf("mismatched closing tag </%s> with no open element", tok.Name),
					Offset:  tok.Span.Start,
				})
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.name != tok.Name {
				return positioned(content, &SyntaxError{
					Message: fmt.Sprintf("mismatched closing tag </%s>, expected </%s>", tok.Name, top.name),
					Offset:  tok.Span.Start,
				})
			}
		}
	}
	if len(stack) > 0 {
		names := make([]string, len(stack))
		for i, t := range stack {
			names[i] = t.name
		}
		return positioned(content, &SyntaxError{
			Message: fmt.Sprintf("unclosed tags: %s", strings.Join(names, ", ")),
			Offset:  stack[len(stack)-1].span.Start,
		})
	}
	return nil
}

// positioned converts a *SyntaxError into a *diag.PositionedError with
// line and column resolved against content.
func positioned(content string, err error) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	ix := textspan.NewLineIndex(content)
	line, col := ix.LineCol(se.Offset)
	return &diag.PositionedError{
		Message: se.Message,
		Line:    line,
		Column:  col,
		Span:    errorSpan(content, se),
	}
}

// Escape replaces the five XML-reserved characters with entity
// references, making a raw value safe inside text or attributes.
func Escape(value string) string {
	return xmlEscaper.Replace(value)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)
