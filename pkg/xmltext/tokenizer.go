// Package xmltext tokenizes XML into spanned events and resolves
// element/attribute paths to byte spans. The tokenizer is deliberately
// hand-rolled: span precision requires byte-level control, and a
// value-producing XML parser would add a second lossy layer.
package xmltext

import (
	"fmt"
	"io"
	"strings"

	"github.com/confkit/confkit/pkg/textspan"
)

// TokenKind classifies a tokenizer event.
type TokenKind int

const (
	// ElementStart is "<name"; Name holds the local name.
	ElementStart TokenKind = iota
	// Attribute is name="value" inside a start tag; ValueSpan excludes
	// the quote bytes.
	Attribute
	// ElementEndOpen is the ">" closing a start tag.
	ElementEndOpen
	// ElementEndEmpty is the "/>" closing a self-closing tag.
	ElementEndEmpty
	// ElementClose is "</name>".
	ElementClose
	// Text is character data between tags, whitespace included.
	Text
	// Comment is "<!-- ... -->".
	Comment
	// ProcInst is "<? ... ?>" or a "<!DOCTYPE ...>" declaration.
	ProcInst
	// CData is "<![CDATA[ ... ]]>"; Span covers the inner text.
	CData
)

// Token is one spanned XML event.
type Token struct {
	Kind      TokenKind
	Name      string        // local element or attribute name
	Span      textspan.Span // the whole construct
	ValueSpan textspan.Span // attribute value without quotes
}

// SyntaxError is a positioned tokenizer failure.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Offset)
}

// Tokenizer is a pull tokenizer over one immutable buffer. Next
// returns io.EOF after the last token; any other error is fatal for
// this Tokenizer, but a new one may resume at a later offset.
type Tokenizer struct {
	content string
	pos     int
	inTag   bool
	failed  bool
}

// NewTokenizer scans content from the beginning.
func NewTokenizer(content string) *Tokenizer {
	return &Tokenizer{content: content}
}

// NewTokenizerAt scans content starting at offset; emitted spans stay
// absolute. Used by lenient validation to resume after an error.
func NewTokenizerAt(content string, offset int) *Tokenizer {
	if offset > len(content) {
		offset = len(content)
	}
	return &Tokenizer{content: content, pos: offset}
}

// Next returns the next token, io.EOF at end of input, or a
// *SyntaxError.
func (z *Tokenizer) Next() (Token, error) {
	if z.failed {
		return Token{}, io.EOF
	}
	if z.inTag {
		return z.nextInTag()
	}
	if z.pos >= len(z.content) {
		return Token{}, io.EOF
	}
	if z.content[z.pos] == '<' {
		return z.nextMarkup()
	}
	start := z.pos
	for z.pos < len(z.content) && z.content[z.pos] != '<' {
		z.pos++
	}
	return Token{Kind: Text, Span: textspan.NewSpan(start, z.pos)}, nil
}

func (z *Tokenizer) fail(msg string, offset int) (Token, error) {
	z.failed = true
	return Token{}, &SyntaxError{Message: msg, Offset: offset}
}

func (z *Tokenizer) nextMarkup() (Token, error) {
	start := z.pos
	rest := z.content[z.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest, "-->")
		if end < 0 {
			return z.fail("unterminated comment", start)
		}
		z.pos = start + end + len("-->")
		return Token{Kind: Comment, Span: textspan.NewSpan(start, z.pos)}, nil

	case strings.HasPrefix(rest, "<![CDATA["):
		end := strings.Index(rest, "]]>")
		if end < 0 {
			return z.fail("unterminated CDATA section", start)
		}
		inner := textspan.NewSpan(start+len("<![CDATA["), start+end)
		z.pos = start + end + len("]]>")
		return Token{Kind: CData, Span: inner}, nil

	case strings.HasPrefix(rest, "<?"), strings.HasPrefix(rest, "<!"):
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return z.fail("unterminated declaration", start)
		}
		z.pos = start + end + 1
		return Token{Kind: ProcInst, Span: textspan.NewSpan(start, z.pos)}, nil

	case strings.HasPrefix(rest, "</"):
		i := z.pos + 2
		nameStart := i
		for i < len(z.content) && isNameByte(z.content[i]) {
			i++
		}
		if i == nameStart {
			return z.fail("unexpected token in closing tag", i)
		}
		name := localName(z.content[nameStart:i])
		for i < len(z.content) && isXMLSpace(z.content[i]) {
			i++
		}
		if i >= len(z.content) || z.content[i] != '>' {
			return z.fail("unexpected token in closing tag", i)
		}
		z.pos = i + 1
		return Token{Kind: ElementClose, Name: name, Span: textspan.NewSpan(start, z.pos)}, nil

	default:
		i := z.pos + 1
		if i >= len(z.content) || !isNameStartByte(z.content[i]) {
			return z.fail("unexpected token after '<'", i)
		}
		nameStart := i
		for i < len(z.content) && isNameByte(z.content[i]) {
			i++
		}
		name := localName(z.content[nameStart:i])
		z.pos = i
		z.inTag = true
		return Token{Kind: ElementStart, Name: name, Span: textspan.NewSpan(start, i)}, nil
	}
}

func (z *Tokenizer) nextInTag() (Token, error) {
	for z.pos < len(z.content) && isXMLSpace(z.content[z.pos]) {
		z.pos++
	}
	if z.pos >= len(z.content) {
		return z.fail("unexpected end of input inside tag", z.pos)
	}
	switch z.content[z.pos] {
	case '>':
		z.pos++
		z.inTag = false
		return Token{Kind: ElementEndOpen, Span: textspan.NewSpan(z.pos-1, z.pos)}, nil
	case '/':
		if z.pos+1 >= len(z.content) || z.content[z.pos+1] != '>' {
			return z.fail("unexpected token inside tag", z.pos)
		}
		z.pos += 2
		z.inTag = false
		return Token{Kind: ElementEndEmpty, Span: textspan.NewSpan(z.pos-2, z.pos)}, nil
	}

	// attribute
	start := z.pos
	if !isNameStartByte(z.content[z.pos]) {
		return z.fail("unexpected token inside tag", z.pos)
	}
	nameStart := z.pos
	for z.pos < len(z.content) && isNameByte(z.content[z.pos]) {
		z.pos++
	}
	name := localName(z.content[nameStart:z.pos])
	for z.pos < len(z.content) && isXMLSpace(z.content[z.pos]) {
		z.pos++
	}
	if z.pos >= len(z.content) || z.content[z.pos] != '=' {
		return z.fail("expected '=' after attribute name", z.pos)
	}
	z.pos++
	for z.pos < len(z.content) && isXMLSpace(z.content[z.pos]) {
		z.pos++
	}
	if z.pos >= len(z.content) || (z.content[z.pos] != '"' && z.content[z.pos] != '\'') {
		return z.fail("expected quote to open attribute value", z.pos)
	}
	quote := z.content[z.pos]
	valStart := z.pos + 1
	i := valStart
	for i < len(z.content) && z.content[i] != quote && z.content[i] != '\n' {
		i++
	}
	if i >= len(z.content) || z.content[i] != quote {
		return z.fail("unterminated attribute quote", valStart-1)
	}
	z.pos = i + 1
	return Token{
		Kind:      Attribute,
		Name:      name,
		Span:      textspan.NewSpan(start, z.pos),
		ValueSpan: textspan.NewSpan(valStart, i),
	}, nil
}

// localName strips a namespace prefix.
func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isXMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStartByte(b) || (b >= '0' && b <= '9') || b == '-' || b == '.' || b == ':'
}
