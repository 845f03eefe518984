// Package jsontext tokenizes, validates, and resolves paths in JSON
// text without building a value tree. Every token carries the byte
// span it occupies in the original buffer, which is what makes
// formatting-preserving edits possible.
package jsontext

import "github.com/confkit/confkit/pkg/textspan"

// Kind classifies a JSON token.
type Kind int

const (
	LBrace Kind = iota
	RBrace
	LBrack
	RBrack
	Colon
	Comma
	StringLit
	NumberLit
	True
	False
	Null
)

// Token is one spanned JSON token.
type Token struct {
	Kind Kind
	Span textspan.Span
}

// LexError is a recoverable lexical error from the lenient lexer.
type LexError struct {
	Code    string
	Message string
	Span    textspan.Span
}
