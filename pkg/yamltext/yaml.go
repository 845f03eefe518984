// Package yamltext resolves paths in YAML documents to byte spans
// using the goccy/go-yaml AST, which keeps token positions. Span
// precision is best-effort: plain scalars resolve exactly, quoted
// scalars resolve to the bytes between the quotes.
package yamltext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/jsontext"
	"github.com/confkit/confkit/pkg/textspan"
)

// FindValueSpan resolves a path to the span of a scalar value. Path
// segments follow the same rules as JSON paths: an all-digit segment
// without leading zeros indexes a sequence, anything else matches a
// mapping key.
func FindValueSpan(content string, path []string) (textspan.Span, error) {
	if len(path) == 0 {
		return textspan.Span{}, errors.New("path must not be empty")
	}
	segments := jsontext.ParsePath(path)

	file, err := parser.ParseBytes([]byte(content), 0)
	if err != nil {
		return textspan.Span{}, positioned(content, err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return textspan.Span{}, fmt.Errorf("path not found: %s", strings.Join(path, "."))
	}

	current := file.Docs[0].Body
	for _, seg := range segments {
		next, ok := step(current, seg)
		if !ok {
			return textspan.Span{}, fmt.Errorf("path not found: %s", strings.Join(path, "."))
		}
		current = next
	}

	tok := current.GetToken()
	if tok == nil {
		return textspan.Span{}, fmt.Errorf("path not found: %s", strings.Join(path, "."))
	}
	return tokenSpan(content, tok), nil
}

// step descends one path segment from node.
func step(node ast.Node, seg jsontext.Segment) (ast.Node, bool) {
	if seg.IsIndex {
		sn, ok := node.(*ast.SequenceNode)
		if !ok || seg.Index >= len(sn.Values) {
			return nil, false
		}
		return sn.Values[seg.Index], true
	}
	for _, pair := range mappingPairs(node) {
		if keyMatches(pair.Key, seg.Key) {
			return pair.Value, true
		}
	}
	return nil, false
}

// mappingPairs normalizes the two AST shapes a mapping can take: a
// MappingNode for multi-entry maps, a bare MappingValueNode for
// single-entry ones.
func mappingPairs(node ast.Node) []*ast.MappingValueNode {
	switch n := node.(type) {
	case *ast.MappingNode:
		return n.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}
	default:
		return nil
	}
}

func keyMatches(key ast.MapKeyNode, want string) bool {
	if sn, ok := key.(*ast.StringNode); ok {
		return sn.Value == want
	}
	if tok := key.GetToken(); tok != nil {
		return tok.Value == want
	}
	return false
}

// tokenSpan converts a token position (1-based line/column) to a byte
// span over content using the token's value length.
func tokenSpan(content string, tok *token.Token) textspan.Span {
	ix := textspan.NewLineIndex(content)
	start := ix.Offset(tok.Position.Line, tok.Position.Column)
	// quoted scalars: the position addresses the opening quote, the
	// token value is already unquoted
	if start < len(content) && (content[start] == '"' || content[start] == '\'') &&
		(len(tok.Value) == 0 || tok.Value[0] != content[start]) {
		start++
	}
	end := start + len(tok.Value)
	if end > len(content) {
		end = len(content)
	}
	return textspan.NewSpan(start, end)
}

// ValidateSyntax parses the document and reports the first syntax
// error with its position.
func ValidateSyntax(content string) error {
	if _, err := parser.ParseBytes([]byte(content), 0); err != nil {
		return positioned(content, err)
	}
	return nil
}

// ValidateMulti wraps the single parser error as a one-entry result;
// the YAML parser stops at the first failure, so there is nothing more
// to collect.
func ValidateMulti(content string, maxErrors int) diag.MultiValidationResult {
	err := ValidateSyntax(content)
	if err == nil {
		return diag.Success()
	}
	var pe *diag.PositionedError
	de := diag.DetailedError{Message: err.Error(), Code: "yaml.parse_error"}
	if errors.As(err, &pe) {
		de = diag.DetailedError{
			Message: pe.Message,
			Code:    "yaml.parse_error",
			Line:    pe.Line,
			Column:  pe.Column,
			Span:    pe.Span,
		}
	}
	return diag.Invalid(de, nil)
}

// positioned extracts the "[line:col] message" prefix goccy puts on
// syntax errors; anything unparsable falls back to line 1.
func positioned(content string, err error) error {
	msg := err.Error()
	line, col := 1, 1
	if first, _, _ := strings.Cut(msg, "\n"); strings.HasPrefix(first, "[") {
		var l, c int
		var rest string
		if n, _ := fmt.Sscanf(first, "[%d:%d] %s", &l, &c, &rest); n >= 2 {
			line, col = l, c
			if i := strings.Index(first, "] "); i >= 0 {
				msg = first[i+2:]
			}
		}
	}
	ix := textspan.NewLineIndex(content)
	off := ix.Offset(line, col)
	end := off + 1
	if end > len(content) {
		end = len(content)
	}
	if off > end {
		off = end
	}
	return &diag.PositionedError{
		Message: msg,
		Line:    line,
		Column:  col,
		Span:    textspan.NewSpan(off, end),
	}
}
