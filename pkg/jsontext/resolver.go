package jsontext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/confkit/confkit/pkg/textspan"
)

// Segment is one step of a logical path: an object key or an array
// index. The choice is made once when the caller's string path is
// parsed: a segment is an Index iff it is all digits with no leading
// zero ("01" stays a Key, never silently coerced to index 1).
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns an object-key segment.
func KeySegment(key string) Segment {
	return Segment{Key: key}
}

// IndexSegment returns an array-index segment.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// ParsePath converts the caller's string path into tagged segments.
func ParsePath(path []string) []Segment {
	segs := make([]Segment, len(path))
	for i, p := range path {
		if n, ok := parseIndex(p); ok {
			segs[i] = IndexSegment(n)
		} else {
			segs[i] = KeySegment(p)
		}
	}
	return segs
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false // leading zeros are ambiguous, treat as key
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	return n, true
}

func (s Segment) String() string {
	if s.IsIndex {
		return fmt.Sprintf("%d", s.Index)
	}
	return s.Key
}

func pathString(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// FindValueSpan lexes content and returns the byte span of the value
// addressed by path.
func FindValueSpan(content string, path []string) (textspan.Span, error) {
	tokens, err := Lex(content)
	if err != nil {
		return textspan.Span{}, err
	}
	return resolvePath(tokens, content, ParsePath(path))
}

// frame tracks one open container during the walk. Array counters live
// on the frame, so a comma only ever advances the counter of the
// innermost open container, and only when that container is an array.
type frame struct {
	isArray bool
	index   int
	ownsSeg bool // whether this container pushed a segment onto loc
}

// resolvePath walks the token stream left to right maintaining the
// logical location of the value under the cursor, and returns the span
// of the first value whose location equals path. Container values span
// from their opening delimiter to the matching closing one.
func resolvePath(tokens []Token, content string, path []Segment) (textspan.Span, error) {
	var frames []frame
	var loc []Segment
	var pendingKey *string

	// enter computes the segment for a value starting now and appends
	// it to loc. The root value has no segment.
	enter := func() bool {
		if len(frames) == 0 {
			return false
		}
		top := &frames[len(frames)-1]
		if top.isArray {
			loc = append(loc, IndexSegment(top.index))
			return true
		}
		if pendingKey == nil {
			// Malformed object member; strict validation would have
			// rejected this, treat it as unlocated.
			return false
		}
		loc = append(loc, KeySegment(*pendingKey))
		pendingKey = nil
		return true
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case LBrace, LBrack:
			entered := enter()
			if entered && segmentsEqual(loc, path) {
				end, err := findMatching(tokens, i, tok.Kind)
				if err != nil {
					return textspan.Span{}, err
				}
				return textspan.NewSpan(tok.Span.Start, end), nil
			}
			frames = append(frames, frame{isArray: tok.Kind == LBrack, ownsSeg: entered})
		case RBrace, RBrack:
			if len(frames) > 0 {
				top := frames[len(frames)-1]
				frames = frames[:len(frames)-1]
				if top.ownsSeg {
					loc = loc[:len(loc)-1]
				}
			}
		case StringLit:
			if i+1 < len(tokens) && tokens[i+1].Kind == Colon &&
				len(frames) > 0 && !frames[len(frames)-1].isArray && pendingKey == nil {
				key := content[tok.Span.Start+1 : tok.Span.End-1]
				pendingKey = &key
				i++ // consume the colon as well
				continue
			}
			if entered := enter(); entered || len(path) == 0 {
				if segmentsEqual(loc, path) {
					return tok.Span, nil
				}
				if entered {
					loc = loc[:len(loc)-1]
				}
			}
		case NumberLit, True, False, Null:
			if entered := enter(); entered || len(path) == 0 {
				if segmentsEqual(loc, path) {
					return tok.Span, nil
				}
				if entered {
					loc = loc[:len(loc)-1]
				}
			}
		case Comma:
			if len(frames) > 0 && frames[len(frames)-1].isArray {
				frames[len(frames)-1].index++
			}
		case Colon:
			// tolerated; strict validation catches stray colons
		}
	}
	return textspan.Span{}, fmt.Errorf("path not found: %s", pathString(path))
}

func segmentsEqual(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsIndex != b[i].IsIndex {
			return false
		}
		if a[i].IsIndex {
			if a[i].Index != b[i].Index {
				return false
			}
		} else if a[i].Key != b[i].Key {
			return false
		}
	}
	return true
}

// findMatching returns the end offset (exclusive) of the container
// opened at tokens[start].
func findMatching(tokens []Token, start int, open Kind) (int, error) {
	var closer Kind
	if open == LBrace {
		closer = RBrace
	} else {
		closer = RBrack
	}
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return tokens[i].Span.End, nil
			}
		}
	}
	if open == LBrace {
		return 0, errors.New("unmatched opening brace")
	}
	return 0, errors.New("unmatched opening bracket")
}

// SpanResolver lexes once and answers repeated path and pointer
// queries against the same buffer.
type SpanResolver struct {
	content string
	tokens  []Token
}

// NewSpanResolver tokenizes content for span queries.
func NewSpanResolver(content string) (*SpanResolver, error) {
	tokens, err := Lex(content)
	if err != nil {
		return nil, err
	}
	return &SpanResolver{content: content, tokens: tokens}, nil
}

// FindPath resolves a caller path to a value span.
func (r *SpanResolver) FindPath(path []string) (textspan.Span, error) {
	return resolvePath(r.tokens, r.content, ParsePath(path))
}

// SpanForPointer resolves an RFC-6901 JSON Pointer. The empty pointer
// addresses the whole document.
func (r *SpanResolver) SpanForPointer(pointer string) (textspan.Span, error) {
	segments, err := DecodePointer(pointer)
	if err != nil {
		return textspan.Span{}, err
	}
	if len(segments) == 0 {
		return textspan.NewSpan(0, len(r.content)), nil
	}
	return r.FindPath(segments)
}

// DecodePointer splits an RFC-6901 pointer ("/a/b/0") into unescaped
// segments, "~1" decoding to "/" and "~0" to "~". "" and "/" decode to
// the empty path.
func DecodePointer(pointer string) ([]string, error) {
	if pointer == "" || pointer == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("invalid JSON pointer: %q", pointer)
	}
	parts := strings.Split(pointer[1:], "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}
	return parts, nil
}
