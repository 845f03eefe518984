// Package textspan provides byte-offset spans into an immutable text
// buffer and the splice primitive that keeps every byte outside the
// span untouched.
package textspan

// Span is a half-open [Start,End) byte range into the original
// document buffer. A span is only meaningful against the exact buffer
// it was produced from; splicing it into a different buffer is
// undefined beyond bounds clamping.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span [start,end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Slice returns the bytes the span covers in content.
func (s Span) Slice(content string) string {
	return content[s.Start:s.End]
}

// Replace splices newVal into content at span, copying every other
// byte verbatim. The caller must supply a span obtained against the
// same content.
func Replace(content string, span Span, newVal string) string {
	out := make([]byte, 0, len(content)-span.Len()+len(newVal))
	out = append(out, content[:span.Start]...)
	out = append(out, newVal...)
	out = append(out, content[span.End:]...)
	return string(out)
}
