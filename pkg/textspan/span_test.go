package textspan

import "testing"

func TestReplace(t *testing.T) {
	tests := []struct {
		name    string
		content string
		span    Span
		newVal  string
		want    string
	}{
		{
			name:    "middle of buffer",
			content: "The quick brown fox",
			span:    NewSpan(10, 15),
			newVal:  "lazy",
			want:    "The quick lazy fox",
		},
		{
			name:    "identity splice reproduces content",
			content: `{"name": "Toni"}`,
			span:    NewSpan(9, 15),
			newVal:  `"Toni"`,
			want:    `{"name": "Toni"}`,
		},
		{
			name:    "empty replacement deletes span",
			content: "abcdef",
			span:    NewSpan(2, 4),
			newVal:  "",
			want:    "abef",
		},
		{
			name:    "zero-width span inserts",
			content: "ab",
			span:    NewSpan(1, 1),
			newVal:  "X",
			want:    "aXb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Replace(tt.content, tt.span, tt.newVal); got != tt.want {
				t.Errorf("Replace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpanSlice(t *testing.T) {
	content := `{"name": "Toni", "age": 42}`
	span := NewSpan(9, 15)
	if got := span.Slice(content); got != `"Toni"` {
		t.Errorf("Slice() = %q, want %q", got, `"Toni"`)
	}
	if span.Len() != 6 {
		t.Errorf("Len() = %d, want 6", span.Len())
	}
}

func TestLineIndexLineCol(t *testing.T) {
	content := "abc\ndef\r\nghi"
	ix := NewLineIndex(content)

	tests := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 1, 4},  // the '\n' itself still belongs to line 1
		{4, 2, 1},  // 'd'
		{9, 3, 1},  // 'g' after \r\n
		{12, 3, 4}, // end of buffer
		{99, 3, 4}, // clamped
	}
	for _, tt := range tests {
		line, col := ix.LineCol(tt.offset)
		if line != tt.wantLine || col != tt.wantCol {
			t.Errorf("LineCol(%d) = (%d,%d), want (%d,%d)", tt.offset, line, col, tt.wantLine, tt.wantCol)
		}
	}
}

func TestLineIndexOffset(t *testing.T) {
	content := "abc\ndef\nghi"
	ix := NewLineIndex(content)

	tests := []struct {
		line, col int
		want      int
	}{
		{1, 1, 0},
		{1, 3, 2},
		{2, 1, 4},
		{2, 99, 7}, // clamped to end of line 2
		{3, 2, 9},
		{99, 1, 11}, // past last line clamps to EOF
	}
	for _, tt := range tests {
		if got := ix.Offset(tt.line, tt.col); got != tt.want {
			t.Errorf("Offset(%d,%d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestLineIndexRoundTrip(t *testing.T) {
	content := "key: value\nother: 1\n\nlast: true"
	ix := NewLineIndex(content)
	for off := 0; off < len(content); off++ {
		if content[off] == '\n' {
			continue
		}
		line, col := ix.LineCol(off)
		if back := ix.Offset(line, col); back != off {
			t.Fatalf("offset %d -> (%d,%d) -> %d", off, line, col, back)
		}
	}
}
