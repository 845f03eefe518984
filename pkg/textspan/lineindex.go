package textspan

import "sort"

// LineIndex maps byte offsets to 1-based line/column pairs and back.
// It records offset 0 plus one entry after every '\n' and is immutable
// once built; build one per validation call and share it so line/column
// and span values never disagree.
type LineIndex struct {
	offsets []int
	length  int
}

// NewLineIndex builds the line-start table for content.
func NewLineIndex(content string) *LineIndex {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &LineIndex{offsets: offsets, length: len(content)}
}

// LineCol converts a byte offset to a 1-based (line, column) pair.
// Offsets past the end of the buffer are clamped.
func (ix *LineIndex) LineCol(offset int) (line, col int) {
	if offset > ix.length {
		offset = ix.length
	}
	if offset < 0 {
		offset = 0
	}
	i := sort.SearchInts(ix.offsets, offset+1) - 1
	return i + 1, offset - ix.offsets[i] + 1
}

// Offset converts a 1-based (line, column) pair to a byte offset,
// clamping at the end of the addressed line. Columns count bytes, the
// convention of every decoder this package bridges to.
func (ix *LineIndex) Offset(line, col int) int {
	if line < 1 {
		line = 1
	}
	if line > len(ix.offsets) {
		return ix.length
	}
	start := ix.offsets[line-1]
	end := ix.length
	if line < len(ix.offsets) {
		end = ix.offsets[line] - 1 // before the '\n'
	}
	off := start + col - 1
	if off > end {
		off = end
	}
	if off < start {
		off = start
	}
	return off
}
