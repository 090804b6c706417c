package text

import (
	"strings"
)

// Sequence is what the diff algorithms operate on. Elements are opaque
// integer tokens; two positions are aligned when their tokens are equal.
type Sequence interface {
	Len() int
	Element(offset int) int
}

// BoundaryScorer is implemented by sequences that prefer some cut positions
// over others. BoundaryScore(length) scores a cut between length-1 and length;
// higher is better.
type BoundaryScorer interface {
	BoundaryScore(length int) int
}

// StrictComparer is implemented by sequences whose tokens may hide
// differences (for example trimmed line hashes). StronglyEqual compares the
// untrimmed values at two positions of the same sequence.
type StrictComparer interface {
	StronglyEqual(offset1, offset2 int) bool
}

func stronglyEqual(seq Sequence, offset1, offset2 int) bool {
	if sc, ok := seq.(StrictComparer); ok {
		return sc.StronglyEqual(offset1, offset2)
	}
	return seq.Element(offset1) == seq.Element(offset2)
}

// hashTable assigns small dense ids to strings. It lives for one ComputeDiff
// call only.
type hashTable struct {
	ids map[string]int
}

func newHashTable() *hashTable {
	return &hashTable{ids: make(map[string]int)}
}

func (h *hashTable) id(s string) int {
	if id, ok := h.ids[s]; ok {
		return id
	}
	id := len(h.ids)
	h.ids[s] = id
	return id
}

// LineSequence is a sequence of whole lines. Elements are ids of the trimmed
// line content, so lines that differ only by leading or trailing whitespace
// align.
type LineSequence struct {
	trimmedHash []int
	lines       []string
}

// newLineSequence builds a line sequence, assigning ids through table.
func newLineSequence(lines []string, table *hashTable) *LineSequence {
	hashes := make([]int, len(lines))
	for i, line := range lines {
		hashes[i] = table.id(strings.TrimSpace(line))
	}
	return &LineSequence{trimmedHash: hashes, lines: lines}
}

func (s *LineSequence) Len() int { return len(s.lines) }

func (s *LineSequence) Element(offset int) int { return s.trimmedHash[offset] }

// BoundaryScore prefers cuts between lines with little indentation.
func (s *LineSequence) BoundaryScore(length int) int {
	before := 0
	if length > 0 {
		before = indentation(s.lines[length-1])
	}
	after := 0
	if length < len(s.lines) {
		after = indentation(s.lines[length])
	}
	return 1000 - (before + after)
}

func (s *LineSequence) StronglyEqual(offset1, offset2 int) bool {
	return s.lines[offset1] == s.lines[offset2]
}

// Text joins the lines of r with "\n".
func (s *LineSequence) Text(r OffsetRange) string {
	return strings.Join(s.lines[r.Start:r.EndExclusive], "\n")
}

func indentation(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
