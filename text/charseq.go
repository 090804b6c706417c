package text

import (
	"sort"
	"strings"
	"unicode"
)

// CharSequence is the characters of a slice of lines, flattened into one
// sequence with a '\n' element between source lines. When whitespace is not
// significant, leading and trailing whitespace of each line is dropped and
// remembered so offsets can be translated back to columns.
type CharSequence struct {
	lines    []string
	rng      Range
	elements []rune

	// Element offset at which each covered line starts.
	firstElementOffsetByLine []int
	// Column offset (0-based) of the first covered rune of each line.
	lineStartOffsets []int
	// Number of leading whitespace runes trimmed from each line.
	trimmedWsLengths []int
}

// NewCharSequence flattens lines within rng. rng is in 1-based positions of
// lines; columns count runes.
func NewCharSequence(lines []string, rng Range, considerWhitespaceChanges bool) *CharSequence {
	s := &CharSequence{
		lines:                    lines,
		rng:                      rng,
		firstElementOffsetByLine: []int{0},
	}

	for lineNumber := rng.StartLine; lineNumber <= rng.EndLine; lineNumber++ {
		line := []rune(lines[lineNumber-1])
		lineStartOffset := 0
		if lineNumber == rng.StartLine && rng.StartColumn > 1 {
			lineStartOffset = min(rng.StartColumn-1, len(line))
			line = line[lineStartOffset:]
		}
		s.lineStartOffsets = append(s.lineStartOffsets, lineStartOffset)

		trimmedWsLength := 0
		if !considerWhitespaceChanges {
			trimmedStart := trimLeftSpace(line)
			trimmedWsLength = len(line) - len(trimmedStart)
			line = trimRightSpace(trimmedStart)
		}
		s.trimmedWsLengths = append(s.trimmedWsLengths, trimmedWsLength)

		lineLength := len(line)
		if lineNumber == rng.EndLine {
			lineLength = min(rng.EndColumn-1-lineStartOffset-trimmedWsLength, len(line))
		}
		if lineLength > 0 {
			s.elements = append(s.elements, line[:lineLength]...)
		}

		if lineNumber < rng.EndLine {
			s.elements = append(s.elements, '\n')
			s.firstElementOffsetByLine = append(s.firstElementOffsetByLine, len(s.elements))
		}
	}
	return s
}

func (s *CharSequence) Len() int { return len(s.elements) }

func (s *CharSequence) Element(offset int) int { return int(s.elements[offset]) }

func (s *CharSequence) StronglyEqual(offset1, offset2 int) bool {
	return s.elements[offset1] == s.elements[offset2]
}

// Text returns the characters of r.
func (s *CharSequence) Text(r OffsetRange) string {
	return string(s.elements[r.Start:r.EndExclusive])
}

func (s *CharSequence) String() string {
	return s.Text(OffsetRangeOfLength(len(s.elements)))
}

// BoundaryScore prefers cuts between different character classes, after
// line breaks, and around separators and whitespace.
func (s *CharSequence) BoundaryScore(length int) int {
	prev := charBoundaryEnd
	if length > 0 {
		prev = charCategory(s.elements[length-1])
	}
	next := charBoundaryEnd
	if length < len(s.elements) {
		next = charCategory(s.elements[length])
	}

	if prev == charBoundaryLineBreakCR && next == charBoundaryLineBreakLF {
		// Never split a CRLF.
		return 0
	}
	if prev == charBoundaryLineBreakLF {
		return 150
	}

	score := 0
	if prev != next {
		score += 10
		if prev == charBoundaryWordLower && next == charBoundaryWordUpper {
			score++
		}
	}
	score += categoryBoundaryScore[prev]
	score += categoryBoundaryScore[next]
	return score
}

// TranslateOffset maps an element offset back to a document position. With
// preferLeft, an offset at the start of a line does not skip the trimmed
// leading whitespace.
func (s *CharSequence) TranslateOffset(offset int, preferLeft bool) Position {
	i := sort.Search(len(s.firstElementOffsetByLine), func(i int) bool {
		return s.firstElementOffsetByLine[i] > offset
	}) - 1
	lineOffset := offset - s.firstElementOffsetByLine[i]
	column := 1 + s.lineStartOffsets[i] + lineOffset
	if !(lineOffset == 0 && preferLeft) {
		column += s.trimmedWsLengths[i]
	}
	return Position{Line: s.rng.StartLine + i, Column: column}
}

// TranslateRange maps an element range back to a document range.
func (s *CharSequence) TranslateRange(r OffsetRange) Range {
	start := s.TranslateOffset(r.Start, false)
	end := s.TranslateOffset(r.EndExclusive, true)
	if end.IsBefore(start) {
		return RangeFromPositions(end, end)
	}
	return RangeFromPositions(start, end)
}

// FindWordContaining returns the run of word characters around offset.
func (s *CharSequence) FindWordContaining(offset int) (OffsetRange, bool) {
	if offset < 0 || offset >= len(s.elements) || !isWordChar(s.elements[offset]) {
		return OffsetRange{}, false
	}
	start := offset
	for start > 0 && isWordChar(s.elements[start-1]) {
		start--
	}
	end := offset
	for end < len(s.elements) && isWordChar(s.elements[end]) {
		end++
	}
	return OffsetRange{start, end}, true
}

// FindSubWordContaining is like FindWordContaining but also stops before
// upper case letters, so "fooBar" yields "foo" and "Bar".
func (s *CharSequence) FindSubWordContaining(offset int) (OffsetRange, bool) {
	if offset < 0 || offset >= len(s.elements) || !isWordChar(s.elements[offset]) {
		return OffsetRange{}, false
	}
	start := offset
	for start > 0 && isWordChar(s.elements[start-1]) && !isUpperCase(s.elements[start]) {
		start--
	}
	end := offset + 1
	for end < len(s.elements) && isWordChar(s.elements[end]) && !isUpperCase(s.elements[end]) {
		end++
	}
	return OffsetRange{start, end}, true
}

// CountLinesIn returns how many line breaks r spans.
func (s *CharSequence) CountLinesIn(r OffsetRange) int {
	return s.TranslateOffset(r.EndExclusive, false).Line - s.TranslateOffset(r.Start, false).Line
}

// ExtendToFullLines widens r to the start of its first line and the start of
// the line following it.
func (s *CharSequence) ExtendToFullLines(r OffsetRange) OffsetRange {
	starts := s.firstElementOffsetByLine
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > r.Start }) - 1
	start := 0
	if i >= 0 {
		start = starts[i]
	}
	j := sort.Search(len(starts), func(j int) bool { return r.EndExclusive <= starts[j] })
	end := len(s.elements)
	if j < len(starts) {
		end = starts[j]
	}
	return OffsetRange{start, end}
}

type charBoundaryCategory int

const (
	charBoundaryWordLower charBoundaryCategory = iota
	charBoundaryWordUpper
	charBoundaryWordNumber
	charBoundaryEnd
	charBoundaryOther
	charBoundarySeparator
	charBoundarySpace
	charBoundaryLineBreakCR
	charBoundaryLineBreakLF
)

var categoryBoundaryScore = map[charBoundaryCategory]int{
	charBoundaryWordLower:   0,
	charBoundaryWordUpper:   0,
	charBoundaryWordNumber:  0,
	charBoundaryEnd:         10,
	charBoundaryOther:       2,
	charBoundarySeparator:   30,
	charBoundarySpace:       3,
	charBoundaryLineBreakCR: 10,
	charBoundaryLineBreakLF: 10,
}

func charCategory(r rune) charBoundaryCategory {
	switch {
	case r == '\n':
		return charBoundaryLineBreakLF
	case r == '\r':
		return charBoundaryLineBreakCR
	case isSpace(r):
		return charBoundarySpace
	case r >= 'a' && r <= 'z':
		return charBoundaryWordLower
	case r >= 'A' && r <= 'Z':
		return charBoundaryWordUpper
	case r >= '0' && r <= '9':
		return charBoundaryWordNumber
	case r == ',' || r == ';':
		return charBoundarySeparator
	default:
		return charBoundaryOther
	}
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isUpperCase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func trimLeftSpace(line []rune) []rune {
	i := 0
	for i < len(line) && unicode.IsSpace(line[i]) {
		i++
	}
	return line[i:]
}

func trimRightSpace(line []rune) []rune {
	i := len(line)
	for i > 0 && unicode.IsSpace(line[i-1]) {
		i--
	}
	return line[:i]
}

// trimmedRuneCount is the number of runes of line without surrounding whitespace.
func trimmedRuneCount(line string) int {
	return len([]rune(strings.TrimSpace(line)))
}
