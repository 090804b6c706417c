package buffer

import (
	"cmp"
	"slices"

	"linediff/text"
	"linediff/types"
)

// Highlight is one extmark in nvim coordinates: a 0-based line and a
// 0-based byte column span. ColEnd -1 marks a whole-line highlight.
type Highlight struct {
	Group    string
	Line     int
	ColStart int
	ColEnd   int
}

// Highlights converts result into the highlights of the original and the
// modified buffer. Changed and moved lines get line highlights; inner changes
// get character highlights on top.
func Highlights(result *text.DiffResult, original, modified []string, groups types.HighlightGroups) (orig, mod []Highlight) {
	original = normalize(original)
	modified = normalize(modified)

	for _, c := range result.Changes {
		orig = appendLines(orig, c.Original, groups.LineDeleted)
		mod = appendLines(mod, c.Modified, groups.LineAdded)
		for _, inner := range c.InnerChanges {
			orig = appendRange(orig, inner.Original, original, groups.CharDeleted)
			mod = appendRange(mod, inner.Modified, modified, groups.CharAdded)
		}
	}
	for _, m := range result.Moves {
		orig = appendLines(orig, m.Original, groups.Moved)
		mod = appendLines(mod, m.Modified, groups.Moved)
		for _, inner := range m.InnerChanges {
			orig = appendRange(orig, inner.Original, original, groups.CharDeleted)
			mod = appendRange(mod, inner.Modified, modified, groups.CharAdded)
		}
	}

	sortHighlights(orig)
	sortHighlights(mod)
	return orig, mod
}

// ByteColumn converts a 1-based rune column of line to a 0-based byte column.
// Columns past the end clamp to the line length.
func ByteColumn(line string, column int) int {
	n := 1
	for i := range line {
		if n == column {
			return i
		}
		n++
	}
	return len(line)
}

func appendLines(highlights []Highlight, lines text.LineRange, group string) []Highlight {
	for line := lines.Start; line < lines.EndExclusive; line++ {
		highlights = append(highlights, Highlight{Group: group, Line: line - 1, ColEnd: -1})
	}
	return highlights
}

// appendRange splits r into one highlight per line it touches.
func appendRange(highlights []Highlight, r text.Range, doc []string, group string) []Highlight {
	for line := r.StartLine; line <= r.EndLine && line <= len(doc); line++ {
		content := doc[line-1]
		start, end := 0, len(content)
		if line == r.StartLine {
			start = ByteColumn(content, r.StartColumn)
		}
		if line == r.EndLine {
			end = ByteColumn(content, r.EndColumn)
		}
		if start >= end {
			continue
		}
		highlights = append(highlights, Highlight{Group: group, Line: line - 1, ColStart: start, ColEnd: end})
	}
	return highlights
}

func sortHighlights(highlights []Highlight) {
	slices.SortStableFunc(highlights, func(a, b Highlight) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.ColStart, b.ColStart)
	})
}

func normalize(lines []string) []string {
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
