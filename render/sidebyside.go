package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"linediff/text"
)

const tabWidth = 4

// Gutter markers between the two columns.
const (
	markEqual   = "   "
	markChanged = " | "
	markDeleted = " < "
	markAdded   = " > "
	markMovedTo = " { "
	markMovedIn = " } "
)

// SideBySide renders both documents in two columns of width cells each,
// sdiff style. Wide characters count as two cells; lines that do not fit are
// cut with an ellipsis.
func SideBySide(result *text.DiffResult, original, modified []string, width int) string {
	original = documentLines(original)
	modified = documentLines(modified)

	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	var sb strings.Builder
	row := func(left, mark, right string) {
		left = cond.FillRight(cond.Truncate(expandTabs(cond, left), width, "…"), width)
		right = cond.Truncate(expandTabs(cond, right), width, "…")
		sb.WriteString(strings.TrimRight(left+mark+right, " "))
		sb.WriteByte('\n')
	}

	i, j := 1, 1
	equalUntil := func(end int) {
		for ; i < end; i, j = i+1, j+1 {
			row(original[i-1], markEqual, modified[j-1])
		}
	}
	for _, h := range result.Hunks() {
		equalUntil(h.Original.Start)

		deleted, added := markDeleted, markAdded
		if h.Moved {
			deleted, added = markMovedTo, markMovedIn
		}
		for i < h.Original.EndExclusive && j < h.Modified.EndExclusive {
			row(original[i-1], markChanged, modified[j-1])
			i, j = i+1, j+1
		}
		for ; i < h.Original.EndExclusive; i++ {
			row(original[i-1], deleted, "")
		}
		for ; j < h.Modified.EndExclusive; j++ {
			row("", added, modified[j-1])
		}
	}
	equalUntil(len(original) + 1)
	return sb.String()
}

// expandTabs measures columns with cond so tab stops agree with the
// truncation widths.
func expandTabs(cond *runewidth.Condition, s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += cond.RuneWidth(r)
	}
	return sb.String()
}
