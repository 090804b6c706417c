package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"linediff/text"
)

// document is a line array joined with "\n", with the byte offset of every
// line start.
type document struct {
	lines  []string
	starts []int
	text   string
}

func newDocument(lines []string) *document {
	if len(lines) == 0 {
		lines = []string{""}
	}
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	return &document{lines: lines, starts: starts, text: strings.Join(lines, "\n")}
}

// offset converts a 1-based line and rune column to a byte offset into text.
func (d *document) offset(p text.Position) int {
	line := d.lines[p.Line-1]
	col := 1
	for i := range line {
		if col == p.Column {
			return d.starts[p.Line-1] + i
		}
		col++
	}
	return d.starts[p.Line-1] + len(line)
}

// Diffs converts result into diff-match-patch operations over the two
// documents joined with "\n". Inner changes are used where present, whole
// lines otherwise. Stretches between changes that do not match exactly, as
// with whitespace-insensitive results, become a delete and an insert, so the
// operations always rebuild both documents.
func Diffs(result *text.DiffResult, original, modified []string) []diffmatchpatch.Diff {
	orig, mod := newDocument(original), newDocument(modified)

	var diffs []diffmatchpatch.Diff
	emit := func(op diffmatchpatch.Operation, s string) {
		if s != "" {
			diffs = append(diffs, diffmatchpatch.Diff{Type: op, Text: s})
		}
	}
	origPos, modPos := 0, 0
	between := func(origEnd, modEnd int) {
		a, b := orig.text[origPos:origEnd], mod.text[modPos:modEnd]
		if a == b {
			emit(diffmatchpatch.DiffEqual, a)
		} else {
			emit(diffmatchpatch.DiffDelete, a)
			emit(diffmatchpatch.DiffInsert, b)
		}
	}

	for _, h := range result.Hunks() {
		inner := h.InnerChanges
		if len(inner) == 0 {
			inner = []text.RangeMapping{h.ToRangeMapping(orig.lines, mod.lines)}
		}
		for _, c := range inner {
			origStart, origEnd := max(orig.offset(c.Original.Start()), origPos), orig.offset(c.Original.End())
			modStart, modEnd := max(mod.offset(c.Modified.Start()), modPos), mod.offset(c.Modified.End())
			origEnd, modEnd = max(origEnd, origStart), max(modEnd, modStart)

			between(origStart, modStart)
			emit(diffmatchpatch.DiffDelete, orig.text[origStart:origEnd])
			emit(diffmatchpatch.DiffInsert, mod.text[modStart:modEnd])
			origPos, modPos = origEnd, modEnd
		}
	}
	between(len(orig.text), len(mod.text))

	if len(diffs) == 0 {
		return diffs
	}
	return diffmatchpatch.New().DiffCleanupMerge(diffs)
}

// Patch renders result as a diff-match-patch patch against original.
func Patch(result *text.DiffResult, original, modified []string) string {
	dmp := diffmatchpatch.New()
	diffs := Diffs(result, original, modified)
	patches := dmp.PatchMake(newDocument(original).text, diffs)
	return dmp.PatchToText(patches)
}
