package render

import (
	"context"
	"strings"
	"testing"

	textdiff "github.com/andreyvit/diff"
	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linediff/text"
)

func diff(original, modified []string, opts text.Options) *text.DiffResult {
	return text.ComputeDiff(context.Background(), original, modified, opts)
}

// assertText reports a line diff of the two renderings on mismatch.
func assertText(t *testing.T, want, got, msg string) {
	t.Helper()
	if want != got {
		t.Errorf("%s:\n%s", msg, textdiff.LineDiff(want, got))
	}
}

func letters(s string) []string {
	return strings.Split(s, "")
}

func TestUnified_Context(t *testing.T) {
	original := letters("abcdefghij")
	modified := letters("abcdEfghij")

	got := Unified(diff(original, modified, text.Options{}), original, modified, UnifiedOptions{FromFile: "a.txt", ToFile: "b.txt", Context: 1})

	want := "--- a.txt\n+++ b.txt\n" +
		"@@ -4,3 +4,3 @@\n" +
		" d\n" +
		"-e\n" +
		"+E\n" +
		" f\n"
	assertText(t, want, got, "unified")
}

func TestUnified_InsertionAtTop(t *testing.T) {
	original := []string{"a", "b"}
	modified := []string{"x", "a", "b"}

	got := Unified(diff(original, modified, text.Options{}), original, modified, UnifiedOptions{})

	assert.Equal(t, "@@ -0,0 +1 @@\n+x\n", got, "empty original side points at the line before")
}

func TestUnified_Identical(t *testing.T) {
	lines := []string{"a", "b"}

	assert.Equal(t, "", Unified(diff(lines, lines, text.Options{}), lines, lines, UnifiedOptions{Context: 3}), "no output")
}

func TestUnified_MarksMoves(t *testing.T) {
	original := letters("abcdef")
	modified := letters("defabc")

	got := Unified(diff(original, modified, text.Options{ComputeMoves: true}), original, modified, UnifiedOptions{})

	assert.Equal(t, 2, strings.Count(got, "\\ moved\n"), "one marker per moved run:\n%s", got)
}

func TestSideBySide(t *testing.T) {
	original := []string{"a", "b", "c"}
	modified := []string{"a", "B", "c", "d"}

	got := SideBySide(diff(original, modified, text.Options{}), original, modified, 5)

	want := "a       a\n" +
		"b     | B\n" +
		"c       c\n" +
		"      > d\n"
	assertText(t, want, got, "side by side")
}

func TestSideBySide_WideAndLong(t *testing.T) {
	original := []string{"日本語テキスト"}
	modified := []string{"\tx"}

	got := SideBySide(diff(original, modified, text.Options{}), original, modified, 6)

	assert.Equal(t, "日本…  |     x\n", got, "wide runes truncated by cells, tabs expanded")
}

func TestExpandTabs(t *testing.T) {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false

	assert.Equal(t, "ab  c", expandTabs(cond, "ab\tc"), "to next stop")
	assert.Equal(t, "    x", expandTabs(cond, "\tx"), "leading tab")
	assert.Equal(t, "plain", expandTabs(cond, "plain"), "untouched")
	assert.Equal(t, "日  x", expandTabs(cond, "日\tx"), "wide rune takes two cells")
	assert.Equal(t, "α   x", expandTabs(cond, "α\tx"), "ambiguous rune is narrow")

	cond.EastAsianWidth = true
	assert.Equal(t, "α  x", expandTabs(cond, "α\tx"), "ambiguous rune follows the condition")
}

func TestDiffs_Rebuild(t *testing.T) {
	tests := []struct {
		name     string
		original []string
		modified []string
		opts     text.Options
	}{
		{"word change", []string{"hello world", "bye"}, []string{"hello there", "bye"}, text.Options{ComputeCharChanges: true}},
		{"line only", []string{"a", "b", "c"}, []string{"a", "x", "c", "d"}, text.Options{}},
		{"append", []string{"a", "b"}, []string{"a", "b", "c"}, text.Options{ComputeCharChanges: true}},
		{"from empty", nil, []string{"x", "y"}, text.Options{ComputeCharChanges: true}},
		{"to empty", []string{"x", "y"}, []string{""}, text.Options{ComputeCharChanges: true}},
		{"moved", letters("abcdef"), letters("defabc"), text.Options{ComputeMoves: true, ComputeCharChanges: true}},
		{"whitespace ignored", []string{"  a", "b"}, []string{"a", "c"}, text.Options{IgnoreTrimWhitespace: true, ComputeCharChanges: true}},
		{"unicode", []string{"naïve café"}, []string{"naive café!"}, text.Options{ComputeCharChanges: true}},
	}

	dmp := diffmatchpatch.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs := Diffs(diff(tt.original, tt.modified, tt.opts), tt.original, tt.modified)

			assert.Equal(t, strings.Join(tt.original, "\n"), dmp.DiffText1(diffs), "original side")
			assert.Equal(t, strings.Join(tt.modified, "\n"), dmp.DiffText2(diffs), "modified side")
		})
	}
}

func TestPatch_Applies(t *testing.T) {
	original := []string{"package main", "", "func main() {", "\tprintln(\"hi\")", "}"}
	modified := []string{"package main", "", "import \"os\"", "", "func main() {", "\tprintln(\"hi\", os.Args)", "}"}

	patchText := Patch(diff(original, modified, text.Options{ComputeCharChanges: true}), original, modified)

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patchText)
	require.NoError(t, err)
	got, applied := dmp.PatchApply(patches, strings.Join(original, "\n"))
	for i, ok := range applied {
		assert.True(t, ok, "patch %d applied", i)
	}
	assert.Equal(t, strings.Join(modified, "\n"), got, "patched text")
}
