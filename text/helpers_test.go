package text

import (
	"strings"
	"unicode/utf8"
)

// intSequence is a bare Sequence without optional capabilities.
type intSequence []int

func (s intSequence) Len() int { return len(s) }

func (s intSequence) Element(offset int) int { return s[offset] }

type expiredDeadline struct{}

func (expiredDeadline) IsValid() bool { return false }

// applyInnerChanges rebuilds the modified text by replacing every inner
// change of result in the original text.
func applyInnerChanges(result *DiffResult, original, modified []string) string {
	origText := []rune(strings.Join(original, "\n"))
	modText := []rune(strings.Join(modified, "\n"))

	var sb strings.Builder
	last := 0
	for _, c := range result.Changes {
		for _, inner := range c.InnerChanges {
			start := runeOffset(original, inner.Original.Start())
			end := runeOffset(original, inner.Original.End())
			sb.WriteString(string(origText[last:start]))
			sb.WriteString(string(modText[runeOffset(modified, inner.Modified.Start()):runeOffset(modified, inner.Modified.End())]))
			last = end
		}
	}
	sb.WriteString(string(origText[last:]))
	return sb.String()
}

// runeOffset converts a position into an offset in the "\n" joined lines.
func runeOffset(lines []string, p Position) int {
	offset := 0
	for i := 0; i < p.Line-1; i++ {
		offset += utf8.RuneCountInString(lines[i]) + 1
	}
	return offset + p.Column - 1
}

// applyLineChanges rebuilds the modified lines by replacing every changed
// line range of the original.
func applyLineChanges(result *DiffResult, original, modified []string) []string {
	var out []string
	last := 1
	for _, c := range result.Changes {
		out = append(out, original[last-1:c.Original.Start-1]...)
		out = append(out, modified[c.Modified.Start-1:c.Modified.EndExclusive-1]...)
		last = c.Original.EndExclusive
	}
	return append(out, original[last-1:]...)
}

func linesOf(lines []string, r LineRange) []string {
	return lines[r.Start-1 : r.EndExclusive-1]
}
