package render

import (
	"fmt"
	"strings"

	"linediff/text"
)

// UnifiedOptions controls Unified.
type UnifiedOptions struct {
	FromFile string
	ToFile   string
	Context  int // unchanged lines shown around each hunk
}

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

type lineOp struct {
	kind     opKind
	original int // line number on the original side, or the next one
	modified int
	text     string
	moved    bool
}

// Unified renders result as a unified diff. Each run of moved lines is
// followed by a "\ moved" marker line.
func Unified(result *text.DiffResult, original, modified []string, opts UnifiedOptions) string {
	if result.Identical {
		return ""
	}
	original = documentLines(original)
	modified = documentLines(modified)

	hunks := result.Hunks()
	if len(hunks) == 0 {
		return ""
	}
	ops := lineOps(hunks, original, modified)

	// Lines of folded regions are left out; whatever remains between them
	// forms one @@ section.
	hidden := make(map[int]bool)
	for _, region := range text.ComputeUnchangedRegions(result.LineChanges(), len(original), len(modified), 1, opts.Context) {
		for line := region.OriginalLine; line < region.OriginalLine+region.LineCount; line++ {
			hidden[line] = true
		}
	}

	var sb strings.Builder
	if opts.FromFile != "" || opts.ToFile != "" {
		fmt.Fprintf(&sb, "--- %s\n+++ %s\n", opts.FromFile, opts.ToFile)
	}

	var section []lineOp
	flush := func() {
		if len(section) > 0 {
			writeSection(&sb, section)
			section = section[:0]
		}
	}
	for _, op := range ops {
		if op.kind == opEqual && hidden[op.original] {
			flush()
			continue
		}
		section = append(section, op)
	}
	flush()
	return sb.String()
}

func lineOps(hunks []text.Hunk, original, modified []string) []lineOp {
	var ops []lineOp
	i, j := 1, 1
	equalUntil := func(end int) {
		for ; i < end; i, j = i+1, j+1 {
			ops = append(ops, lineOp{kind: opEqual, original: i, modified: j, text: original[i-1]})
		}
	}
	for _, h := range hunks {
		equalUntil(h.Original.Start)
		for ; i < h.Original.EndExclusive; i++ {
			ops = append(ops, lineOp{kind: opDelete, original: i, modified: j, text: original[i-1], moved: h.Moved})
		}
		for ; j < h.Modified.EndExclusive; j++ {
			ops = append(ops, lineOp{kind: opInsert, original: i, modified: j, text: modified[j-1], moved: h.Moved})
		}
	}
	equalUntil(len(original) + 1)
	return ops
}

func writeSection(sb *strings.Builder, ops []lineOp) {
	originalStart, modifiedStart := ops[0].original, ops[0].modified
	originalLen, modifiedLen := 0, 0
	for _, op := range ops {
		if op.kind != opInsert {
			originalLen++
		}
		if op.kind != opDelete {
			modifiedLen++
		}
	}
	// An empty side is addressed by the line before it.
	if originalLen == 0 {
		originalStart--
	}
	if modifiedLen == 0 {
		modifiedStart--
	}

	fmt.Fprintf(sb, "@@ -%s +%s @@\n", sectionRange(originalStart, originalLen), sectionRange(modifiedStart, modifiedLen))
	for k, op := range ops {
		sb.WriteByte(byte(op.kind))
		sb.WriteString(op.text)
		sb.WriteByte('\n')
		if op.moved && (k == len(ops)-1 || !ops[k+1].moved || ops[k+1].kind != op.kind) {
			sb.WriteString("\\ moved\n")
		}
	}
}

func sectionRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, length)
}
