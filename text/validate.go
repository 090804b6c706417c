package text

import (
	"github.com/pkg/errors"
)

// ErrInvalidResult marks a DiffResult that breaks the structural guarantees
// of ComputeDiff. It always indicates an engine bug.
var ErrInvalidResult = errors.New("invalid diff result")

// Validate checks that changes, with moved blocks put back, are sorted and
// separated by at least one unchanged line on both sides, that every range fits the documents, and
// that inner changes stay inside their hunk.
func Validate(result *DiffResult, original, modified []string) error {
	original = normalizeLines(original)
	modified = normalizeLines(modified)

	for i, c := range result.Changes {
		if err := validateLineRange(c.Original, original); err != nil {
			return errors.Wrapf(err, "change %d original", i)
		}
		if err := validateLineRange(c.Modified, modified); err != nil {
			return errors.Wrapf(err, "change %d modified", i)
		}

		for j, inner := range c.InnerChanges {
			if err := validateInner(inner.Original, c.Original, original); err != nil {
				return errors.Wrapf(err, "change %d inner %d original", i, j)
			}
			if err := validateInner(inner.Modified, c.Modified, modified); err != nil {
				return errors.Wrapf(err, "change %d inner %d modified", i, j)
			}
		}
	}

	// Moved blocks taken out of Changes leave gaps that only line up again
	// once they are put back.
	hunks := result.LineChanges()
	for i := 1; i < len(hunks); i++ {
		prev, c := hunks[i-1], hunks[i]
		if prev.Original.EndExclusive >= c.Original.Start || prev.Modified.EndExclusive >= c.Modified.Start {
			return errors.Wrapf(ErrInvalidResult, "hunks %d and %d overlap or touch: %s, %s", i-1, i, prev, c)
		}
		if c.Original.Start-prev.Original.EndExclusive != c.Modified.Start-prev.Modified.EndExclusive {
			return errors.Wrapf(ErrInvalidResult, "hunks %d and %d enclose unequal unchanged stretches", i-1, i)
		}
	}

	for i, m := range result.Moves {
		if err := validateLineRange(m.Original, original); err != nil {
			return errors.Wrapf(err, "move %d original", i)
		}
		if err := validateLineRange(m.Modified, modified); err != nil {
			return errors.Wrapf(err, "move %d modified", i)
		}
		for j, inner := range m.InnerChanges {
			if err := validateInner(inner.Original, m.Original, original); err != nil {
				return errors.Wrapf(err, "move %d inner %d original", i, j)
			}
			if err := validateInner(inner.Modified, m.Modified, modified); err != nil {
				return errors.Wrapf(err, "move %d inner %d modified", i, j)
			}
		}
	}
	return nil
}

func validateLineRange(r LineRange, lines []string) error {
	if r.Start < 1 || r.Start > r.EndExclusive || r.EndExclusive > len(lines)+1 {
		return errors.Wrapf(ErrInvalidResult, "line range %s outside document of %d lines", r, len(lines))
	}
	return nil
}

// validateInner checks that r lies in the character span of lines. A hunk
// spans from the end of the line above it to the start of the line below.
func validateInner(r Range, lines LineRange, doc []string) error {
	if r.End().IsBefore(r.Start()) {
		return errors.Wrapf(ErrInvalidResult, "range %s ends before it starts", r)
	}
	if r.StartLine < 1 || r.EndLine > len(doc) ||
		r.StartColumn < 1 || r.StartColumn > lineLength(doc, r.StartLine)+1 ||
		r.EndColumn < 1 || r.EndColumn > lineLength(doc, r.EndLine)+1 {
		return errors.Wrapf(ErrInvalidResult, "range %s outside document", r)
	}

	spanStart := Position{1, 1}
	if lines.Start > 1 {
		spanStart = endOfDocument(doc[:lines.Start-1])
	}
	spanEnd := endOfDocument(doc)
	if lines.EndExclusive <= len(doc) {
		spanEnd = Position{lines.EndExclusive, 1}
	}
	if r.Start().IsBefore(spanStart) || spanEnd.IsBefore(r.End()) {
		return errors.Wrapf(ErrInvalidResult, "range %s outside hunk %s", r, lines)
	}
	return nil
}
