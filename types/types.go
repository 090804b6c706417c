package types

import (
	"time"

	"linediff/text"
)

// DiffOptions are per-request overrides. Nil fields take the daemon defaults.
type DiffOptions struct {
	IgnoreTrimWhitespace *bool
	MaxComputationTimeMs *int
	ComputeMoves         *bool
	ComputeCharChanges   *bool
	ExtendToSubwords     *bool
}

// Resolve applies the overrides on top of defaults.
func (o DiffOptions) Resolve(defaults text.Options) text.Options {
	opts := defaults
	if o.IgnoreTrimWhitespace != nil {
		opts.IgnoreTrimWhitespace = *o.IgnoreTrimWhitespace
	}
	if o.MaxComputationTimeMs != nil {
		opts.MaxComputationTime = time.Duration(*o.MaxComputationTimeMs) * time.Millisecond
	}
	if o.ComputeMoves != nil {
		opts.ComputeMoves = *o.ComputeMoves
	}
	if o.ComputeCharChanges != nil {
		opts.ComputeCharChanges = *o.ComputeCharChanges
	}
	if o.ExtendToSubwords != nil {
		opts.ExtendToSubwords = *o.ExtendToSubwords
	}
	return opts
}

// DiffRequest asks for the diff between two line arrays.
type DiffRequest struct {
	Original []string
	Modified []string
	Options  DiffOptions
}

// BufferDiffRequest asks for the diff between two editor buffers. With
// Highlight set, the result is also drawn into both buffers.
type BufferDiffRequest struct {
	OriginalBuffer int
	ModifiedBuffer int
	Highlight      bool
	Options        DiffOptions
}

// RegionsRequest asks for the foldable unchanged regions of a diff.
type RegionsRequest struct {
	DiffRequest
	MinHiddenLines  int // at least this many lines must be hidden
	MinContextLines int // lines kept visible next to each change
}

// Default region sizes, as used by the diff editor.
const (
	DefaultMinHiddenLines  = 3
	DefaultMinContextLines = 3
)

// HighlightGroups names the editor highlight groups used to draw a diff.
type HighlightGroups struct {
	LineDeleted string `json:"line_deleted"`
	LineAdded   string `json:"line_added"`
	CharDeleted string `json:"char_deleted"`
	CharAdded   string `json:"char_added"`
	Moved       string `json:"moved"`
}

// DefaultHighlightGroups are the built-in diff groups.
var DefaultHighlightGroups = HighlightGroups{
	LineDeleted: "DiffDelete",
	LineAdded:   "DiffAdd",
	CharDeleted: "DiffText",
	CharAdded:   "DiffText",
	Moved:       "DiffChange",
}
