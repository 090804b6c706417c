package text

// Heuristics are the empirically tuned constants of the engine.
type Heuristics struct {
	// Line diffs use DynamicProgramming below this combined length, Myers otherwise.
	LineDPThreshold int `json:"line_dp_threshold"`
	// Character diffs use DynamicProgramming below this combined length.
	CharDPThreshold int `json:"char_dp_threshold"`
	// MaxShift limits how far a diff slides looking for a better boundary.
	MaxShift int `json:"max_shift"`
	// JoinGap is the largest unchanged gap between character diffs that
	// still gets joined.
	JoinGap int `json:"join_gap"`
	// MinMoveLines is the minimum size of a moved block.
	MinMoveLines int `json:"min_move_lines"`
	// MoveSimilarity is the similarity a deletion and an insertion must
	// exceed to be reported as a move.
	MoveSimilarity float64 `json:"move_similarity"`
}

// DefaultHeuristics are the values used when Options.Heuristics is zero.
var DefaultHeuristics = Heuristics{
	LineDPThreshold: 1500,
	CharDPThreshold: 500,
	MaxShift:        100,
	JoinGap:         2,
	MinMoveLines:    3,
	MoveSimilarity:  0.9,
}

// withDefaults fills unset fields from DefaultHeuristics.
func (h Heuristics) withDefaults() Heuristics {
	if h.LineDPThreshold <= 0 {
		h.LineDPThreshold = DefaultHeuristics.LineDPThreshold
	}
	if h.CharDPThreshold <= 0 {
		h.CharDPThreshold = DefaultHeuristics.CharDPThreshold
	}
	if h.MaxShift <= 0 {
		h.MaxShift = DefaultHeuristics.MaxShift
	}
	if h.JoinGap <= 0 {
		h.JoinGap = DefaultHeuristics.JoinGap
	}
	if h.MinMoveLines <= 0 {
		h.MinMoveLines = DefaultHeuristics.MinMoveLines
	}
	if h.MoveSimilarity <= 0 {
		h.MoveSimilarity = DefaultHeuristics.MoveSimilarity
	}
	return h
}
