package engine

import (
	"linediff/metrics"
	"linediff/text"
)

// ToLuaFormat converts a diff result to plain tables for the Lua side.
// Line numbers and columns stay 1-based.
func ToLuaFormat(result *text.DiffResult) map[string]any {
	changes := make([]map[string]any, len(result.Changes))
	for i, c := range result.Changes {
		change := map[string]any{
			"original": lineRangeToLua(c.Original),
			"modified": lineRangeToLua(c.Modified),
		}
		if c.InnerChanges != nil {
			change["inner_changes"] = rangeMappingsToLua(c.InnerChanges)
		}
		changes[i] = change
	}

	moves := make([]map[string]any, len(result.Moves))
	for i, m := range result.Moves {
		moves[i] = map[string]any{
			"original":      lineRangeToLua(m.Original),
			"modified":      lineRangeToLua(m.Modified),
			"inner_changes": rangeMappingsToLua(m.InnerChanges),
		}
	}

	return map[string]any{
		"changes":     changes,
		"moves":       moves,
		"hit_timeout": result.HitTimeout,
		"identical":   result.Identical,
	}
}

func lineRangeToLua(r text.LineRange) map[string]any {
	return map[string]any{
		"start":         r.Start,
		"end_exclusive": r.EndExclusive,
	}
}

func rangeToLua(r text.Range) map[string]any {
	return map[string]any{
		"start_line": r.StartLine,
		"start_col":  r.StartColumn,
		"end_line":   r.EndLine,
		"end_col":    r.EndColumn,
	}
}

func rangeMappingsToLua(mappings []text.RangeMapping) []map[string]any {
	out := make([]map[string]any, len(mappings))
	for i, m := range mappings {
		out[i] = map[string]any{
			"original": rangeToLua(m.Original),
			"modified": rangeToLua(m.Modified),
		}
	}
	return out
}

func regionsToLua(regions []text.UnchangedRegion) []map[string]any {
	out := make([]map[string]any, len(regions))
	for i, r := range regions {
		out[i] = map[string]any{
			"original_line": r.OriginalLine,
			"modified_line": r.ModifiedLine,
			"line_count":    r.LineCount,
		}
	}
	return out
}

func statsToLua(s metrics.Snapshot) map[string]any {
	return map[string]any{
		"requests":   s.Requests,
		"errors":     s.Errors,
		"cache_hits": s.CacheHits,
		"timeouts":   s.Timeouts,
		"hunks":      s.Hunks,
		"moves":      s.Moves,
		"additions":  s.Additions,
		"deletions":  s.Deletions,
		"avg_ms":     s.AverageDuration().Milliseconds(),
		"max_ms":     s.MaxDuration.Milliseconds(),
	}
}
