package engine

import (
	"math"

	"github.com/pkg/errors"

	"linediff/types"
	"linediff/utils"
)

// Requests arrive from Lua as msgpack maps. Integers decode as int64 or
// uint64 and floats as float64 depending on their value.

func getNumber(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

func getBool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

// getLines accepts a list of strings or a single string that is split on
// line terminators.
func getLines(m map[string]any, key string) ([]string, error) {
	switch v := m[key].(type) {
	case nil:
		return nil, errors.Errorf("missing %q", key)
	case string:
		return utils.SplitLines(v), nil
	case []string:
		return v, nil
	case []any:
		lines := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("%s[%d] is %T, want string", key, i+1, item)
			}
			lines[i] = s
		}
		return lines, nil
	default:
		return nil, errors.Errorf("%q is %T, want list of strings", key, v)
	}
}

func parseOptions(m map[string]any) (types.DiffOptions, error) {
	var opts types.DiffOptions
	raw, ok := m["options"]
	if !ok || raw == nil {
		return opts, nil
	}
	// An empty Lua table arrives as an empty array.
	if list, isList := raw.([]any); isList && len(list) == 0 {
		return opts, nil
	}
	om, ok := raw.(map[string]any)
	if !ok {
		return opts, errors.Errorf("options is %T, want table", raw)
	}

	if v, ok := getBool(om, "ignore_trim_whitespace"); ok {
		opts.IgnoreTrimWhitespace = &v
	}
	if v, ok := getBool(om, "compute_moves"); ok {
		opts.ComputeMoves = &v
	}
	if v, ok := getBool(om, "compute_char_changes"); ok {
		opts.ComputeCharChanges = &v
	}
	if v, ok := getBool(om, "extend_to_subwords"); ok {
		opts.ExtendToSubwords = &v
	}
	if _, present := om["max_computation_time_ms"]; present {
		v, ok := getNumber(om, "max_computation_time_ms")
		if !ok || v < 0 {
			return opts, errors.Errorf("max_computation_time_ms must be a non-negative integer, got %v", om["max_computation_time_ms"])
		}
		opts.MaxComputationTimeMs = &v
	}
	return opts, nil
}

// ParseDiffRequest reads {original = {...}, modified = {...}, options = {...}}.
func ParseDiffRequest(m map[string]any) (*types.DiffRequest, error) {
	original, err := getLines(m, "original")
	if err != nil {
		return nil, err
	}
	modified, err := getLines(m, "modified")
	if err != nil {
		return nil, err
	}
	opts, err := parseOptions(m)
	if err != nil {
		return nil, err
	}
	return &types.DiffRequest{Original: original, Modified: modified, Options: opts}, nil
}

// ParseBufferDiffRequest reads {original_buf = n, modified_buf = n,
// highlight = bool, options = {...}}.
func ParseBufferDiffRequest(m map[string]any) (*types.BufferDiffRequest, error) {
	original, ok := getNumber(m, "original_buf")
	if !ok {
		return nil, errors.New("missing or invalid original_buf")
	}
	modified, ok := getNumber(m, "modified_buf")
	if !ok {
		return nil, errors.New("missing or invalid modified_buf")
	}
	highlight, _ := getBool(m, "highlight")
	opts, err := parseOptions(m)
	if err != nil {
		return nil, err
	}
	return &types.BufferDiffRequest{OriginalBuffer: original, ModifiedBuffer: modified, Highlight: highlight, Options: opts}, nil
}

// ParseRegionsRequest reads a diff request plus optional min_hidden_lines
// and min_context_lines.
func ParseRegionsRequest(m map[string]any) (*types.RegionsRequest, error) {
	diffReq, err := ParseDiffRequest(m)
	if err != nil {
		return nil, err
	}
	req := &types.RegionsRequest{
		DiffRequest:     *diffReq,
		MinHiddenLines:  types.DefaultMinHiddenLines,
		MinContextLines: types.DefaultMinContextLines,
	}
	if v, ok := getNumber(m, "min_hidden_lines"); ok {
		req.MinHiddenLines = v
	}
	if v, ok := getNumber(m, "min_context_lines"); ok {
		req.MinContextLines = v
	}
	return req, nil
}
