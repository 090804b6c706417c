package engine

import (
	"github.com/neovim/go-client/nvim"

	"linediff/logger"
)

// clientSetter is implemented by buffers that talk to nvim directly.
type clientSetter interface {
	SetClient(n *nvim.Nvim)
}

// SetNvim sets a new nvim instance for the engine (used for socket connections)
// and registers the RPC handlers on it.
func (e *Engine) SetNvim(n *nvim.Nvim) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Don't change if stopped
	if e.stopped {
		return
	}

	e.n = n
	if cs, ok := e.buffer.(clientSetter); ok {
		cs.SetClient(n)
	}

	handlers := map[string]any{
		"linediff_compute": func(_ *nvim.Nvim, args map[string]any) (map[string]any, error) {
			return e.handleCompute(args)
		},
		"linediff_buffers": func(_ *nvim.Nvim, args map[string]any) (map[string]any, error) {
			return e.handleBuffers(args)
		},
		"linediff_unchanged_regions": func(_ *nvim.Nvim, args map[string]any) ([]map[string]any, error) {
			return e.handleUnchangedRegions(args)
		},
		"linediff_clear": func(_ *nvim.Nvim, bufs []int) error {
			return e.ClearHighlights(bufs...)
		},
		"linediff_stats": func(_ *nvim.Nvim) (map[string]any, error) {
			return statsToLua(e.Stats()), nil
		},
		"linediff_event": func(_ *nvim.Nvim, event string) {
			eventType := EventTypeFromString(event)
			if eventType == "" {
				logger.Warn("unknown event %q", event)
				return
			}
			e.Dispatch(eventType)
		},
	}
	for name, fn := range handlers {
		if err := e.n.RegisterHandler(name, fn); err != nil {
			logger.Error("error registering %s handler for new connection: %v", name, err)
		}
	}
}

func (e *Engine) handleCompute(args map[string]any) (map[string]any, error) {
	req, err := ParseDiffRequest(args)
	if err != nil {
		return nil, err
	}
	result, err := e.Compute(e.context(), req)
	if err != nil {
		return nil, err
	}
	return ToLuaFormat(result), nil
}

func (e *Engine) handleBuffers(args map[string]any) (map[string]any, error) {
	req, err := ParseBufferDiffRequest(args)
	if err != nil {
		return nil, err
	}
	result, err := e.ComputeBuffers(e.context(), req)
	if err != nil {
		return nil, err
	}
	return ToLuaFormat(result), nil
}

func (e *Engine) handleUnchangedRegions(args map[string]any) ([]map[string]any, error) {
	req, err := ParseRegionsRequest(args)
	if err != nil {
		return nil, err
	}
	regions, err := e.UnchangedRegions(e.context(), req)
	if err != nil {
		return nil, err
	}
	return regionsToLua(regions), nil
}
