package engine

import (
	"time"

	"github.com/pkg/errors"

	"linediff/text"
	"linediff/types"
)

// ErrStopped is returned for requests that arrive after Stop.
var ErrStopped = errors.New("engine stopped")

// Buffer defines the interface for editor buffer operations.
// Implemented by buffer.NvimBuffer for Neovim integration.
type Buffer interface {
	Lines(bufs ...int) ([][]string, error)
	Highlight(originalBuf, modifiedBuf int, result *text.DiffResult, original, modified []string) error
	Clear(bufs ...int) error
}

type EngineConfig struct {
	NsID          int
	Defaults      text.Options          // options of requests that do not override them
	CacheEntries  int                   // results kept; 0 uses cache.DefaultCapacity
	StatsInterval time.Duration         // periodic stats logging, 0 = off
	Groups        types.HighlightGroups // used by buffer.NvimBuffer
}
