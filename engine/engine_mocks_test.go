package engine

import (
	"sync"

	"github.com/pkg/errors"

	"linediff/text"
)

// --- Mock implementations ---

// mockBuffer implements the Buffer interface for testing
type mockBuffer struct {
	mu      sync.Mutex
	buffers map[int][]string
	err     error

	// Track method calls
	linesCalls     int
	highlightCalls int
	lastHighlight  struct {
		originalBuf int
		modifiedBuf int
		result      *text.DiffResult
	}
	cleared []int
}

func newMockBuffer() *mockBuffer {
	return &mockBuffer{
		buffers: map[int][]string{
			1: {"line 1", "line 2", "line 3"},
			2: {"line 1", "line two", "line 3", "line 4"},
		},
	}
}

func (b *mockBuffer) Lines(bufs ...int) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linesCalls++
	if b.err != nil {
		return nil, b.err
	}

	result := make([][]string, len(bufs))
	for i, buf := range bufs {
		lines, ok := b.buffers[buf]
		if !ok {
			return nil, errors.Errorf("invalid buffer %d", buf)
		}
		result[i] = lines
	}
	return result, nil
}

func (b *mockBuffer) Highlight(originalBuf, modifiedBuf int, result *text.DiffResult, original, modified []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.highlightCalls++
	b.lastHighlight.originalBuf = originalBuf
	b.lastHighlight.modifiedBuf = modifiedBuf
	b.lastHighlight.result = result
	return b.err
}

func (b *mockBuffer) Clear(bufs ...int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared = append(b.cleared, bufs...)
	return b.err
}
