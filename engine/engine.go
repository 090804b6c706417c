package engine

import (
	"context"
	"sync"
	"time"

	"github.com/neovim/go-client/nvim"
	"github.com/pkg/errors"

	"linediff/cache"
	"linediff/logger"
	"linediff/metrics"
	"linediff/text"
	"linediff/types"
	"linediff/utils"
)

type Engine struct {
	n         *nvim.Nvim
	buffer    Buffer
	cache     *cache.Cache
	metrics   *metrics.MetricsTracker
	mu        sync.RWMutex
	eventChan chan Event

	// Main context and cancel for the engine lifecycle
	mainCtx    context.Context
	mainCancel context.CancelFunc
	stopped    bool
	stopOnce   sync.Once

	config EngineConfig
}

func NewEngine(buffer Buffer, config EngineConfig) (*Engine, error) {
	if buffer == nil {
		return nil, errors.New("engine needs a buffer")
	}

	return &Engine{
		n:         nil, // Will be set later via SetNvim
		buffer:    buffer,
		cache:     cache.New(config.CacheEntries),
		metrics:   metrics.NewTracker(),
		eventChan: make(chan Event, 100),
		mainCtx:   context.Background(),
		config:    config,
	}, nil
}

func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}

	// Create main context for engine lifecycle
	e.mainCtx, e.mainCancel = context.WithCancel(ctx)
	e.mu.Unlock()

	go e.eventLoop(e.mainCtx)
	if e.config.StatsInterval > 0 {
		go e.statsLoop(e.mainCtx, e.config.StatsInterval)
	}
	logger.Info("engine started")
}

// Stop gracefully shuts down the engine. Diffs still running see their
// context cancelled and return early with HitTimeout set.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		logger.Info("stopping engine...")

		e.stopped = true
		if e.mainCancel != nil {
			e.mainCancel()
		}
		// Close event channel (this will cause eventLoop to exit if it hasn't already)
		close(e.eventChan)

		e.logStats()
		logger.Info("engine stopped")
	})
}

func (e *Engine) eventLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event loop panic recovered: %v", r)
			e.eventLoop(e.mainCtx) // Restart the event loop
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-e.eventChan:
			if !ok {
				return
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("event handler panic recovered for event %v: %v", event.Type, r)
					}
				}()
				e.handleEvent(event)
			}()
		}
	}
}

// Dispatch queues an event for the event loop. It never blocks; events are
// dropped when the queue is full or the engine is stopped.
func (e *Engine) Dispatch(eventType EventType) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.stopped {
		return false
	}
	select {
	case e.eventChan <- Event{Type: eventType}:
		return true
	default:
		logger.Warn("event queue full, dropping %s", eventType)
		return false
	}
}

func (e *Engine) statsLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.logStats()
		}
	}
}

func (e *Engine) logStats() {
	snapshot := e.metrics.Snapshot()
	if snapshot.Requests == 0 {
		return
	}
	fields := snapshot.Fields()
	fields["cached"] = e.cache.Len()
	logger.WithFields(fields).Info("diff stats")
}

func (e *Engine) context() context.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mainCtx
}

func (e *Engine) isStopped() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stopped
}

// Compute diffs two line arrays, reusing a cached result for identical
// requests.
func (e *Engine) Compute(ctx context.Context, req *types.DiffRequest) (*text.DiffResult, error) {
	if req == nil {
		return nil, errors.New("nil diff request")
	}
	if e.isStopped() {
		return nil, ErrStopped
	}

	id := metrics.GenerateUUID()
	start := time.Now()
	opts := req.Options.Resolve(e.config.Defaults)

	key := cache.Key(req.Original, req.Modified, opts)
	result, hit, err := e.cache.Do(key, func() *text.DiffResult {
		return text.ComputeDiff(ctx, req.Original, req.Modified, opts)
	})
	if err != nil {
		e.metrics.TrackError(id, err)
		return nil, errors.Wrap(err, "compute diff")
	}

	m := &metrics.ComputeMetrics{
		ID:         id,
		Hunks:      len(result.Changes),
		Moves:      len(result.Moves),
		HitTimeout: result.HitTimeout,
		CacheHit:   hit,
		Duration:   time.Since(start),
	}
	m.Deletions, m.Additions = countLines(result)
	e.metrics.TrackComputed(m)

	entry := logger.WithFields(logger.Fields{
		"id":       id,
		"original": len(req.Original),
		"modified": len(req.Modified),
		"hunks":    m.Hunks,
		"moves":    m.Moves,
		"cached":   hit,
		"elapsed":  m.Duration,
	})
	if result.HitTimeout {
		entry.Warn("diff hit the time budget")
	} else {
		entry.Debug("diff computed")
	}
	return result, nil
}

// ComputeBuffers diffs two editor buffers and optionally draws the result
// into them.
func (e *Engine) ComputeBuffers(ctx context.Context, req *types.BufferDiffRequest) (*text.DiffResult, error) {
	if req == nil {
		return nil, errors.New("nil buffer diff request")
	}

	lines, err := e.buffer.Lines(req.OriginalBuffer, req.ModifiedBuffer)
	if err != nil {
		return nil, err
	}
	if len(lines) != 2 {
		return nil, errors.Errorf("read %d buffers, want 2", len(lines))
	}
	original, modified := lines[0], lines[1]

	result, err := e.Compute(ctx, &types.DiffRequest{Original: original, Modified: modified, Options: req.Options})
	if err != nil {
		return nil, err
	}

	if req.Highlight {
		if err := e.buffer.Highlight(req.OriginalBuffer, req.ModifiedBuffer, result, original, modified); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ClearHighlights removes diff highlights from the given buffers.
func (e *Engine) ClearHighlights(bufs ...int) error {
	if e.isStopped() {
		return ErrStopped
	}
	return e.buffer.Clear(bufs...)
}

// UnchangedRegions diffs the request and returns the regions a viewer may
// fold away.
func (e *Engine) UnchangedRegions(ctx context.Context, req *types.RegionsRequest) ([]text.UnchangedRegion, error) {
	if req == nil {
		return nil, errors.New("nil regions request")
	}
	if req.MinHiddenLines < 0 || req.MinContextLines < 0 {
		return nil, errors.Errorf("negative region sizes: hidden=%d context=%d", req.MinHiddenLines, req.MinContextLines)
	}

	result, err := e.Compute(ctx, &req.DiffRequest)
	if err != nil {
		return nil, err
	}
	return text.ComputeUnchangedRegions(result.LineChanges(), len(req.Original), len(req.Modified), req.MinHiddenLines, req.MinContextLines), nil
}

func (e *Engine) Stats() metrics.Snapshot {
	return e.metrics.Snapshot()
}

func countLines(result *text.DiffResult) (deletions, additions int) {
	deleted := make([]text.LineRange, 0, len(result.Changes)+len(result.Moves))
	added := make([]text.LineRange, 0, len(result.Changes)+len(result.Moves))
	for _, c := range result.Changes {
		deleted = append(deleted, c.Original)
		added = append(added, c.Modified)
	}
	for _, m := range result.Moves {
		deleted = append(deleted, m.Original)
		added = append(added, m.Modified)
	}
	return utils.CountChangedLines(deleted, added)
}
