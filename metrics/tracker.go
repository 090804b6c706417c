package metrics

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"linediff/logger"
)

// ComputeMetrics describes one finished diff request.
type ComputeMetrics struct {
	ID         string
	Additions  int
	Deletions  int
	Hunks      int
	Moves      int
	HitTimeout bool
	CacheHit   bool
	Duration   time.Duration
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests      int64         `json:"requests"`
	Errors        int64         `json:"errors"`
	CacheHits     int64         `json:"cache_hits"`
	Timeouts      int64         `json:"timeouts"`
	Hunks         int64         `json:"hunks"`
	Moves         int64         `json:"moves"`
	Additions     int64         `json:"additions"`
	Deletions     int64         `json:"deletions"`
	TotalDuration time.Duration `json:"total_duration_ns"`
	MaxDuration   time.Duration `json:"max_duration_ns"`
}

// AverageDuration is the mean compute time of requests that missed the cache.
func (s Snapshot) AverageDuration() time.Duration {
	computed := s.Requests - s.CacheHits
	if computed <= 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(computed)
}

// Fields renders the snapshot for structured logging.
func (s Snapshot) Fields() logger.Fields {
	return logger.Fields{
		"requests":   s.Requests,
		"errors":     s.Errors,
		"cache_hits": s.CacheHits,
		"timeouts":   s.Timeouts,
		"hunks":      s.Hunks,
		"moves":      s.Moves,
		"avg":        s.AverageDuration(),
		"max":        s.MaxDuration,
	}
}

// MetricsTracker accumulates request counters in process.
type MetricsTracker struct {
	mu    sync.Mutex
	stats Snapshot
}

func NewTracker() *MetricsTracker {
	return &MetricsTracker{}
}

func (t *MetricsTracker) TrackComputed(m *ComputeMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Requests++
	t.stats.Hunks += int64(m.Hunks)
	t.stats.Moves += int64(m.Moves)
	t.stats.Additions += int64(m.Additions)
	t.stats.Deletions += int64(m.Deletions)
	if m.HitTimeout {
		t.stats.Timeouts++
	}
	if m.CacheHit {
		t.stats.CacheHits++
	} else {
		t.stats.TotalDuration += m.Duration
		t.stats.MaxDuration = max(t.stats.MaxDuration, m.Duration)
	}

	logger.Debug("metrics: computed %s (hunks=%d moves=%d cached=%v in %v)", m.ID, m.Hunks, m.Moves, m.CacheHit, m.Duration)
}

func (t *MetricsTracker) TrackError(id string, err error) {
	t.mu.Lock()
	t.stats.Requests++
	t.stats.Errors++
	t.mu.Unlock()

	logger.Debug("metrics: request %s failed: %v", id, err)
}

func (t *MetricsTracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *MetricsTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = Snapshot{}
}

func GenerateUUID() string {
	var uuid [16]byte
	if _, err := rand.Read(uuid[:]); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x40 // version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 2
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}
