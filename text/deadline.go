package text

import (
	"context"
	"time"
)

// Deadline bounds the time spent in a diff computation. Every unbounded loop
// checks IsValid at least once per outer iteration and returns its partial
// result as soon as it reports false.
type Deadline interface {
	IsValid() bool
}

type infiniteDeadline struct{}

func (infiniteDeadline) IsValid() bool { return true }

// NoDeadline never expires.
var NoDeadline Deadline = infiniteDeadline{}

type timeBudget struct {
	ctx     context.Context
	start   time.Time
	budget  time.Duration
	expired bool
}

// NewDeadline returns a Deadline that expires once budget has elapsed or ctx
// is done. A zero budget means no time limit. Once expired, it stays expired.
func NewDeadline(ctx context.Context, budget time.Duration) Deadline {
	if budget <= 0 && (ctx == nil || ctx.Done() == nil) {
		return NoDeadline
	}
	return &timeBudget{ctx: ctx, start: time.Now(), budget: budget}
}

func (t *timeBudget) IsValid() bool {
	if t.expired {
		return false
	}
	if t.budget > 0 && time.Since(t.start) >= t.budget {
		t.expired = true
	} else if t.ctx != nil && t.ctx.Err() != nil {
		t.expired = true
	}
	return !t.expired
}
