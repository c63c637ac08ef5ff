package llm

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Guard stops calling the remote model after too many consecutive failures.
// Once open it rejects calls until the cooldown passes, then lets one call
// through; a further failure reopens it immediately. A nil Guard allows everything.
type Guard struct {
	mu          sync.Mutex
	failures    int
	maxFailures int
	cooldown    time.Duration
	openUntil   time.Time
	now         func() time.Time
	logger      *zap.Logger
}

// NewGuard returns nil when maxFailures is not positive.
func NewGuard(maxFailures int, cooldown time.Duration, logger *zap.Logger) *Guard {
	if maxFailures <= 0 {
		return nil
	}
	return &Guard{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
		logger:      logger,
	}
}

// Allow reports whether a call may be attempted now.
func (g *Guard) Allow() bool {
	if g == nil {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.now().Before(g.openUntil)
}

// RecordFailure counts a failed call and reports whether the guard opened.
func (g *Guard) RecordFailure() bool {
	if g == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures++
	if g.failures < g.maxFailures {
		return false
	}

	g.openUntil = g.now().Add(g.cooldown)
	g.logger.Warn("Remote model reached max consecutive failures",
		zap.Int("failures", g.failures),
		zap.Duration("cooldown", g.cooldown))
	return true
}

// RecordSuccess resets the failure count.
func (g *Guard) RecordSuccess() {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.openUntil = time.Time{}
}

// Failures returns the current consecutive failure count.
func (g *Guard) Failures() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}
