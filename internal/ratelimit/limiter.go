// Package ratelimit bounds request counts per key within a fixed window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

type Limiter interface {
	// Allow records one attempt for key and reports whether it fits within
	// limit attempts per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close() error
}

type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

type memoryLimiter struct {
	mu      sync.Mutex
	entries map[string]windowState
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type windowState struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter keeps counters in process. Expired windows are swept in the
// background until Close is called.
func NewMemoryLimiter() Limiter {
	rl := newMemoryLimiter(time.Now)
	go rl.sweepLoop()
	return rl
}

func newMemoryLimiter(now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		entries: make(map[string]windowState),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (rl *memoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = windowState{count: 1, windowEnd: now.Add(window)}
		rl.entries[key] = state
		return Decision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
	}
	if state.count >= limit {
		return Decision{Allowed: false, Count: state.count, WindowEnd: state.windowEnd}
	}
	state.count++
	rl.entries[key] = state
	return Decision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
}

func (rl *memoryLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if !now.Before(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryLimiter) len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

func (rl *memoryLimiter) Close() error {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
	return nil
}
