// Package ratelimit bounds upload-credential issuance per client IP.
// The Limiter interface lets a single-instance deployment run on process
// memory while a multi-instance one shares a redis counter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	// Allow reports whether the key may proceed within the sliding window.
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is the process-local default: one token-bucket per key
// sized to the configured requests-per-window budget.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*memoryEntry
	requests int
	window   time.Duration
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		limiters: make(map[string]*memoryEntry),
		requests: requests,
		window:   window,
	}
	go l.janitor()
	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &memoryEntry{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.requests)), l.requests),
		}
		l.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow(), nil
}

func (l *MemoryLimiter) janitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-3 * l.window)
		l.mu.Lock()
		for key, entry := range l.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(l.limiters, key)
			}
		}
		l.mu.Unlock()
	}
}
