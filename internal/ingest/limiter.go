package ingest

// limiter.go bounds parallel ingest jobs with a semaphore. Rewriting a
// large vendor export holds the whole decoded file in memory, so unbounded
// concurrent uploads can exhaust the process. When every slot is occupied,
// new jobs wait up to maxWait before failing with ErrTooManyIngests.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyIngests is returned when all ingest slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyIngests = errors.New("too many concurrent ingests, please try again later")

// DefaultMaxConcurrentIngests bounds parallel ingest jobs by default.
const DefaultMaxConcurrentIngests = 4

// DefaultMaxWaitTime is how long a job waits for a slot before rejection.
const DefaultMaxWaitTime = 30 * time.Second

// Limiter controls concurrent ingest processing with a semaphore.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter allowing at most maxConcurrent simultaneous
// jobs. Non-positive arguments fall back to the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentIngests
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire blocks for a slot until maxWait expires. The caller MUST call
// Release when the job completes (use defer).
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyIngests
	}
}

// Release frees a previously acquired slot. Must be called exactly once per
// successful Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of jobs currently holding a slot.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active jobs complete or ctx is cancelled.
// Used during graceful shutdown.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of limiter state for health reporting.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
