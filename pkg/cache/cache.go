// Package cache provides a volatile key/value store with per-entry expiry,
// used to memoize sentiment results and computed briefs within a process.
//
// Memory is deliberately simple: time-based expiry only, no capacity bound.
// Deployments that need a bounded or distributed backend can implement Store
// and hand it to the same constructors; callers never see the difference.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ask-andrew/360brief-sub007/pkg/clock"
)

// Store is the calling contract every cache backend satisfies.
type Store[V any] interface {
	// Get returns the value for key, or false if it was never set or has expired.
	Get(key string) (V, bool)

	// Set stores value under key, replacing any prior entry and resetting its TTL.
	// A ttl <= 0 stores the entry without expiry.
	Set(key string, value V, ttl time.Duration)

	// Delete removes key and reports whether a live entry was present.
	Delete(key string) bool

	// Clear removes every entry.
	Clear()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process Store guarded by a read/write mutex. Entries are
// evicted lazily by the Get that discovers them expired, or in bulk by Sweep.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	clock   clock.Clock
}

// NewMemory creates an empty Memory store. A nil clock uses real time.
func NewMemory[V any](c clock.Clock) *Memory[V] {
	if c == nil {
		c = clock.Real()
	}
	return &Memory[V]{
		entries: make(map[string]entry[V]),
		clock:   c,
	}
}

// Get implements Store.
func (m *Memory[V]) Get(key string) (V, bool) {
	var zero V

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if e.expired(m.clock.Now()) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, still := m.entries[key]; still && current.expired(m.clock.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set implements Store.
func (m *Memory[V]) Set(key string, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

// Delete implements Store. An entry that has already expired counts as absent.
func (m *Memory[V]) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false
	}
	delete(m.entries, key)
	return !e.expired(m.clock.Now())
}

// Clear implements Store.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry[V])
	m.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep evicts every expired entry and returns how many were removed.
func (m *Memory[V]) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval, as measured by the store's clock,
// until ctx is done. Sweeping is optional; Get already evicts lazily.
func (m *Memory[V]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.clock.After(interval):
				if ctx.Err() != nil {
					return
				}
				m.Sweep()
			}
		}
	}()
}

// Memoizer wraps a Store so concurrent misses on the same key run the
// computation once.
type Memoizer[V any] struct {
	store Store[V]
	group singleflight.Group
}

// NewMemoizer creates a Memoizer over store.
func NewMemoizer[V any](store Store[V]) *Memoizer[V] {
	return &Memoizer[V]{store: store}
}

// Store returns the underlying store.
func (m *Memoizer[V]) Store() Store[V] {
	return m.store
}

// abandonedError marks a shared computation that failed after the context of
// the caller running it ended. Callers whose own context is still live run
// the computation again instead of inheriting that failure.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

// Do returns the cached value for key, or runs compute, caches its result
// for ttl and returns it. Errors are returned and never cached. The boolean
// reports whether the value came from the cache.
//
// Concurrent misses on key share one computation, but each caller waits on
// its own ctx: a caller whose ctx ends returns ctx.Err() without disturbing
// the others, and a computation cut short by the cancelled caller that ran it
// is retried for the callers still waiting.
func (m *Memoizer[V]) Do(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, bool, error) {
	var zero V
	for {
		if v, ok := m.store.Get(key); ok {
			return v, true, nil
		}

		ch := m.group.DoChan(key, func() (any, error) {
			// Another caller may have filled the entry while we waited for the group.
			if v, ok := m.store.Get(key); ok {
				return v, nil
			}
			v, err := compute(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &abandonedError{err: err}
				}
				return nil, err
			}
			m.store.Set(key, v, ttl)
			return v, nil
		})

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				if abandoned, ok := res.Err.(*abandonedError); ok {
					if ctx.Err() == nil {
						continue
					}
					return zero, false, abandoned.err
				}
				return zero, false, res.Err
			}
			v, _ := res.Val.(V)
			return v, false, nil
		}
	}
}
