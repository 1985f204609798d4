// Package cache provides the TTL cache fronting expensive read paths.
//
// The cache is derived state, never a source of truth: every consumer must
// tolerate a miss, and the whole layer can be swapped for Noop without
// correctness loss. Entries carry a group tag so the invalidation
// coordinator can drop every entry of an (operation, user) pair by exact
// group match, without pattern matching over keys.
package cache

import "time"

// Cache is the narrow interface injected into the aggregator and the
// invalidation coordinator.
type Cache[T any] interface {
	// Get retrieves a value by key.
	Get(key string) (T, bool)

	// Set stores a value under key, tagged with an invalidation group.
	Set(key, group string, data T)

	// Delete removes a single key.
	Delete(key string)

	// DeleteGroup removes every entry tagged with the group.
	DeleteGroup(group string)

	// Size returns the current number of entries.
	Size() int
}

// Cleaner is implemented by caches that support expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, cache := range m.caches {
				cache.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}

// Noop is the drop-in fallback when no cache is configured. Every Get
// misses; writes are discarded.
type Noop[T any] struct{}

func NewNoop[T any]() Noop[T] { return Noop[T]{} }

func (Noop[T]) Get(string) (T, bool)  { var zero T; return zero, false }
func (Noop[T]) Set(string, string, T) {}
func (Noop[T]) Delete(string)         {}
func (Noop[T]) DeleteGroup(string)    {}
func (Noop[T]) Size() int             { return 0 }
