package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

type entry struct {
	value      int64
	expiration time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]*entry
	done    chan struct{}
	closeMu sync.Once
}

// NewMemoryStore creates a memory store swept every DefaultCleanupInterval.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCleanupInterval(DefaultCleanupInterval)
}

// NewMemoryStoreWithCleanupInterval creates a memory store with a custom
// sweep interval.
func NewMemoryStoreWithCleanupInterval(interval time.Duration) *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]*entry),
		done: make(chan struct{}),
	}
	go s.cleanupLoop(interval)
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(time.Now()) {
		delete(s.data, key)
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return e.value, nil
}

// IncrementWithExpiry implements Store.
func (s *MemoryStore) IncrementWithExpiry(
	ctx context.Context,
	key string,
	delta int64,
	expiration time.Duration,
) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(now) {
		e = &entry{}
		if expiration > 0 {
			e.expiration = now.Add(expiration)
		}
		s.data[key] = e
	}
	e.value += delta
	return e.value, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeMu.Do(func() {
		close(s.done)
	})
	return nil
}

// Size returns the number of stored entries, expired or not.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) cleanupExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
		}
	}
}
