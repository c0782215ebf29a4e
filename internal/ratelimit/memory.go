package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	key        string
	timestamps []time.Time
}

// MemoryStore is a process-local sliding window store bounded to capacity keys; the least
// recently hit key is evicted first. It does not limit across instances.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	order    *list.List
	entries  map[string]*list.Element
}

func NewMemoryStore(capacity int) *MemoryStore {
	return newMemoryStore(capacity, time.Now)
}

func newMemoryStore(capacity int, now func() time.Time) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryStore{
		capacity: capacity,
		now:      now,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	el, ok := s.entries[key]
	if !ok {
		el = s.order.PushFront(&memoryEntry{key: key})
		s.entries[key] = el
		s.evict()
	} else {
		s.order.MoveToFront(el)
	}
	entry := el.Value.(*memoryEntry)

	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if now.Sub(ts) < window {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(valid) >= limit {
		retryAfter := window
		if len(valid) > 0 {
			retryAfter = window - now.Sub(valid[0])
		}
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Allowed: false, Count: len(valid), RetryAfter: retryAfter}, nil
	}

	entry.timestamps = append(entry.timestamps, now)
	return Result{
		Allowed:    true,
		Count:      len(entry.timestamps),
		RetryAfter: window - now.Sub(entry.timestamps[0]),
	}, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) evict() {
	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*memoryEntry).key)
	}
}
