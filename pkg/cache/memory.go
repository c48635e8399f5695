package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is an in-process TTL store with an optional LRU size bound.
// Expiry is checked lazily on read; expired entries stay resident until they
// are overwritten or pushed out by the LRU bound. It is safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	now        func() time.Time
	evictions  uint64
}

type memItem struct {
	key string
	b   []byte
	exp time.Time
}

type MemoryOption func(*Memory)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates a store holding at most maxEntries keys; 0 means unbounded.
func NewMemory(maxEntries int, opts ...MemoryOption) *Memory {
	if maxEntries < 0 {
		maxEntries = 0
	}
	m := &Memory{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	it := el.Value.(*memItem)
	if !m.now().Before(it.exp) {
		return nil, false, nil
	}
	m.order.MoveToFront(el)

	// return a copy to avoid external mutation
	out := make([]byte, len(it.b))
	copy(out, it.b)
	return out, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_ = ctx
	b := make([]byte, len(data))
	copy(b, data)

	m.mu.Lock()
	defer m.mu.Unlock()

	exp := m.now().Add(ttl)
	if el, ok := m.items[key]; ok {
		it := el.Value.(*memItem)
		it.b = b
		it.exp = exp
		m.order.MoveToFront(el)
		return nil
	}

	m.items[key] = m.order.PushFront(&memItem{key: key, b: b, exp: exp})
	for m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*memItem).key)
		m.evictions++
	}
	return nil
}

// ExpiresAt reports the expiry of the resident entry for key, expired or not.
func (m *Memory) ExpiresAt(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return time.Time{}, false
	}
	return el.Value.(*memItem).exp, true
}

// Len returns the number of resident entries, including expired ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) Evictions() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictions
}

func (m *Memory) Clear() {
	m.mu.Lock()
	clear(m.items)
	m.order.Init()
	m.mu.Unlock()
}
