package analytics

import (
	"context"
	"sync"
)

// MemoryStore keeps the history in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryStore) Summary(ctx context.Context) (Summary, error) {
	entries, _ := m.History(ctx)
	return Summarize(entries), nil
}

func (m *MemoryStore) Trends(ctx context.Context) (Trends, error) {
	entries, _ := m.History(ctx)
	return TrendsOf(entries), nil
}

// History returns a copy of the entries in insertion order.
func (m *MemoryStore) History(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...), nil
}

func (m *MemoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
