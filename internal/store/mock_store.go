// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	attempts map[string]*SaveAttempt // keyed by attempt ID
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		attempts: make(map[string]*SaveAttempt),
	}
}

// AppendSave records one completed reconciliation run.
func (m *MockStore) AppendSave(ctx context.Context, attempt *SaveAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *attempt
	m.attempts[attempt.ID] = &cp
	return nil
}

// ListSaves returns attempts newest first, optionally filtered by tenant.
func (m *MockStore) ListSaves(ctx context.Context, filter SaveFilter) ([]*SaveAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var out []*SaveAttempt
	for _, a := range m.attempts {
		if filter.TenantID != "" && a.TenantID != filter.TenantID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetSave returns one attempt by ID.
func (m *MockStore) GetSave(ctx context.Context, id string) (*SaveAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// PruneSavesBefore deletes attempts finished before the cutoff.
func (m *MockStore) PruneSavesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, a := range m.attempts {
		if a.FinishedAt.Before(cutoff) {
			delete(m.attempts, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
