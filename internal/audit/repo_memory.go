package audit

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory append-only repository.
// Used by tests and STORAGE_DRIVER=memory.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ChangedFields = append([]string(nil), e.ChangedFields...)
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) Query(ctx context.Context, q Query) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// walk backwards so equal timestamps keep newest-append-first after the stable sort
	out := make([]Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if q.matches(r.entries[i]) {
			out = append(out, r.entries[i])
		}
	}
	return page(out, q), nil
}

// Entries returns every stored entry in append order.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
