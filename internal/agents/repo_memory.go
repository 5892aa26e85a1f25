package agents

import (
	"context"
	"sync"
)

// MemoryRepo keeps agents in insertion order in process memory.
// Used by tests and by STORAGE_DRIVER=memory.
type MemoryRepo struct {
	mu        sync.Mutex
	rows      []Agent
	highWater int64
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) List(ctx context.Context) ([]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Agent, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.rows[i], nil
	}
	return Agent{}, ErrNotFound
}

func (r *MemoryRepo) Insert(ctx context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(a.ID) >= 0 {
		return ErrInvalidArgument
	}
	r.rows = append(r.rows, a)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(a.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.rows[i] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

func (r *MemoryRepo) NextSeq(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.rows))
	for i, a := range r.rows {
		ids[i] = a.ID
	}
	n := nextSeq(ids, r.highWater)
	r.highWater = n
	return n, nil
}

func (r *MemoryRepo) indexOf(id string) int {
	for i := range r.rows {
		if r.rows[i].ID == id {
			return i
		}
	}
	return -1
}
