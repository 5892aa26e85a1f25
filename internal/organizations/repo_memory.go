package organizations

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu   sync.Mutex
	byID map[string]Organization
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{byID: map[string]Organization{}} }

func (r *MemoryRepo) List(ctx context.Context) ([]Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Organization, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, o Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[o.ID]; !ok {
		r.byID[o.ID] = o
	}
	return nil
}
