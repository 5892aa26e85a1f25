package calls

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-process ledger store for tests and STORAGE_DRIVER=memory.
type MemoryRepo struct {
	mu    sync.Mutex
	seq   int64
	bySid map[string]Session
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{bySid: map[string]Session{}} }

func (r *MemoryRepo) Insert(ctx context.Context, s Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySid[s.CallSid]; ok {
		return Session{}, ErrDuplicate
	}
	r.seq++
	s.Seq = r.seq
	r.bySid[s.CallSid] = s
	return s, nil
}

func (r *MemoryRepo) Get(ctx context.Context, callSid string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.bySid[callSid]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) Save(ctx context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.bySid[s.CallSid]
	if !ok {
		return ErrNotFound
	}
	cur.DurationSeconds = s.DurationSeconds
	cur.Status = s.Status
	cur.Sentiment = s.Sentiment
	cur.RecordingURL = s.RecordingURL
	cur.UpdatedAt = s.UpdatedAt
	r.bySid[s.CallSid] = cur
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent := strings.ToLower(strings.TrimSpace(f.AgentName))
	out := make([]Session, 0, len(r.bySid))
	for _, s := range r.bySid {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if agent != "" && strings.ToLower(s.AgentName) != agent {
			continue
		}
		if !f.Since.IsZero() && s.StartedAt.Before(f.Since) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
