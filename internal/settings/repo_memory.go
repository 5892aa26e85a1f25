package settings

import (
	"context"
	"sync"

	"voice-agent-platform/internal/audit"
)

// MemoryRepo keeps the singleton in process and appends audit entries to an
// audit.MemoryRepo under the same lock.
type MemoryRepo struct {
	mu    sync.Mutex
	row   *Settings
	audit *audit.MemoryRepo
}

func NewMemoryRepo(auditRepo *audit.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{audit: auditRepo}
}

func (r *MemoryRepo) Load(ctx context.Context) (Settings, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		return Settings{}, false, nil
	}
	return *r.row, true, nil
}

func (r *MemoryRepo) CreateIfAbsent(ctx context.Context, s Settings) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		r.row = &s
	}
	return *r.row, nil
}

func (r *MemoryRepo) Save(ctx context.Context, s Settings, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.audit.Append(ctx, e); err != nil {
		return err
	}
	r.row = &s
	return nil
}
