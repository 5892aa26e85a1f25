package settings

import (
	"context"

	"voice-agent-platform/internal/audit"
)

// Repository persists the singleton row.
type Repository interface {
	// Load returns found=false when the row does not exist yet.
	Load(ctx context.Context) (s Settings, found bool, err error)
	// CreateIfAbsent inserts s unless a row exists and returns the stored row.
	CreateIfAbsent(ctx context.Context, s Settings) (Settings, error)
	// Save writes s and appends e atomically: both land or neither does.
	Save(ctx context.Context, s Settings, e audit.Entry) error
}
