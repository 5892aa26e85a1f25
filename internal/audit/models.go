package audit

import (
	"errors"
	"time"
)

// Entry is an immutable, append-only record of one effective settings change.
//
// Invariants:
// - Entries are never updated or deleted.
// - ChangedFields is non-empty and uses the API's camelCase field names.
// - ChangedAt is UTC.
//
// Storage (Postgres): settings_audit_log, INSERT-only.
type Entry struct {
	ID            string    `json:"id"`
	ChangedAt     time.Time `json:"changedAt"`
	Actor         string    `json:"actor"`
	Reason        *string   `json:"reason"`
	ChangedFields []string  `json:"changedFields"`
}

// Query selects entries. From is inclusive, To is exclusive; zero bounds are open.
// Limit <= 0 means no limit.
type Query struct {
	Actor        string
	ChangedField string
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

// Meta summarizes the entries in a date range.
type Meta struct {
	Actors            []string   `json:"actors"`
	ChangedFields     []string   `json:"changedFields"`
	TotalCount        int        `json:"totalCount"`
	EarliestChangedAt *time.Time `json:"earliestChangedAt"`
	LatestChangedAt   *time.Time `json:"latestChangedAt"`
}

const (
	DefaultActor = "platform-admin"

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	dateLayout = "2006-01-02"
)

var (
	ErrInvalidEntry  = errors.New("audit: invalid entry")
	ErrInvalidFilter = errors.New("audit: invalid filter")
)
