package organizations

import "context"

// Repository returns organizations in a stable order (by id).
type Repository interface {
	List(ctx context.Context) ([]Organization, error)
	// Upsert inserts o or leaves an existing row with the same id untouched.
	Upsert(ctx context.Context, o Organization) error
}
