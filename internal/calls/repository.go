package calls

import "context"

// Repository is the persistence contract for call sessions.
type Repository interface {
	// Insert assigns Seq and returns the stored row.
	// It returns ErrDuplicate when CallSid already exists.
	Insert(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, callSid string) (Session, error)
	// Save overwrites the mutable columns of an existing row.
	Save(ctx context.Context, s Session) error
	// List returns rows newest-first by StartedAt.
	List(ctx context.Context, f Filter) ([]Session, error)
}
