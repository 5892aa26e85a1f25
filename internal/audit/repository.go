package audit

import (
	"context"
	"sort"
	"strings"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only.
// No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	// Query returns matching entries newest-first.
	Query(ctx context.Context, q Query) ([]Entry, error)
}

// matches applies the non-paging predicates of q. Shared by in-process stores.
func (q Query) matches(e Entry) bool {
	if a := strings.TrimSpace(q.Actor); a != "" && !strings.EqualFold(e.Actor, a) {
		return false
	}
	if f := strings.TrimSpace(q.ChangedField); f != "" {
		found := false
		for _, cf := range e.ChangedFields {
			if cf == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !q.From.IsZero() && e.ChangedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !e.ChangedAt.Before(q.To) {
		return false
	}
	return true
}

// page sorts newest-first (stable for equal timestamps: later appends first)
// and applies offset/limit.
func page(in []Entry, q Query) []Entry {
	sort.SliceStable(in, func(i, j int) bool { return in[i].ChangedAt.After(in[j].ChangedAt) })
	if q.Offset > 0 {
		if q.Offset >= len(in) {
			return []Entry{}
		}
		in = in[q.Offset:]
	}
	if q.Limit > 0 && len(in) > q.Limit {
		in = in[:q.Limit]
	}
	return in
}
