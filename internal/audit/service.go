package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service builds and reads settings audit entries.
//
// Writes normally go through the settings store so the entry commits with the
// change it describes; Append exists for callers without that requirement.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// NewEntry normalizes actor and reason and stamps id and time.
// A blank actor becomes DefaultActor; a blank reason becomes nil.
func (s *Service) NewEntry(actor, reason string, changedFields []string) (Entry, error) {
	if len(changedFields) == 0 {
		return Entry{}, ErrInvalidEntry
	}
	e := Entry{
		ID:            uuid.NewString(),
		ChangedAt:     s.clock().UTC(),
		Actor:         strings.TrimSpace(actor),
		ChangedFields: append([]string(nil), changedFields...),
	}
	if e.Actor == "" {
		e.Actor = DefaultActor
	}
	if r := strings.TrimSpace(reason); r != "" {
		e.Reason = &r
	}
	return e, nil
}

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.ID == "" || e.ChangedAt.IsZero() || len(e.ChangedFields) == 0 {
		return ErrInvalidEntry
	}
	return s.repo.Append(ctx, e)
}

// HistoryRequest is the raw caller filter; dates are YYYY-MM-DD.
type HistoryRequest struct {
	Actor        string
	ChangedField string
	FromDate     string
	ToDate       string
	Limit        int
	Offset       int
}

// History returns entries newest-first. ToDate includes the whole day.
func (s *Service) History(ctx context.Context, req HistoryRequest) ([]Entry, error) {
	if req.Limit == 0 {
		req.Limit = DefaultHistoryLimit
	}
	if req.Limit < 1 || req.Limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidFilter, MaxHistoryLimit)
	}
	if req.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", ErrInvalidFilter)
	}
	from, to, err := parseRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}
	return s.repo.Query(ctx, Query{
		Actor:        req.Actor,
		ChangedField: req.ChangedField,
		From:         from,
		To:           to,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
}

// Meta summarizes entries filtered by date only.
func (s *Service) Meta(ctx context.Context, fromDate, toDate string) (Meta, error) {
	from, to, err := parseRange(fromDate, toDate)
	if err != nil {
		return Meta{}, err
	}
	entries, err := s.repo.Query(ctx, Query{From: from, To: to})
	if err != nil {
		return Meta{}, err
	}

	actors := map[string]struct{}{}
	fields := map[string]struct{}{}
	m := Meta{TotalCount: len(entries)}
	for i := range entries {
		e := entries[i]
		actors[e.Actor] = struct{}{}
		for _, f := range e.ChangedFields {
			fields[f] = struct{}{}
		}
		at := e.ChangedAt
		if m.EarliestChangedAt == nil || at.Before(*m.EarliestChangedAt) {
			m.EarliestChangedAt = &at
		}
		if m.LatestChangedAt == nil || at.After(*m.LatestChangedAt) {
			latest := at
			m.LatestChangedAt = &latest
		}
	}
	m.Actors = sortedKeys(actors)
	m.ChangedFields = sortedKeys(fields)
	return m, nil
}

// parseRange turns YYYY-MM-DD bounds into [from, to) with to moved to the next day.
func parseRange(fromDate, toDate string) (time.Time, time.Time, error) {
	var from, to time.Time
	if v := strings.TrimSpace(fromDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: fromDate must be YYYY-MM-DD", ErrInvalidFilter)
		}
		from = t
	}
	if v := strings.TrimSpace(toDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: toDate must be YYYY-MM-DD", ErrInvalidFilter)
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fromDate must not be after toDate", ErrInvalidFilter)
	}
	return from, to, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
