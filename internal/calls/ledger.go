package calls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ledger owns call-session lifecycle across Twilio callbacks.
type Ledger struct {
	repo  Repository
	clock func() time.Time
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, clock: time.Now}
}

// WithClock replaces the time source; used by tests.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	l.clock = clock
	return l
}

// GetOrCreate returns the session for callSid, creating it on first sight.
// created is true only for the call that inserted the row. A concurrent insert
// losing the unique race falls back to a lookup.
func (l *Ledger) GetOrCreate(ctx context.Context, callSid, agentName, callerNumber string) (Session, bool, error) {
	callSid = strings.TrimSpace(callSid)
	if callSid == "" {
		return Session{}, false, fmt.Errorf("%w: CallSid required", ErrInvalidArgument)
	}

	s, err := l.repo.Get(ctx, callSid)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Session{}, false, fmt.Errorf("lookup call session: %w", err)
	}

	now := l.clock().UTC()
	s, err = l.repo.Insert(ctx, Session{
		CallSid:         callSid,
		AgentName:       agentName,
		CallerNumber:    callerNumber,
		StartedAt:       now,
		DurationSeconds: 0,
		Status:          StatusBusy,
		Sentiment:       SentimentNeutral,
		RecordingURL:    "",
		UpdatedAt:       now,
	})
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return Session{}, false, fmt.Errorf("insert call session: %w", err)
	}

	s, err = l.repo.Get(ctx, callSid)
	if err != nil {
		return Session{}, false, fmt.Errorf("refetch call session: %w", err)
	}
	return s, false, nil
}

func (l *Ledger) Get(ctx context.Context, callSid string) (Session, error) {
	return l.repo.Get(ctx, strings.TrimSpace(callSid))
}

func (l *Ledger) UpdateSentiment(ctx context.Context, callSid string, sentiment Sentiment) (Session, error) {
	return l.mutate(ctx, callSid, func(s *Session) {
		s.Sentiment = sentiment
	})
}

// UpdateRecording keeps the longer of the stored and incoming durations so
// out-of-order callbacks cannot shrink it. An empty url leaves the stored one.
func (l *Ledger) UpdateRecording(ctx context.Context, callSid, url string, durationSeconds int) (Session, error) {
	return l.mutate(ctx, callSid, func(s *Session) {
		if url = strings.TrimSpace(url); url != "" {
			s.RecordingURL = url
		}
		if durationSeconds > s.DurationSeconds {
			s.DurationSeconds = durationSeconds
		}
	})
}

// UpdateStatus overwrites status and duration (clamped at zero).
func (l *Ledger) UpdateStatus(ctx context.Context, callSid string, status Status, durationSeconds int, url string) (Session, error) {
	return l.mutate(ctx, callSid, func(s *Session) {
		s.Status = status
		if durationSeconds < 0 {
			durationSeconds = 0
		}
		s.DurationSeconds = durationSeconds
		if url = strings.TrimSpace(url); url != "" {
			s.RecordingURL = url
		}
	})
}

func (l *Ledger) mutate(ctx context.Context, callSid string, apply func(*Session)) (Session, error) {
	s, err := l.repo.Get(ctx, strings.TrimSpace(callSid))
	if err != nil {
		return Session{}, err
	}
	apply(&s)
	s.UpdatedAt = l.clock().UTC()
	if err := l.repo.Save(ctx, s); err != nil {
		return Session{}, fmt.Errorf("save call session: %w", err)
	}
	return s, nil
}

// List validates the caller-facing filter and returns sessions newest-first.
func (l *Ledger) List(ctx context.Context, f Filter) ([]Session, error) {
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit < 1 || f.Limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxListLimit)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, f.Status)
	}
	return l.repo.List(ctx, f)
}

// StartedSince returns every session started at or after since, newest-first.
func (l *Ledger) StartedSince(ctx context.Context, since time.Time) ([]Session, error) {
	return l.repo.List(ctx, Filter{Since: since})
}
