package calls

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newLedger() (*Ledger, *fixedClock) {
	clk := &fixedClock{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}
	return NewLedger(NewMemoryRepo()).WithClock(clk.Now), clk
}

func TestGetOrCreate_IsIdempotent(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()

	s1, created, err := l.GetOrCreate(ctx, "CA1", "Front Desk", "+15551230000")
	if err != nil || !created {
		t.Fatalf("expected created, err=%v created=%v", err, created)
	}
	if s1.Status != StatusBusy || s1.Sentiment != SentimentNeutral || s1.DurationSeconds != 0 || s1.RecordingURL != "" {
		t.Fatalf("unexpected initial session %+v", s1)
	}
	if s1.ID() != "call-1" {
		t.Fatalf("expected call-1, got %s", s1.ID())
	}

	s2, created, err := l.GetOrCreate(ctx, "CA1", "Other Agent", "+10000000000")
	if err != nil || created {
		t.Fatalf("expected lookup, err=%v created=%v", err, created)
	}
	if s2.Seq != s1.Seq || s2.AgentName != "Front Desk" {
		t.Fatalf("expected original row, got %+v", s2)
	}

	all, _ := l.List(ctx, Filter{})
	if len(all) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(all))
	}
}

// racingRepo reports not-found on the first Get, then duplicate on Insert,
// simulating a concurrent webhook that won the insert.
type racingRepo struct {
	*MemoryRepo
	gets int
}

func (r *racingRepo) Get(ctx context.Context, sid string) (Session, error) {
	r.gets++
	if r.gets == 1 {
		return Session{}, ErrNotFound
	}
	return r.MemoryRepo.Get(ctx, sid)
}

func TestGetOrCreate_RecoversFromDuplicateInsert(t *testing.T) {
	mem := NewMemoryRepo()
	if _, err := mem.Insert(context.Background(), Session{CallSid: "CA9", AgentName: "Winner", Status: StatusBusy}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l := NewLedger(&racingRepo{MemoryRepo: mem})

	s, created, err := l.GetOrCreate(context.Background(), "CA9", "Loser", "+1")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if created || s.AgentName != "Winner" {
		t.Fatalf("expected winner row, got created=%v %+v", created, s)
	}
}

func TestGetOrCreate_ConcurrentCallersShareOneRow(t *testing.T) {
	l, _ := newLedger()
	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := l.GetOrCreate(context.Background(), "CA-race", "A", "+1")
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if createdCount != 1 {
		t.Fatalf("expected exactly one creator, got %d", createdCount)
	}
}

func TestUpdateRecording_DurationIsMonotonic(t *testing.T) {
	ctx := context.Background()
	for _, order := range [][2]int{{30, 12}, {12, 30}} {
		l, _ := newLedger()
		if _, _, err := l.GetOrCreate(ctx, "CA1", "A", "+1"); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := l.UpdateRecording(ctx, "CA1", "https://rec/1", order[0]); err != nil {
			t.Fatalf("update: %v", err)
		}
		s, err := l.UpdateRecording(ctx, "CA1", "", order[1])
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if s.DurationSeconds != 30 {
			t.Fatalf("order %v: expected 30, got %d", order, s.DurationSeconds)
		}
		if s.RecordingURL != "https://rec/1" {
			t.Fatalf("empty url must not overwrite, got %q", s.RecordingURL)
		}
	}
}

func TestUpdateStatus_OverwritesAndClamps(t *testing.T) {
	l, clk := newLedger()
	ctx := context.Background()
	created, _, _ := l.GetOrCreate(ctx, "CA1", "A", "+1")
	_, _ = l.UpdateRecording(ctx, "CA1", "https://rec/1", 40)

	clk.Advance(time.Minute)
	s, err := l.UpdateStatus(ctx, "CA1", MapProviderStatus(" Completed "), 25, "")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if s.Status != StatusCompleted || s.DurationSeconds != 25 || s.RecordingURL != "https://rec/1" {
		t.Fatalf("unexpected session %+v", s)
	}
	if !s.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updatedAt bumped")
	}

	s, _ = l.UpdateStatus(ctx, "CA1", StatusFailed, -5, "https://rec/2")
	if s.DurationSeconds != 0 || s.RecordingURL != "https://rec/2" {
		t.Fatalf("expected clamp and url overwrite, got %+v", s)
	}
}

func TestUpdates_UnknownCall(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()
	if _, err := l.UpdateSentiment(ctx, "nope", SentimentPositive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := l.UpdateRecording(ctx, "nope", "u", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := l.UpdateStatus(ctx, "nope", StatusBusy, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMapProviderStatus(t *testing.T) {
	cases := map[string]Status{
		"completed":   StatusCompleted,
		"busy":        StatusBusy,
		"no-answer":   StatusBusy,
		"canceled":    StatusBusy,
		"failed":      StatusFailed,
		" FAILED ":    StatusFailed,
		"in-progress": StatusBusy,
		"":            StatusBusy,
	}
	for in, want := range cases {
		if got := MapProviderStatus(in); got != want {
			t.Fatalf("MapProviderStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestList_NewestFirstWithLimitAndFilters(t *testing.T) {
	l, clk := newLedger()
	ctx := context.Background()
	for i, sid := range []string{"CA1", "CA2", "CA3"} {
		agent := "Front Desk"
		if i == 1 {
			agent = "Billing"
		}
		if _, _, err := l.GetOrCreate(ctx, sid, agent, "+1"); err != nil {
			t.Fatalf("create: %v", err)
		}
		clk.Advance(time.Minute)
	}

	got, err := l.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].CallSid != "CA3" || got[1].CallSid != "CA2" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got, _ = l.List(ctx, Filter{AgentName: " front desk "})
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions for agent, got %d", len(got))
	}

	if _, err := l.List(ctx, Filter{Limit: 201}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected limit validation error, got %v", err)
	}
	if _, err := l.List(ctx, Filter{Limit: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected limit validation error, got %v", err)
	}
	if _, err := l.List(ctx, Filter{Status: "ringing"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestSession_JSONShape(t *testing.T) {
	s := Session{
		Seq:       12,
		CallSid:   "CA1",
		AgentName: "Front Desk",
		StartedAt: time.Date(2026, 3, 2, 9, 30, 59, 0, time.UTC),
		Status:    StatusCompleted,
		Sentiment: SentimentPositive,
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["id"] != "call-12" || m["startedAt"] != "2026-03-02 09:30" || m["agentName"] != "Front Desk" {
		t.Fatalf("unexpected json: %s", b)
	}
	if _, ok := m["CallSid"]; ok {
		t.Fatalf("call sid must not leak: %s", b)
	}
}
