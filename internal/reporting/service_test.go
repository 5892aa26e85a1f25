package reporting

import (
	"context"
	"testing"
	"time"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/organizations"
)

type fixture struct {
	svc    *Service
	dir    *agents.Directory
	ledger *calls.Ledger
	now    time.Time
	at     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	// Wednesday.
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	f := &fixture{now: now, at: now}

	orgs := organizations.NewService(organizations.NewMemoryRepo())
	if err := orgs.Seed(ctx, []organizations.Organization{
		{ID: "org-1", Name: "Acme", SubscriptionStatus: organizations.SubscriptionActive, MonthlyMinutes: 1000},
		{ID: "org-2", Name: "Globex", SubscriptionStatus: organizations.SubscriptionTrial, MonthlyMinutes: 250},
	}); err != nil {
		t.Fatalf("seed orgs: %v", err)
	}

	f.dir = agents.NewDirectory(agents.NewMemoryRepo())
	for _, in := range []agents.Input{
		{Name: "Ava", OrganizationName: "Acme", Model: "m", VoiceID: "v", TwilioNumber: "1", AverageLatencyMs: 300},
		{Name: "Bob", OrganizationName: "globex", Model: "m", VoiceID: "v", TwilioNumber: "2", Status: agents.StatusOffline, AverageLatencyMs: 401},
	} {
		if _, err := f.dir.Create(ctx, in); err != nil {
			t.Fatalf("seed agent: %v", err)
		}
	}

	f.ledger = calls.NewLedger(calls.NewMemoryRepo()).WithClock(func() time.Time { return f.at })
	f.svc = NewService(orgs, f.dir, f.ledger).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) call(t *testing.T, sid, agent string, at time.Time, status calls.Status, seconds int) {
	t.Helper()
	ctx := context.Background()
	f.at = at
	if _, _, err := f.ledger.GetOrCreate(ctx, sid, agent, "+1555"); err != nil {
		t.Fatalf("create %s: %v", sid, err)
	}
	if _, err := f.ledger.UpdateStatus(ctx, sid, status, seconds, ""); err != nil {
		t.Fatalf("update %s: %v", sid, err)
	}
}

func TestUsage_SevenDaysOldestFirst(t *testing.T) {
	f := newFixture(t)
	f.call(t, "CA1", "Ava", f.now.Add(-1*time.Hour), calls.StatusCompleted, 90)
	f.call(t, "CA2", "Ava", f.now.Add(-2*time.Hour), calls.StatusCompleted, 60)
	f.call(t, "CA3", "Bob", f.now.AddDate(0, 0, -6), calls.StatusCompleted, 600)
	f.call(t, "CA4", "Bob", f.now.AddDate(0, 0, -8), calls.StatusCompleted, 6000)

	usage, err := f.svc.Usage(context.Background())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 7 {
		t.Fatalf("expected 7 points, got %d", len(usage))
	}
	if usage[0].Day != "Thu" || usage[6].Day != "Wed" {
		t.Fatalf("unexpected day labels: %+v", usage)
	}
	if usage[0].Minutes != 10 {
		t.Fatalf("expected 10 minutes six days ago, got %d", usage[0].Minutes)
	}
	// 150 seconds rounds to 3 minutes.
	if usage[6].Minutes != 3 {
		t.Fatalf("expected 3 minutes today, got %d", usage[6].Minutes)
	}
	total := 0
	for _, p := range usage {
		total += p.Minutes
	}
	if total != 13 {
		t.Fatalf("sessions outside the window must not count, total=%d", total)
	}
}

func TestOverview_KPIAndRecentSessions(t *testing.T) {
	f := newFixture(t)
	f.call(t, "CA1", "Ava", f.now.Add(-3*time.Hour), calls.StatusCompleted, 125)
	f.call(t, "CA2", "Bob", f.now.Add(-2*time.Hour), calls.StatusFailed, 0)
	f.call(t, "CA3", "Ghost", f.now.Add(-1*time.Hour), calls.StatusBusy, 5)
	for i := 0; i < 4; i++ {
		f.call(t, "CA-old-"+string(rune('a'+i)), "Ava", f.now.AddDate(0, 0, -2).Add(time.Duration(i)*time.Minute), calls.StatusCompleted, 10)
	}

	ov, err := f.svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	k := ov.KPI
	if k.TotalClients != 2 || k.ActiveAgents != 1 || k.TotalMinutes != 1250 || k.SystemLatencyMs != 351 || !k.Healthy {
		t.Fatalf("unexpected kpi: %+v", k)
	}
	if len(ov.UsageByDay) != 7 {
		t.Fatalf("expected 7 usage points")
	}
	if len(ov.RecentSessions) != 5 {
		t.Fatalf("expected 5 recent sessions, got %d", len(ov.RecentSessions))
	}

	ghost, bob, ava := ov.RecentSessions[0], ov.RecentSessions[1], ov.RecentSessions[2]
	if ghost.Status != SessionActive || ghost.Client != "Ghost" || ghost.Plan != unknownPlan || ghost.AgentID != "" {
		t.Fatalf("unexpected unmatched session: %+v", ghost)
	}
	if bob.Status != SessionFailed || bob.Client != "globex" || bob.Plan != "Trial" || bob.AgentID != "agent-2" {
		t.Fatalf("unexpected bob session: %+v", bob)
	}
	if ava.Status != SessionCompleted || ava.Duration != "2:05" || ava.StartTime != "2024-05-15 09:00" || ava.Plan != "Active" {
		t.Fatalf("unexpected ava session: %+v", ava)
	}
}

func TestOverview_UnhealthyWhenAnyAgentErrored(t *testing.T) {
	f := newFixture(t)
	if _, err := f.dir.Create(context.Background(), agents.Input{
		Name: "Err", OrganizationName: "Acme", Model: "m", VoiceID: "v", TwilioNumber: "3", Status: agents.StatusError,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	ov, err := f.svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.KPI.Healthy {
		t.Fatalf("expected unhealthy")
	}
	if len(ov.RecentSessions) != 0 {
		t.Fatalf("expected no sessions")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{0: "0:00", 59: "0:59", 61: "1:01", 3600: "60:00", -3: "0:00"}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Fatalf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
