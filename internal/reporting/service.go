package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/organizations"
)

// Sources the dashboard reads from. Nothing here is persisted; every
// request recomputes from live rows.
type OrganizationSource interface {
	List(ctx context.Context, status string) ([]organizations.Organization, error)
}

type AgentSource interface {
	List(ctx context.Context, f agents.Filter) ([]agents.Agent, error)
}

type SessionSource interface {
	List(ctx context.Context, f calls.Filter) ([]calls.Session, error)
	StartedSince(ctx context.Context, since time.Time) ([]calls.Session, error)
}

type Service struct {
	orgs     OrganizationSource
	agents   AgentSource
	sessions SessionSource
	clock    func() time.Time
}

func NewService(orgs OrganizationSource, agentSrc AgentSource, sessions SessionSource) *Service {
	return &Service{orgs: orgs, agents: agentSrc, sessions: sessions, clock: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	orgs, err := s.orgs.List(ctx, "")
	if err != nil {
		return Overview{}, err
	}
	all, err := s.agents.List(ctx, agents.Filter{})
	if err != nil {
		return Overview{}, err
	}
	usage, err := s.Usage(ctx)
	if err != nil {
		return Overview{}, err
	}
	recent, err := s.sessions.List(ctx, calls.Filter{Limit: recentSessions})
	if err != nil {
		return Overview{}, fmt.Errorf("list recent sessions: %w", err)
	}

	return Overview{
		KPI:            buildKPI(orgs, all),
		UsageByDay:     usage,
		RecentSessions: buildRecent(recent, all, orgs),
	}, nil
}

// Usage returns call minutes per UTC day for the last seven days, oldest first.
func (s *Service) Usage(ctx context.Context) ([]UsagePoint, error) {
	now := s.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(usageDays - 1))

	rows, err := s.sessions.StartedSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("list sessions since %s: %w", start.Format(time.DateOnly), err)
	}

	seconds := make([]int, usageDays)
	for _, r := range rows {
		day := int(r.StartedAt.UTC().Sub(start) / (24 * time.Hour))
		if day < 0 || day >= usageDays {
			continue
		}
		seconds[day] += r.DurationSeconds
	}

	out := make([]UsagePoint, usageDays)
	for i := range out {
		out[i] = UsagePoint{
			Day:     start.AddDate(0, 0, i).Format("Mon"),
			Minutes: int(math.Round(float64(seconds[i]) / 60)),
		}
	}
	return out, nil
}

func buildKPI(orgs []organizations.Organization, all []agents.Agent) KPI {
	k := KPI{TotalClients: len(orgs), Healthy: true}
	for _, o := range orgs {
		k.TotalMinutes += o.MonthlyMinutes
	}
	latency := 0
	for _, a := range all {
		if a.Status == agents.StatusActive {
			k.ActiveAgents++
		}
		if a.Status == agents.StatusError {
			k.Healthy = false
		}
		latency += a.AverageLatencyMs
	}
	if len(all) > 0 {
		k.SystemLatencyMs = int(math.Round(float64(latency) / float64(len(all))))
	}
	return k
}

func buildRecent(sessions []calls.Session, all []agents.Agent, orgs []organizations.Organization) []RecentSession {
	byName := make(map[string]agents.Agent, len(all))
	for _, a := range all {
		if _, seen := byName[a.Name]; !seen {
			byName[a.Name] = a
		}
	}
	plans := make(map[string]string, len(orgs))
	for _, o := range orgs {
		plans[strings.ToLower(o.Name)] = o.SubscriptionStatus.Label()
	}

	out := make([]RecentSession, 0, len(sessions))
	for _, s := range sessions {
		r := RecentSession{
			Client:    s.AgentName,
			Plan:      unknownPlan,
			StartTime: s.StartedAt.UTC().Format("2006-01-02 15:04"),
			Duration:  formatDuration(s.DurationSeconds),
			Status:    sessionStatus(s.Status),
		}
		if a, ok := byName[s.AgentName]; ok {
			r.AgentID = a.ID
			r.Client = a.OrganizationName
			if p, ok := plans[strings.ToLower(a.OrganizationName)]; ok {
				r.Plan = p
			}
		}
		out = append(out, r)
	}
	return out
}

func sessionStatus(s calls.Status) SessionStatus {
	switch s {
	case calls.StatusCompleted:
		return SessionCompleted
	case calls.StatusFailed:
		return SessionFailed
	default:
		return SessionActive
	}
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
