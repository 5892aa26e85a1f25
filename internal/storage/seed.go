package storage

import (
	"context"
	"fmt"
	"log/slog"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/organizations"
)

// OrganizationSeeder inserts organizations that do not exist yet.
type OrganizationSeeder interface {
	Seed(ctx context.Context, orgs []organizations.Organization) error
}

// AgentSeeder is the subset of agents.Directory used for seeding.
type AgentSeeder interface {
	List(ctx context.Context, f agents.Filter) ([]agents.Agent, error)
	Create(ctx context.Context, in agents.Input) (agents.Agent, error)
}

var demoOrganizations = []organizations.Organization{
	{ID: "org-1", Name: "Northwind Clinics", SubscriptionStatus: organizations.SubscriptionActive, ActiveAgents: 2, MonthlyMinutes: 4820},
	{ID: "org-2", Name: "Harbor Realty", SubscriptionStatus: organizations.SubscriptionTrial, ActiveAgents: 1, MonthlyMinutes: 310},
	{ID: "org-3", Name: "Summit Auto Care", SubscriptionStatus: organizations.SubscriptionPastDue, ActiveAgents: 0, MonthlyMinutes: 1275},
}

var demoAgents = []agents.Input{
	{
		Name:             "Front Desk",
		OrganizationName: "Northwind Clinics",
		Model:            "gpt-4.1-mini",
		VoiceID:          "rime-serena",
		TwilioNumber:     "+1 (415) 555-0101",
		Status:           agents.StatusActive,
		Prompt:           "You book and reschedule clinic appointments. Confirm the patient name and preferred time.",
		PromptVersion:    "v3",
		AverageLatencyMs: 640,
	},
	{
		Name:             "After Hours",
		OrganizationName: "Northwind Clinics",
		Model:            "gpt-4.1-mini",
		VoiceID:          "rime-cove",
		TwilioNumber:     "+1 (415) 555-0102",
		Status:           agents.StatusActive,
		Prompt:           "You take messages outside office hours and flag urgent requests.",
		PromptVersion:    "v1",
		AverageLatencyMs: 710,
	},
	{
		Name:             "Listings Line",
		OrganizationName: "Harbor Realty",
		Model:            "gpt-4.1",
		VoiceID:          "rime-luna",
		TwilioNumber:     "+1 (206) 555-0177",
		Status:           agents.StatusOffline,
		Prompt:           "You answer questions about open listings and schedule showings.",
		PromptVersion:    "v2",
		AverageLatencyMs: 820,
	},
}

// SeedDemoData loads demo organizations and agents into an empty directory.
// It is a no-op once any agent exists.
func SeedDemoData(ctx context.Context, orgs OrganizationSeeder, dir AgentSeeder, l *slog.Logger) error {
	existing, err := dir.List(ctx, agents.Filter{})
	if err != nil {
		return fmt.Errorf("seed: list agents: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := orgs.Seed(ctx, demoOrganizations); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, in := range demoAgents {
		if _, err := dir.Create(ctx, in); err != nil {
			return fmt.Errorf("seed agent %q: %w", in.Name, err)
		}
	}
	if l != nil {
		l.Info("demo data seeded",
			"organizations", len(demoOrganizations),
			"agents", len(demoAgents),
		)
	}
	return nil
}
