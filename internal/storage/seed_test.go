package storage

import (
	"context"
	"testing"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/organizations"
)

func TestSeedDemoData_EmptyDirectory(t *testing.T) {
	ctx := context.Background()
	orgs := organizations.NewService(organizations.NewMemoryRepo())
	dir := agents.NewDirectory(agents.NewMemoryRepo())

	if err := SeedDemoData(ctx, orgs, dir, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := dir.List(ctx, agents.Filter{})
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(all) != len(demoAgents) {
		t.Fatalf("expected %d agents, got %d", len(demoAgents), len(all))
	}
	if all[0].ID != "agent-1" {
		t.Fatalf("expected agent-1 first, got %s", all[0].ID)
	}
	list, err := orgs.List(ctx, "")
	if err != nil {
		t.Fatalf("list orgs: %v", err)
	}
	if len(list) != len(demoOrganizations) {
		t.Fatalf("expected %d orgs, got %d", len(demoOrganizations), len(list))
	}
}

func TestSeedDemoData_SkipsWhenAgentsExist(t *testing.T) {
	ctx := context.Background()
	orgs := organizations.NewService(organizations.NewMemoryRepo())
	dir := agents.NewDirectory(agents.NewMemoryRepo())
	if _, err := dir.Create(ctx, agents.Input{
		Name:             "Existing",
		OrganizationName: "Acme",
		Model:            "gpt-4.1-mini",
		VoiceID:          "rime-serena",
		TwilioNumber:     "+15550000000",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := SeedDemoData(ctx, orgs, dir, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, _ := dir.List(ctx, agents.Filter{})
	if len(all) != 1 {
		t.Fatalf("expected seeding to be skipped, got %d agents", len(all))
	}
	list, _ := orgs.List(ctx, "")
	if len(list) != 0 {
		t.Fatalf("expected no orgs, got %d", len(list))
	}
}
