package organizations

import (
	"context"
	"errors"
	"testing"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	err := svc.Seed(context.Background(), []Organization{
		{ID: "org-2", Name: "Globex", SubscriptionStatus: SubscriptionTrial, ActiveAgents: 1, MonthlyMinutes: 120},
		{ID: "org-1", Name: "Acme", SubscriptionStatus: SubscriptionActive, ActiveAgents: 3, MonthlyMinutes: 4200},
		{ID: "org-3", Name: "Initech", SubscriptionStatus: SubscriptionPastDue, ActiveAgents: 0, MonthlyMinutes: 0},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func TestList_AllOrderedByID(t *testing.T) {
	svc := seeded(t)
	out, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0].ID != "org-1" || out[2].ID != "org-3" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

func TestList_FiltersBySubscriptionStatus(t *testing.T) {
	svc := seeded(t)
	out, err := svc.List(context.Background(), "past_due")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Initech" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc := seeded(t)
	if _, err := svc.List(context.Background(), "cancelled"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSeed_DoesNotOverwrite(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()
	if err := svc.Seed(ctx, []Organization{{ID: "org-1", Name: "Renamed", SubscriptionStatus: SubscriptionTrial}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out, _ := svc.List(ctx, "")
	if out[0].Name != "Acme" {
		t.Fatalf("expected existing row kept, got %+v", out[0])
	}
}

func TestSubscriptionStatus_Label(t *testing.T) {
	if SubscriptionPastDue.Label() != "Past Due" || SubscriptionTrial.Label() != "Trial" {
		t.Fatalf("unexpected labels")
	}
}
