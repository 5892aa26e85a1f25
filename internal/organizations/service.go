package organizations

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// List returns every organization, optionally narrowed to one subscription
// status. An unknown status is a caller error.
func (s *Service) List(ctx context.Context, status string) ([]Organization, error) {
	want := SubscriptionStatus(strings.TrimSpace(status))
	if want != "" && !want.Valid() {
		return nil, fmt.Errorf("%w: unknown subscriptionStatus %q", ErrInvalidArgument, status)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	if want == "" {
		return all, nil
	}
	out := make([]Organization, 0, len(all))
	for _, o := range all {
		if o.SubscriptionStatus == want {
			out = append(out, o)
		}
	}
	return out, nil
}

// Seed inserts orgs that do not exist yet.
func (s *Service) Seed(ctx context.Context, orgs []Organization) error {
	for _, o := range orgs {
		if err := s.repo.Upsert(ctx, o); err != nil {
			return fmt.Errorf("seed organization %s: %w", o.ID, err)
		}
	}
	return nil
}
