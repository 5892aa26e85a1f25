package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-agent-platform/pkg/utils"
)

// Directory owns agent CRUD and routing of dialed numbers to agents.
type Directory struct {
	repo  Repository
	clock func() time.Time
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo, clock: time.Now}
}

// FindByNumber picks the agent answering dialed.
// Both sides are compared on digits only. Without an exact match the first
// active agent wins, then the first agent in insertion order.
func (d *Directory) FindByNumber(ctx context.Context, dialed string) (Agent, error) {
	all, err := d.repo.List(ctx)
	if err != nil {
		return Agent{}, fmt.Errorf("list agents: %w", err)
	}
	if len(all) == 0 {
		return Agent{}, ErrNoAgents
	}

	want := utils.DigitsOnly(dialed)
	if want != "" {
		for _, a := range all {
			if utils.DigitsOnly(a.TwilioNumber) == want {
				return a, nil
			}
		}
	}
	for _, a := range all {
		if a.Status == StatusActive {
			return a, nil
		}
	}
	return all[0], nil
}

func (d *Directory) List(ctx context.Context, f Filter) ([]Agent, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, f.Status)
	}
	all, err := d.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	org := strings.ToLower(strings.TrimSpace(f.OrganizationName))
	out := make([]Agent, 0, len(all))
	for _, a := range all {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if org != "" && strings.ToLower(a.OrganizationName) != org {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (d *Directory) Get(ctx context.Context, id string) (Agent, error) {
	return d.repo.Get(ctx, id)
}

func (d *Directory) Create(ctx context.Context, in Input) (Agent, error) {
	a := Agent{
		Name:             strings.TrimSpace(in.Name),
		OrganizationName: strings.TrimSpace(in.OrganizationName),
		Model:            strings.TrimSpace(in.Model),
		VoiceID:          strings.TrimSpace(in.VoiceID),
		TwilioNumber:     strings.TrimSpace(in.TwilioNumber),
		Status:           in.Status,
		Prompt:           strings.TrimSpace(in.Prompt),
		PromptVersion:    strings.TrimSpace(in.PromptVersion),
		AverageLatencyMs: in.AverageLatencyMs,
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.Prompt == "" {
		a.Prompt = defaultPrompt
	}
	if a.PromptVersion == "" {
		a.PromptVersion = defaultPromptVersion
	}
	if err := validate(a); err != nil {
		return Agent{}, err
	}

	seq, err := d.repo.NextSeq(ctx)
	if err != nil {
		return Agent{}, fmt.Errorf("allocate agent id: %w", err)
	}
	a.ID = fmt.Sprintf("agent-%d", seq)
	a.UpdatedAt = d.clock().UTC()

	if err := d.repo.Insert(ctx, a); err != nil {
		return Agent{}, fmt.Errorf("insert agent: %w", err)
	}
	return a, nil
}

func (d *Directory) Update(ctx context.Context, id string, p Patch) (Agent, error) {
	a, err := d.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}

	if v, ok := p.Name.Get(); ok {
		a.Name = strings.TrimSpace(v)
	}
	if v, ok := p.OrganizationName.Get(); ok {
		a.OrganizationName = strings.TrimSpace(v)
	}
	if v, ok := p.Model.Get(); ok {
		a.Model = strings.TrimSpace(v)
	}
	if v, ok := p.VoiceID.Get(); ok {
		a.VoiceID = strings.TrimSpace(v)
	}
	if v, ok := p.TwilioNumber.Get(); ok {
		a.TwilioNumber = strings.TrimSpace(v)
	}
	if v, ok := p.Status.Get(); ok {
		a.Status = v
	}
	if v, ok := p.Prompt.Get(); ok {
		a.Prompt = v
	}
	if v, ok := p.PromptVersion.Get(); ok {
		a.PromptVersion = strings.TrimSpace(v)
	}
	if v, ok := p.AverageLatencyMs.Get(); ok {
		a.AverageLatencyMs = v
	}
	if err := validate(a); err != nil {
		return Agent{}, err
	}

	a.UpdatedAt = d.clock().UTC()
	if err := d.repo.Update(ctx, a); err != nil {
		return Agent{}, fmt.Errorf("update agent: %w", err)
	}
	return a, nil
}

// Delete removes the agent and returns it as it was before removal.
func (d *Directory) Delete(ctx context.Context, id string) (Agent, error) {
	a, err := d.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	if err := d.repo.Delete(ctx, id); err != nil {
		return Agent{}, fmt.Errorf("delete agent: %w", err)
	}
	return a, nil
}

func validate(a Agent) error {
	var missing []string
	if a.Name == "" {
		missing = append(missing, "name")
	}
	if a.OrganizationName == "" {
		missing = append(missing, "organizationName")
	}
	if a.Model == "" {
		missing = append(missing, "model")
	}
	if a.VoiceID == "" {
		missing = append(missing, "voiceId")
	}
	if a.TwilioNumber == "" {
		missing = append(missing, "twilioNumber")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidArgument, strings.Join(missing, ", "))
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, a.Status)
	}
	if a.AverageLatencyMs < 0 {
		return fmt.Errorf("%w: averageLatencyMs must be >= 0", ErrInvalidArgument)
	}
	return nil
}

// IsValidation reports whether err is a caller input problem.
func IsValidation(err error) bool { return errors.Is(err, ErrInvalidArgument) }
