package settings

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"voice-agent-platform/internal/audit"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/pkg/utils"
)

var credentialFormats = map[string]*regexp.Regexp{
	FieldOpenAIAPIKey:     regexp.MustCompile(`^sk-[A-Za-z0-9*._-]{10,}$`),
	FieldDeepgramAPIKey:   regexp.MustCompile(`^dg-[A-Za-z0-9*._-]{8,}$`),
	FieldTwilioAccountSID: regexp.MustCompile(`^AC[A-Za-z0-9*]{10,}$`),
	FieldRimeAPIKey:       regexp.MustCompile(`^rm-[A-Za-z0-9*._-]{8,}$`),
}

// Store serves the settings singleton and records every effective change.
type Store struct {
	repo     Repository
	audit    *audit.Service
	defaults config.SettingsDefaults
	clock    func() time.Time
}

func NewStore(repo Repository, auditSvc *audit.Service, defaults config.SettingsDefaults) *Store {
	return &Store{repo: repo, audit: auditSvc, defaults: defaults, clock: time.Now}
}

// Get returns the singleton, creating it from configured defaults on first use.
func (s *Store) Get(ctx context.Context) (Settings, error) {
	cur, found, err := s.repo.Load(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if found {
		return cur, nil
	}
	cur, err = s.repo.CreateIfAbsent(ctx, Settings{
		OpenAIAPIKey:                     s.defaults.OpenAIAPIKey,
		DeepgramAPIKey:                   s.defaults.DeepgramAPIKey,
		TwilioAccountSID:                 s.defaults.TwilioAccountSID,
		RimeAPIKey:                       s.defaults.RimeAPIKey,
		EnableBargeInInterruption:        s.defaults.EnableBargeInInterruption,
		PlayLatencyFillerPhraseOnTimeout: s.defaults.PlayLatencyFillerPhraseOnTimeout,
		AllowAutoRetryOnFailedCalls:      s.defaults.AllowAutoRetryOnFailedCalls,
		UpdatedAt:                        s.clock().UTC(),
	})
	if err != nil {
		return Settings{}, fmt.Errorf("create settings: %w", err)
	}
	return cur, nil
}

// Update applies p and returns the stored settings plus the fields that changed.
//
// Credential values that look masked are dropped before validation so a UI
// echoing back a redacted value never overwrites the real secret. When no
// field effectively changes nothing is written and no audit entry is created.
func (s *Store) Update(ctx context.Context, p Patch, actor, reason string) (Settings, []string, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return Settings{}, nil, err
	}

	next := cur
	var changed []string
	var invalid []string

	credential := func(field string, in utils.Optional[string], dst *string) {
		v, ok := in.Get()
		if !ok || utils.LooksMasked(v) {
			return
		}
		v = strings.TrimSpace(v)
		if !credentialFormats[field].MatchString(v) {
			invalid = append(invalid, field)
			return
		}
		if v != *dst {
			*dst = v
			changed = append(changed, field)
		}
	}
	toggle := func(field string, in utils.Optional[bool], dst *bool) {
		if v, ok := in.Get(); ok && v != *dst {
			*dst = v
			changed = append(changed, field)
		}
	}

	credential(FieldOpenAIAPIKey, p.OpenAIAPIKey, &next.OpenAIAPIKey)
	credential(FieldDeepgramAPIKey, p.DeepgramAPIKey, &next.DeepgramAPIKey)
	credential(FieldTwilioAccountSID, p.TwilioAccountSID, &next.TwilioAccountSID)
	credential(FieldRimeAPIKey, p.RimeAPIKey, &next.RimeAPIKey)
	toggle(FieldEnableBargeInInterruption, p.EnableBargeInInterruption, &next.EnableBargeInInterruption)
	toggle(FieldPlayLatencyFillerPhraseOnTimeout, p.PlayLatencyFillerPhraseOnTimeout, &next.PlayLatencyFillerPhraseOnTimeout)
	toggle(FieldAllowAutoRetryOnFailedCalls, p.AllowAutoRetryOnFailedCalls, &next.AllowAutoRetryOnFailedCalls)

	if len(invalid) > 0 {
		return Settings{}, nil, fmt.Errorf("%w: invalid format for %s", ErrValidation, strings.Join(invalid, ", "))
	}
	if len(changed) == 0 {
		return cur, nil, nil
	}

	entry, err := s.audit.NewEntry(actor, reason, changed)
	if err != nil {
		return Settings{}, nil, err
	}
	next.UpdatedAt = entry.ChangedAt
	if err := s.repo.Save(ctx, next, entry); err != nil {
		return Settings{}, nil, fmt.Errorf("save settings: %w", err)
	}
	return next, changed, nil
}

func (s *Store) History(ctx context.Context, req audit.HistoryRequest) ([]audit.Entry, error) {
	return s.audit.History(ctx, req)
}

func (s *Store) HistoryMeta(ctx context.Context, fromDate, toDate string) (audit.Meta, error) {
	return s.audit.Meta(ctx, fromDate, toDate)
}
