package settings

import (
	"context"
	"database/sql"
	"errors"

	"voice-agent-platform/internal/audit"
	"voice-agent-platform/pkg/utils"
)

// PostgresRepo stores the singleton as platform_settings id=1.
type PostgresRepo struct {
	db    *sql.DB
	audit *audit.PostgresRepo
}

func NewPostgresRepo(db *sql.DB, auditRepo *audit.PostgresRepo) *PostgresRepo {
	return &PostgresRepo{db: db, audit: auditRepo}
}

const singletonID = 1

func (r *PostgresRepo) Load(ctx context.Context) (Settings, bool, error) {
	const q = `
SELECT openai_api_key, deepgram_api_key, twilio_account_sid, rime_api_key,
       enable_barge_in_interruption, play_latency_filler_phrase_on_timeout,
       allow_auto_retry_on_failed_calls, updated_at
FROM platform_settings
WHERE id = $1
`
	var s Settings
	err := r.db.QueryRowContext(ctx, q, singletonID).Scan(
		&s.OpenAIAPIKey,
		&s.DeepgramAPIKey,
		&s.TwilioAccountSID,
		&s.RimeAPIKey,
		&s.EnableBargeInInterruption,
		&s.PlayLatencyFillerPhraseOnTimeout,
		&s.AllowAutoRetryOnFailedCalls,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, true, nil
}

func (r *PostgresRepo) CreateIfAbsent(ctx context.Context, s Settings) (Settings, error) {
	const q = `
INSERT INTO platform_settings (
  id, openai_api_key, deepgram_api_key, twilio_account_sid, rime_api_key,
  enable_barge_in_interruption, play_latency_filler_phrase_on_timeout,
  allow_auto_retry_on_failed_calls, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
ON CONFLICT (id) DO NOTHING
`
	if _, err := r.db.ExecContext(ctx, q,
		singletonID,
		s.OpenAIAPIKey,
		s.DeepgramAPIKey,
		s.TwilioAccountSID,
		s.RimeAPIKey,
		s.EnableBargeInInterruption,
		s.PlayLatencyFillerPhraseOnTimeout,
		s.AllowAutoRetryOnFailedCalls,
		s.UpdatedAt,
	); err != nil {
		return Settings{}, err
	}
	stored, found, err := r.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	if !found {
		return Settings{}, errors.New("settings: singleton row missing after insert")
	}
	return stored, nil
}

func (r *PostgresRepo) Save(ctx context.Context, s Settings, e audit.Entry) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE platform_settings
SET openai_api_key = $2, deepgram_api_key = $3, twilio_account_sid = $4, rime_api_key = $5,
    enable_barge_in_interruption = $6, play_latency_filler_phrase_on_timeout = $7,
    allow_auto_retry_on_failed_calls = $8, updated_at = $9
WHERE id = $1
`
		res, err := tx.ExecContext(ctx, q,
			singletonID,
			s.OpenAIAPIKey,
			s.DeepgramAPIKey,
			s.TwilioAccountSID,
			s.RimeAPIKey,
			s.EnableBargeInInterruption,
			s.PlayLatencyFillerPhraseOnTimeout,
			s.AllowAutoRetryOnFailedCalls,
			s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("settings: singleton row missing")
		}
		return r.audit.AppendTx(ctx, tx, e)
	})
}
