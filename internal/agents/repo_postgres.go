package agents

import (
	"context"
	"database/sql"
	"errors"

	"voice-agent-platform/pkg/utils"
)

// PostgresRepo stores agents in the agents table.
// Insertion order is the seq BIGSERIAL column; the id high-water mark lives in id_counters.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const agentColumns = `id, name, organization_name, model, voice_id, twilio_number, status,
       prompt, prompt_version, average_latency_ms, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(s rowScanner) (Agent, error) {
	var a Agent
	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.OrganizationName,
		&a.Model,
		&a.VoiceID,
		&a.TwilioNumber,
		&a.Status,
		&a.Prompt,
		&a.PromptVersion,
		&a.AverageLatencyMs,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	a, err := scanAgent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, ErrNotFound
		}
		return Agent{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, a Agent) error {
	const q = `
INSERT INTO agents (
  id, name, organization_name, model, voice_id, twilio_number, status,
  prompt, prompt_version, average_latency_ms, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.Name,
		a.OrganizationName,
		a.Model,
		a.VoiceID,
		a.TwilioNumber,
		a.Status,
		a.Prompt,
		a.PromptVersion,
		a.AverageLatencyMs,
		a.UpdatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return ErrInvalidArgument
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, a Agent) error {
	const q = `
UPDATE agents
SET name = $2, organization_name = $3, model = $4, voice_id = $5, twilio_number = $6,
    status = $7, prompt = $8, prompt_version = $9, average_latency_ms = $10, updated_at = $11
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.Name,
		a.OrganizationName,
		a.Model,
		a.VoiceID,
		a.TwilioNumber,
		a.Status,
		a.Prompt,
		a.PromptVersion,
		a.AverageLatencyMs,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// NextSeq locks the agent counter row so concurrent creates serialize.
func (r *PostgresRepo) NextSeq(ctx context.Context) (int64, error) {
	var next int64
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO id_counters (name, value) VALUES ('agent', 0) ON CONFLICT (name) DO NOTHING`); err != nil {
			return err
		}
		var floor int64
		if err := tx.QueryRowContext(ctx, `SELECT value FROM id_counters WHERE name = 'agent' FOR UPDATE`).Scan(&floor); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT id FROM agents`)
		if err != nil {
			return err
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		next = nextSeq(ids, floor)
		_, err = tx.ExecContext(ctx, `UPDATE id_counters SET value = $1 WHERE name = 'agent'`, next)
		return err
	})
	return next, err
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
