package calls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"voice-agent-platform/pkg/utils"
)

// PostgresRepo stores sessions in call_sessions.
// The UNIQUE (call_sid) constraint is authoritative for idempotent creation.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const sessionColumns = `seq, call_sid, agent_name, caller_number, started_at, duration_seconds,
       status, sentiment, recording_url, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(s rowScanner) (Session, error) {
	var out Session
	err := s.Scan(
		&out.Seq,
		&out.CallSid,
		&out.AgentName,
		&out.CallerNumber,
		&out.StartedAt,
		&out.DurationSeconds,
		&out.Status,
		&out.Sentiment,
		&out.RecordingURL,
		&out.UpdatedAt,
	)
	return out, err
}

func (r *PostgresRepo) Insert(ctx context.Context, s Session) (Session, error) {
	q := `
INSERT INTO call_sessions (
  call_sid, agent_name, caller_number, started_at, duration_seconds,
  status, sentiment, recording_url, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
RETURNING ` + sessionColumns
	out, err := scanSession(r.db.QueryRowContext(ctx, q,
		s.CallSid,
		s.AgentName,
		s.CallerNumber,
		s.StartedAt,
		s.DurationSeconds,
		s.Status,
		s.Sentiment,
		s.RecordingURL,
		s.UpdatedAt,
	))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return Session{}, fmt.Errorf("%w: %s", ErrDuplicate, s.CallSid)
		}
		return Session{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Get(ctx context.Context, callSid string) (Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM call_sessions WHERE call_sid = $1`
	out, err := scanSession(r.db.QueryRowContext(ctx, q, callSid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Save(ctx context.Context, s Session) error {
	const q = `
UPDATE call_sessions
SET duration_seconds = $2, status = $3, sentiment = $4, recording_url = $5, updated_at = $6
WHERE call_sid = $1
`
	res, err := r.db.ExecContext(ctx, q,
		s.CallSid,
		s.DurationSeconds,
		s.Status,
		s.Sentiment,
		s.RecordingURL,
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
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Session, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if agent := strings.TrimSpace(f.AgentName); agent != "" {
		args = append(args, strings.ToLower(agent))
		where = append(where, fmt.Sprintf("lower(agent_name) = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf("started_at >= $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + sessionColumns + ` FROM call_sessions`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY started_at DESC, seq DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
