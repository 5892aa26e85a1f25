package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PostgresRepo stores entries in settings_audit_log.
// changed_fields is a JSONB array of strings.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	return insertEntry(ctx, r.db, e)
}

// AppendTx writes e inside tx so callers can commit it with the change it describes.
func (r *PostgresRepo) AppendTx(ctx context.Context, tx *sql.Tx, e Entry) error {
	return insertEntry(ctx, tx, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, e Entry) error {
	fields, err := json.Marshal(e.ChangedFields)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO settings_audit_log (id, changed_at, actor, reason, changed_fields)
VALUES ($1,$2,$3,$4,$5::jsonb)
`
	_, err = db.ExecContext(ctx, q, e.ID, e.ChangedAt, e.Actor, e.Reason, string(fields))
	return err
}

func (r *PostgresRepo) Query(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if a := strings.TrimSpace(q.Actor); a != "" {
		args = append(args, strings.ToLower(a))
		where = append(where, fmt.Sprintf("lower(actor) = $%d", len(args)))
	}
	if f := strings.TrimSpace(q.ChangedField); f != "" {
		args = append(args, f)
		where = append(where, fmt.Sprintf("changed_fields @> jsonb_build_array($%d::text)", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where = append(where, fmt.Sprintf("changed_at >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where = append(where, fmt.Sprintf("changed_at < $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, changed_at, actor, reason, changed_fields FROM settings_audit_log`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY changed_at DESC, seq DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e      Entry
			reason sql.NullString
			fields []byte
		)
		if err := rows.Scan(&e.ID, &e.ChangedAt, &e.Actor, &reason, &fields); err != nil {
			return nil, err
		}
		if reason.Valid {
			s := reason.String
			e.Reason = &s
		}
		if err := json.Unmarshal(fields, &e.ChangedFields); err != nil {
			return nil, fmt.Errorf("decode changed_fields for %s: %w", e.ID, err)
		}
		e.ChangedAt = e.ChangedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
