package organizations

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) List(ctx context.Context) ([]Organization, error) {
	const q = `
SELECT id, name, subscription_status, active_agents, monthly_minutes
FROM organizations
ORDER BY id ASC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Organization, 0)
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.SubscriptionStatus, &o.ActiveAgents, &o.MonthlyMinutes); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Upsert(ctx context.Context, o Organization) error {
	const q = `
INSERT INTO organizations (id, name, subscription_status, active_agents, monthly_minutes)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING
`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.Name, o.SubscriptionStatus, o.ActiveAgents, o.MonthlyMinutes)
	return err
}
