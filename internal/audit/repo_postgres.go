package audit

import (
	"context"
	"database/sql"
)

// NOTE: This repository assumes an audit_events table with an INSERT-only grant
// for the application role. Optional: a trigger rejecting UPDATE/DELETE.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_user_id, subject_user_id, email, ip_address, company_id, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorUserID,
		e.SubjectUserID,
		e.Email,
		e.IPAddress,
		e.CompanyID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	const q = `
SELECT id, type, actor_user_id, subject_user_id, email, ip_address, company_id, message, metadata, created_at
FROM audit_events
ORDER BY created_at DESC, id DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.ActorUserID,
			&e.SubjectUserID,
			&e.Email,
			&e.IPAddress,
			&e.CompanyID,
			&e.Message,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
