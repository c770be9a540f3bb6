package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"placement-portal/internal/auth"
	"placement-portal/pkg/utils"
)

// NOTE: This repository assumes the following tables exist:
// - users (id, email UNIQUE on lower(email), name, password_hash, company_id, created_at)
// - user_roles (user_id, role), PRIMARY KEY (user_id, role)
// - officer_companies (officer_id, company_id, assigned_at), PRIMARY KEY (officer_id, company_id)

// PostgresRepo stores accounts in Postgres through database/sql.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO users (id, email, name, password_hash, company_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
		if _, err := tx.ExecContext(ctx, q,
			u.ID,
			strings.ToLower(u.Email),
			u.Name,
			u.PasswordHash,
			u.CompanyID,
			u.CreatedAt,
		); err != nil {
			if utils.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}

		const rq = `INSERT INTO user_roles (user_id, role) VALUES ($1,$2)`
		for _, role := range u.Roles {
			if _, err := tx.ExecContext(ctx, rq, u.ID, string(role)); err != nil {
				return fmt.Errorf("insert role: %w", err)
			}
		}
		return nil
	})
}

const selectUser = `
SELECT id, email, name, password_hash, company_id, created_at
FROM users
`

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, selectUser+`WHERE email = lower($1)`, email)
}

func (r *PostgresRepo) getOne(ctx context.Context, q string, arg any) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	roles, err := r.rolesFor(ctx, []string{u.ID})
	if err != nil {
		return User{}, err
	}
	u.Roles = roles[u.ID]
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`ORDER BY created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	var ids []string
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roles, err := r.rolesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Roles = roles[out[i].ID]
	}
	return out, nil
}

func (r *PostgresRepo) rolesFor(ctx context.Context, ids []string) (map[string][]auth.Role, error) {
	out := make(map[string][]auth.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT user_id, role
FROM user_roles
WHERE user_id = ANY($1)
ORDER BY user_id, role
`
	rows, err := r.db.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, role string
		if err := rows.Scan(&id, &role); err != nil {
			return nil, err
		}
		out[id] = append(out[id], auth.Role(role))
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM officer_companies WHERE officer_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
	})
}

func (r *PostgresRepo) Assign(ctx context.Context, a Assignment) error {
	const q = `
INSERT INTO officer_companies (officer_id, company_id, assigned_at)
VALUES ($1,$2,$3)
ON CONFLICT (officer_id, company_id) DO NOTHING
`
	_, err := r.db.ExecContext(ctx, q, a.OfficerID, a.CompanyID, a.AssignedAt)
	return err
}

func (r *PostgresRepo) Unassign(ctx context.Context, officerID string, companyID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM officer_companies WHERE officer_id = $1 AND company_id = $2`,
		officerID, companyID)
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

func (r *PostgresRepo) AssignedCompanies(ctx context.Context, officerID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT company_id FROM officer_companies WHERE officer_id = $1 ORDER BY company_id`,
		officerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var companyID sql.NullInt64
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&companyID,
		&u.CreatedAt,
	); err != nil {
		return User{}, err
	}
	if companyID.Valid {
		id := companyID.Int64
		u.CompanyID = &id
	}
	return u, nil
}
