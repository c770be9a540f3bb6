package placement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"placement-portal/internal/tenancy"
	"placement-portal/pkg/utils"
)

// NOTE: This repository assumes the following tables exist, each with a BIGSERIAL id:
// - companies
// - job_openings (company_id)
// - job_applications (company_id, student_id), UNIQUE (opening_id, student_id)
// - job_offers (company_id, student_id), UNIQUE (application_id)
// - onboardings (company_id, student_id), UNIQUE (offer_id)
// - interview_schedules (company_id, student_id)
// - student_profiles (student_id), UNIQUE (student_id)
// - notifications (recipient_id NULL for company broadcasts, company_id)
//
// company_id and student_id are denormalized onto child rows so scope
// predicates never need a join.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// queryScoped appends the scope predicate to where (which may be empty) and scans every row.
func queryScoped[T any](ctx context.Context, db *sql.DB, base, where string, args []any, scope tenancy.Scope, companyCol, ownerCol, order string, scan func(rowScanner) (T, error)) ([]T, error) {
	pred, predArgs := scope.Predicate(companyCol, ownerCol, len(args)+1)
	if where != "" {
		pred = where + " AND " + pred
	}
	rows, err := db.QueryContext(ctx, base+" WHERE "+pred+" "+order, append(args, predArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func getOne[T any](ctx context.Context, db *sql.DB, q string, id int64, scan func(rowScanner) (T, error)) (T, error) {
	v, err := scan(db.QueryRowContext(ctx, q, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return v, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execOne runs q on a pool or a transaction and reports ErrNotFound when no row changed.
func execOne(ctx context.Context, db execer, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
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

// Companies

const selectCompany = `SELECT id, name, industry, location, website, description, created_at FROM companies`

func scanCompany(row rowScanner) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Location, &c.Website, &c.Description, &c.CreatedAt)
	return c, err
}

func (r *PostgresRepo) CreateCompany(ctx context.Context, c *Company) error {
	const q = `
INSERT INTO companies (name, industry, location, website, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`
	return r.db.QueryRowContext(ctx, q, c.Name, c.Industry, c.Location, c.Website, c.Description, c.CreatedAt).Scan(&c.ID)
}

func (r *PostgresRepo) GetCompany(ctx context.Context, id int64) (Company, error) {
	return getOne(ctx, r.db, selectCompany+` WHERE id = $1`, id, scanCompany)
}

func (r *PostgresRepo) ListCompanies(ctx context.Context, scope tenancy.Scope) ([]Company, error) {
	return queryScoped(ctx, r.db, selectCompany, "", nil, scope, "id", "", "ORDER BY id", scanCompany)
}

// Job openings

const selectOpening = `SELECT id, company_id, title, description, location, salary_lpa, deadline, status, created_at FROM job_openings`

func scanOpening(row rowScanner) (JobOpening, error) {
	var o JobOpening
	err := row.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.Location, &o.SalaryLPA, &o.Deadline, &o.Status, &o.CreatedAt)
	return o, err
}

func (r *PostgresRepo) CreateOpening(ctx context.Context, o *JobOpening) error {
	const q = `
INSERT INTO job_openings (company_id, title, description, location, salary_lpa, deadline, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	return r.db.QueryRowContext(ctx, q,
		o.CompanyID, o.Title, o.Description, o.Location, o.SalaryLPA, o.Deadline, string(o.Status), o.CreatedAt,
	).Scan(&o.ID)
}

func (r *PostgresRepo) GetOpening(ctx context.Context, id int64) (JobOpening, error) {
	return getOne(ctx, r.db, selectOpening+` WHERE id = $1`, id, scanOpening)
}

func (r *PostgresRepo) ListOpenings(ctx context.Context, scope tenancy.Scope, status OpeningStatus) ([]JobOpening, error) {
	if status == "" {
		return queryScoped(ctx, r.db, selectOpening, "", nil, scope, "company_id", "", "ORDER BY id", scanOpening)
	}
	return queryScoped(ctx, r.db, selectOpening, "status = $1", []any{string(status)}, scope, "company_id", "", "ORDER BY id", scanOpening)
}

func (r *PostgresRepo) SetOpeningStatus(ctx context.Context, id int64, status OpeningStatus) error {
	return execOne(ctx, r.db, `UPDATE job_openings SET status = $2 WHERE id = $1`, id, string(status))
}

// Applications

const selectApplication = `SELECT id, opening_id, company_id, student_id, resume_link, status, applied_at FROM job_applications`

func scanApplication(row rowScanner) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.OpeningID, &a.CompanyID, &a.StudentID, &a.ResumeLink, &a.Status, &a.AppliedAt)
	return a, err
}

func (r *PostgresRepo) CreateApplication(ctx context.Context, a *Application) error {
	const q = `
INSERT INTO job_applications (opening_id, company_id, student_id, resume_link, status, applied_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`
	err := r.db.QueryRowContext(ctx, q,
		a.OpeningID, a.CompanyID, a.StudentID, a.ResumeLink, string(a.Status), a.AppliedAt,
	).Scan(&a.ID)
	if utils.IsUniqueViolation(err) {
		return fmt.Errorf("%w: already applied", ErrConflict)
	}
	return err
}

func (r *PostgresRepo) GetApplication(ctx context.Context, id int64) (Application, error) {
	return getOne(ctx, r.db, selectApplication+` WHERE id = $1`, id, scanApplication)
}

func (r *PostgresRepo) ListApplications(ctx context.Context, scope tenancy.Scope) ([]Application, error) {
	return queryScoped(ctx, r.db, selectApplication, "", nil, scope, "company_id", "student_id", "ORDER BY id", scanApplication)
}

func (r *PostgresRepo) SetApplicationStatus(ctx context.Context, id int64, status ApplicationStatus) error {
	return execOne(ctx, r.db, `UPDATE job_applications SET status = $2 WHERE id = $1`, id, string(status))
}

func (r *PostgresRepo) DeleteApplication(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM job_applications WHERE id = $1`, id)
}

// Offers

const selectOffer = `SELECT id, application_id, company_id, student_id, salary, joining_date, status, created_at, updated_at FROM job_offers`

func scanOffer(row rowScanner) (Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.ApplicationID, &o.CompanyID, &o.StudentID, &o.Salary, &o.JoiningDate, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *PostgresRepo) CreateOffer(ctx context.Context, o *Offer) error {
	const q = `
INSERT INTO job_offers (application_id, company_id, student_id, salary, joining_date, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q,
			o.ApplicationID, o.CompanyID, o.StudentID, o.Salary, o.JoiningDate, string(o.Status), o.CreatedAt, o.UpdatedAt,
		).Scan(&o.ID)
		if utils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: application already has an offer", ErrConflict)
		}
		if err != nil {
			return err
		}
		return execOne(ctx, tx, `UPDATE job_applications SET status = $2 WHERE id = $1`, o.ApplicationID, string(ApplicationSelected))
	})
}

func (r *PostgresRepo) GetOffer(ctx context.Context, id int64) (Offer, error) {
	return getOne(ctx, r.db, selectOffer+` WHERE id = $1`, id, scanOffer)
}

func (r *PostgresRepo) ListOffers(ctx context.Context, scope tenancy.Scope) ([]Offer, error) {
	return queryScoped(ctx, r.db, selectOffer, "", nil, scope, "company_id", "student_id", "ORDER BY id", scanOffer)
}

func (r *PostgresRepo) SetOfferStatus(ctx context.Context, id int64, status OfferStatus) error {
	return execOne(ctx, r.db, `UPDATE job_offers SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

// Onboarding

const selectOnboarding = `SELECT id, offer_id, company_id, student_id, start_date, status, remarks, created_at FROM onboardings`

func scanOnboarding(row rowScanner) (Onboarding, error) {
	var o Onboarding
	err := row.Scan(&o.ID, &o.OfferID, &o.CompanyID, &o.StudentID, &o.StartDate, &o.Status, &o.Remarks, &o.CreatedAt)
	return o, err
}

func (r *PostgresRepo) CreateOnboarding(ctx context.Context, o *Onboarding) error {
	const q = `
INSERT INTO onboardings (offer_id, company_id, student_id, start_date, status, remarks, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q,
			o.OfferID, o.CompanyID, o.StudentID, o.StartDate, string(o.Status), o.Remarks, o.CreatedAt,
		).Scan(&o.ID)
		if utils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: offer already onboarding", ErrConflict)
		}
		if err != nil {
			return err
		}
		return execOne(ctx, tx, `UPDATE job_offers SET status = $2, updated_at = now() WHERE id = $1`, o.OfferID, string(OfferOnboarding))
	})
}

func (r *PostgresRepo) ListOnboardings(ctx context.Context, scope tenancy.Scope) ([]Onboarding, error) {
	return queryScoped(ctx, r.db, selectOnboarding, "", nil, scope, "company_id", "student_id", "ORDER BY id", scanOnboarding)
}

// Interviews

const selectInterview = `SELECT id, application_id, company_id, student_id, scheduled_at, interviewer, location, status, created_at FROM interview_schedules`

func scanInterview(row rowScanner) (Interview, error) {
	var i Interview
	err := row.Scan(&i.ID, &i.ApplicationID, &i.CompanyID, &i.StudentID, &i.ScheduledAt, &i.Interviewer, &i.Location, &i.Status, &i.CreatedAt)
	return i, err
}

func (r *PostgresRepo) CreateInterview(ctx context.Context, i *Interview) error {
	const q = `
INSERT INTO interview_schedules (application_id, company_id, student_id, scheduled_at, interviewer, location, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q,
			i.ApplicationID, i.CompanyID, i.StudentID, i.ScheduledAt, i.Interviewer, i.Location, i.Status, i.CreatedAt,
		).Scan(&i.ID)
		if err != nil {
			return err
		}
		return execOne(ctx, tx, `UPDATE job_applications SET status = $2 WHERE id = $1`, i.ApplicationID, string(ApplicationInterview))
	})
}

func (r *PostgresRepo) ListInterviews(ctx context.Context, scope tenancy.Scope) ([]Interview, error) {
	return queryScoped(ctx, r.db, selectInterview, "", nil, scope, "company_id", "student_id", "ORDER BY scheduled_at, id", scanInterview)
}

// Student profiles

const selectProfile = `SELECT id, student_id, enrollment_number, branch, degree, cgpa, passing_year, resume_link, skills, created_at, updated_at FROM student_profiles`

func scanProfile(row rowScanner) (StudentProfile, error) {
	var p StudentProfile
	err := row.Scan(&p.ID, &p.StudentID, &p.EnrollmentNumber, &p.Branch, &p.Degree, &p.CGPA, &p.PassingYear, &p.ResumeLink, &p.Skills, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepo) UpsertProfile(ctx context.Context, p *StudentProfile) error {
	const q = `
INSERT INTO student_profiles (student_id, enrollment_number, branch, degree, cgpa, passing_year, resume_link, skills, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (student_id) DO UPDATE SET
  enrollment_number = EXCLUDED.enrollment_number,
  branch = EXCLUDED.branch,
  degree = EXCLUDED.degree,
  cgpa = EXCLUDED.cgpa,
  passing_year = EXCLUDED.passing_year,
  resume_link = EXCLUDED.resume_link,
  skills = EXCLUDED.skills,
  updated_at = EXCLUDED.updated_at
RETURNING id, created_at
`
	return r.db.QueryRowContext(ctx, q,
		p.StudentID, p.EnrollmentNumber, p.Branch, p.Degree, p.CGPA, p.PassingYear, p.ResumeLink, p.Skills, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PostgresRepo) GetProfile(ctx context.Context, studentID string) (StudentProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, selectProfile+` WHERE student_id = $1`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return StudentProfile{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) ListProfiles(ctx context.Context, scope tenancy.Scope) ([]StudentProfile, error) {
	if scope.Kind() != tenancy.KindCompanies {
		return queryScoped(ctx, r.db, selectProfile, "", nil, scope, "", "student_id", "ORDER BY id", scanProfile)
	}
	pred, args := scope.Predicate("a.company_id", "", 1)
	where := `student_id IN (SELECT a.student_id FROM job_applications a WHERE ` + pred + `)`
	return queryScoped(ctx, r.db, selectProfile, where, args, tenancy.Unrestricted(), "", "", "ORDER BY id", scanProfile)
}

// Notifications

const selectNotification = `SELECT id, recipient_id, company_id, title, message, read, created_at FROM notifications`

func scanNotification(row rowScanner) (Notification, error) {
	var n Notification
	var recipient sql.NullString
	if err := row.Scan(&n.ID, &recipient, &n.CompanyID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	n.RecipientID = recipient.String
	return n, nil
}

func (r *PostgresRepo) CreateNotification(ctx context.Context, n *Notification) error {
	const q = `
INSERT INTO notifications (recipient_id, company_id, title, message, read, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`
	var recipient any
	if n.RecipientID != "" {
		recipient = n.RecipientID
	}
	return r.db.QueryRowContext(ctx, q, recipient, n.CompanyID, n.Title, n.Message, n.Read, n.CreatedAt).Scan(&n.ID)
}

func (r *PostgresRepo) GetNotification(ctx context.Context, id int64) (Notification, error) {
	return getOne(ctx, r.db, selectNotification+` WHERE id = $1`, id, scanNotification)
}

func (r *PostgresRepo) ListNotifications(ctx context.Context, recipientID string, scope tenancy.Scope) ([]Notification, error) {
	// Broadcast rows are filtered by the company predicate only; a student scope yields FALSE there.
	pred, predArgs := scope.Predicate("company_id", "", 2)
	q := selectNotification + ` WHERE recipient_id = $1 OR (recipient_id IS NULL AND ` + pred + `) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, append([]any{recipientID}, predArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MarkNotificationRead(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
}
