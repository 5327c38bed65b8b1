package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/model"
)

// JobRepo persists repair jobs.
type JobRepo struct{ DB *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{DB: db} }

const jobColumns = "id,customer_id,vehicle_id,assigned_user_id,description,status,created_at,updated_at"

func scanJob(scan func(dest ...interface{}) error) (model.Job, error) {
	var (
		j        model.Job
		assigned sql.NullInt64
	)
	err := scan(&j.ID, &j.CustomerID, &j.VehicleID, &assigned, &j.Description, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if assigned.Valid {
		id := uint64(assigned.Int64)
		j.AssignedUserID = &id
	}
	return j, err
}

// Create inserts a job in PENDING state.
func (r *JobRepo) Create(ctx context.Context, j *model.Job) error {
	j.ID = uuid.NewString()
	j.Status = model.JobPending
	var assigned interface{}
	if j.AssignedUserID != nil {
		assigned = *j.AssignedUserID
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO jobs (id, customer_id, vehicle_id, assigned_user_id, description, status) VALUES (?,?,?,?,?,?)",
		j.ID, j.CustomerID, j.VehicleID, assigned, j.Description, j.Status)
	if err != nil && isMissingParent(err) {
		return notFound("Customer or vehicle")
	}
	return err
}

// GetByID fetches one job.
func (r *JobRepo) GetByID(ctx context.Context, id string) (model.Job, error) {
	j, err := scanJob(r.DB.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id=? LIMIT 1", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, notFound("Job")
	}
	return j, err
}

// List returns a page of jobs, optionally filtered by status, newest first.
func (r *JobRepo) List(ctx context.Context, page, limit int, status string) ([]model.Job, int64, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = " WHERE status=?"
		args = append(args, status)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// Update rewrites the job description and assignment.
func (r *JobRepo) Update(ctx context.Context, id, description string, assignedUserID *uint64) error {
	var assigned interface{}
	if assignedUserID != nil {
		assigned = *assignedUserID
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET description=?, assigned_user_id=? WHERE id=?",
		description, assigned, id)
	if err != nil {
		if isMissingParent(err) {
			return notFound("Assigned user")
		}
		return err
	}
	return requireRow(res, "Job")
}

// UpdateStatus moves a job along its lifecycle. The expected current status
// is part of the WHERE clause so two racing transitions cannot both win.
func (r *JobRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET status=? WHERE id=? AND status=?", to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Missing row and stale status need different answers.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return conflict("Job status changed concurrently")
	}
	return nil
}

// Delete removes a job.
func (r *JobRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM jobs WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return conflict("Job is referenced by an invoice")
		}
		return err
	}
	return requireRow(res, "Job")
}
