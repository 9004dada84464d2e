package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// JobRepository implements repository.JobRepository for PostgreSQL.
type JobRepository struct {
	db sqlExecutor
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	query := `
		INSERT INTO jobs (id, job_number, due_date, promised_date, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.JobNumber, job.DueDate, job.PromisedDate,
		string(job.Priority), string(job.Status), job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) scanRow(row *sql.Row) (*entity.Job, error) {
	job := &entity.Job{}
	err := row.Scan(
		&job.ID, &job.JobNumber, &job.DueDate, &job.PromisedDate,
		(*string)(&job.Priority), (*string)(&job.Status), &job.CreatedAt,
	)
	return job, err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	query := `
		SELECT id, job_number, due_date, promised_date, priority, status, created_at
		FROM jobs WHERE id = $1
	`
	job, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) GetByJobNumber(ctx context.Context, jobNumber string) (*entity.Job, error) {
	query := `
		SELECT id, job_number, due_date, promised_date, priority, status, created_at
		FROM jobs WHERE job_number = $1
	`
	job, err := r.scanRow(r.db.QueryRowContext(ctx, query, jobNumber))
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: jobNumber}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job by number: %w", err)
	}
	return job, nil
}

func (r *JobRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var result []*entity.Job
	for rows.Next() {
		job := &entity.Job{}
		if err := rows.Scan(
			&job.ID, &job.JobNumber, &job.DueDate, &job.PromisedDate,
			(*string)(&job.Priority), (*string)(&job.Status), &job.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func (r *JobRepository) ListByStatus(ctx context.Context, status entity.JobStatus) ([]*entity.Job, error) {
	query := `
		SELECT id, job_number, due_date, promised_date, priority, status, created_at
		FROM jobs WHERE status = $1
	`
	return r.listByQuery(ctx, query, string(status))
}

func (r *JobRepository) ListUnscheduled(ctx context.Context) ([]*entity.Job, error) {
	return r.ListByStatus(ctx, entity.JobUnscheduled)
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE jobs
		SET job_number = $2, due_date = $3, promised_date = $4, priority = $5, status = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		job.ID, job.JobNumber, job.DueDate, job.PromisedDate, string(job.Priority), string(job.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return requireRowsAffected(result, "Job", job.ID.String())
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return requireRowsAffected(result, "Job", id.String())
}

func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// requireRowsAffected turns a zero-row UPDATE/DELETE into a NotFoundError,
// matching the teacher's postgres repositories' affected-rows check.
func requireRowsAffected(result sql.Result, resourceType, resourceID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &repository.NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
	}
	return nil
}
