package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// UnavailabilityRepository implements repository.UnavailabilityRepository
// for PostgreSQL. Create/Delete bump unavailability_version_seq via a
// database trigger, so DB.Version reflects every write without this
// repository touching the sequence directly.
type UnavailabilityRepository struct {
	db sqlExecutor
}

func (r *UnavailabilityRepository) Create(ctx context.Context, u *entity.ResourceUnavailability) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	query := `
		INSERT INTO resource_unavailability
		(id, operator_ids, start_date, end_date, partial, start_time, end_time, shifts, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, pq.Array(u.OperatorIDs), u.StartDate, u.EndDate, u.Partial,
		u.StartTime, u.EndTime, pq.Array(shiftsToInts(u.Shifts)), u.Reason, u.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create unavailability: %w", err)
	}
	return nil
}

func scanUnavailability(scan func(...interface{}) error) (*entity.ResourceUnavailability, error) {
	u := &entity.ResourceUnavailability{}
	var shiftInts []int64

	err := scan(
		&u.ID, pq.Array(&u.OperatorIDs), &u.StartDate, &u.EndDate, &u.Partial,
		&u.StartTime, &u.EndTime, pq.Array(&shiftInts), &u.Reason, &u.Notes,
	)
	if err != nil {
		return nil, err
	}
	u.Shifts = intsToShifts(shiftInts)
	return u, nil
}

func (r *UnavailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ResourceUnavailability, error) {
	query := `
		SELECT id, operator_ids, start_date, end_date, partial, start_time, end_time, shifts, reason, notes
		FROM resource_unavailability WHERE id = $1
	`
	u, err := scanUnavailability(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "ResourceUnavailability", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unavailability: %w", err)
	}
	return u, nil
}

func (r *UnavailabilityRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.ResourceUnavailability, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailability: %w", err)
	}
	defer rows.Close()

	var result []*entity.ResourceUnavailability
	for rows.Next() {
		u, err := scanUnavailability(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unavailability: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *UnavailabilityRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	query := `
		SELECT id, operator_ids, start_date, end_date, partial, start_time, end_time, shifts, reason, notes
		FROM resource_unavailability
		WHERE start_date < $2 AND end_date >= $1
	`
	return r.listByQuery(ctx, query, start, end)
}

func (r *UnavailabilityRepository) ListForOperator(ctx context.Context, operatorID uuid.UUID, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	query := `
		SELECT id, operator_ids, start_date, end_date, partial, start_time, end_time, shifts, reason, notes
		FROM resource_unavailability
		WHERE $3 = ANY(operator_ids) AND start_date < $2 AND end_date >= $1
	`
	return r.listByQuery(ctx, query, start, end, operatorID)
}

func (r *UnavailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resource_unavailability WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unavailability: %w", err)
	}
	return requireRowsAffected(result, "ResourceUnavailability", id.String())
}

func (r *UnavailabilityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resource_unavailability`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unavailability: %w", err)
	}
	return count, nil
}
