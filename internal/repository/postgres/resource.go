package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// ResourceRepository implements repository.ResourceRepository for
// PostgreSQL. Work centers are persisted as a string array and rehydrated
// into the map[string]bool membership set the engine consumes.
type ResourceRepository struct {
	db sqlExecutor
}

func workCentersToSlice(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	return out
}

func sliceToWorkCenters(s []string) map[string]bool {
	out := make(map[string]bool, len(s))
	for _, k := range s {
		out[k] = true
	}
	return out
}

func (r *ResourceRepository) Create(ctx context.Context, res *entity.Resource) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	query := `
		INSERT INTO resources (id, role, active, shift_schedule, work_centers, skills)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		res.ID, string(res.Role), res.Active,
		pq.Array(shiftsToInts(res.ShiftSchedule)), pq.Array(workCentersToSlice(res.WorkCenters)), pq.Array(res.Skills),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func scanResource(scan func(...interface{}) error) (*entity.Resource, error) {
	res := &entity.Resource{}
	var shiftInts []int64
	var workCenters []string

	err := scan(
		&res.ID, (*string)(&res.Role), &res.Active,
		pq.Array(&shiftInts), pq.Array(&workCenters), pq.Array(&res.Skills),
	)
	if err != nil {
		return nil, err
	}
	res.ShiftSchedule = intsToShifts(shiftInts)
	res.WorkCenters = sliceToWorkCenters(workCenters)
	return res, nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Resource, error) {
	query := `
		SELECT id, role, active, shift_schedule, work_centers, skills
		FROM resources WHERE id = $1
	`
	res, err := scanResource(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Resource", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return res, nil
}

func (r *ResourceRepository) ListActive(ctx context.Context) ([]*entity.Resource, error) {
	query := `
		SELECT id, role, active, shift_schedule, work_centers, skills
		FROM resources WHERE active = true
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var result []*entity.Resource
	for rows.Next() {
		res, err := scanResource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *ResourceRepository) Update(ctx context.Context, res *entity.Resource) error {
	query := `
		UPDATE resources
		SET role = $2, active = $3, shift_schedule = $4, work_centers = $5, skills = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		res.ID, string(res.Role), res.Active,
		pq.Array(shiftsToInts(res.ShiftSchedule)), pq.Array(workCentersToSlice(res.WorkCenters)), pq.Array(res.Skills),
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return requireRowsAffected(result, "Resource", res.ID.String())
}

func (r *ResourceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}
