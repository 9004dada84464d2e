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

// RoutingOperationRepository implements repository.RoutingOperationRepository
// for PostgreSQL.
type RoutingOperationRepository struct {
	db sqlExecutor
}

func (r *RoutingOperationRepository) Create(ctx context.Context, op *entity.RoutingOperation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}

	query := `
		INSERT INTO routing_operations
		(id, job_id, sequence, operation_name, machine_type, estimated_hours, setup_hours,
		 required_skills, compatible_machines, original_quoted_machine_id, earliest_start_date, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		op.ID, op.JobID, op.Sequence, op.OperationName, string(op.MachineType),
		op.EstimatedHours, op.SetupHours,
		pq.Array(op.RequiredSkills), pq.Array(op.CompatibleMachines),
		op.OriginalQuotedMachineID, op.EarliestStartDate, op.Modified,
	)
	if err != nil {
		return fmt.Errorf("failed to create routing operation: %w", err)
	}
	return nil
}

func scanRoutingOperation(scan func(...interface{}) error) (*entity.RoutingOperation, error) {
	op := &entity.RoutingOperation{}
	err := scan(
		&op.ID, &op.JobID, &op.Sequence, &op.OperationName, (*string)(&op.MachineType),
		&op.EstimatedHours, &op.SetupHours,
		pq.Array(&op.RequiredSkills), pq.Array(&op.CompatibleMachines),
		&op.OriginalQuotedMachineID, &op.EarliestStartDate, &op.Modified,
	)
	return op, err
}

func (r *RoutingOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RoutingOperation, error) {
	query := `
		SELECT id, job_id, sequence, operation_name, machine_type, estimated_hours, setup_hours,
		       required_skills, compatible_machines, original_quoted_machine_id, earliest_start_date, modified
		FROM routing_operations WHERE id = $1
	`
	op, err := scanRoutingOperation(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "RoutingOperation", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routing operation: %w", err)
	}
	return op, nil
}

func (r *RoutingOperationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.RoutingOperation, error) {
	query := `
		SELECT id, job_id, sequence, operation_name, machine_type, estimated_hours, setup_hours,
		       required_skills, compatible_machines, original_quoted_machine_id, earliest_start_date, modified
		FROM routing_operations WHERE job_id = $1 ORDER BY sequence ASC
	`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routing operations: %w", err)
	}
	defer rows.Close()

	var result []*entity.RoutingOperation
	for rows.Next() {
		op, err := scanRoutingOperation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan routing operation: %w", err)
		}
		result = append(result, op)
	}
	return result, rows.Err()
}

func (r *RoutingOperationRepository) Update(ctx context.Context, op *entity.RoutingOperation) error {
	query := `
		UPDATE routing_operations
		SET operation_name = $2, machine_type = $3, estimated_hours = $4, setup_hours = $5,
		    required_skills = $6, compatible_machines = $7, original_quoted_machine_id = $8,
		    earliest_start_date = $9, modified = $10
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		op.ID, op.OperationName, string(op.MachineType), op.EstimatedHours, op.SetupHours,
		pq.Array(op.RequiredSkills), pq.Array(op.CompatibleMachines),
		op.OriginalQuotedMachineID, op.EarliestStartDate, op.Modified,
	)
	if err != nil {
		return fmt.Errorf("failed to update routing operation: %w", err)
	}
	return requireRowsAffected(result, "RoutingOperation", op.ID.String())
}

func (r *RoutingOperationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routing_operations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count routing operations: %w", err)
	}
	return count, nil
}
