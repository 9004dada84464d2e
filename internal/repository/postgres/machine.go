package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// MachineRepository implements repository.MachineRepository for PostgreSQL.
type MachineRepository struct {
	db sqlExecutor
}

func shiftsToInts(shifts []entity.Shift) []int64 {
	out := make([]int64, len(shifts))
	for i, s := range shifts {
		out[i] = int64(s)
	}
	return out
}

func intsToShifts(ints []int64) []entity.Shift {
	out := make([]entity.Shift, len(ints))
	for i, v := range ints {
		out[i] = entity.Shift(v)
	}
	return out
}

func (r *MachineRepository) Create(ctx context.Context, m *entity.Machine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	flagsJSON, err := json.Marshal(m.CapabilityFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal capability flags: %w", err)
	}

	query := `
		INSERT INTO machines
		(id, machine_id, type, substitution_groups, status, available_shifts, efficiency_factor, capability_flags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.MachineID, string(m.Type), pq.Array(m.SubstitutionGroups), string(m.Status),
		pq.Array(shiftsToInts(m.AvailableShifts)), m.EfficiencyFactor, flagsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

func scanMachine(scan func(...interface{}) error) (*entity.Machine, error) {
	m := &entity.Machine{}
	var shiftInts []int64
	var flagsJSON []byte

	err := scan(
		&m.ID, &m.MachineID, (*string)(&m.Type), pq.Array(&m.SubstitutionGroups), (*string)(&m.Status),
		pq.Array(&shiftInts), &m.EfficiencyFactor, &flagsJSON,
	)
	if err != nil {
		return nil, err
	}
	m.AvailableShifts = intsToShifts(shiftInts)
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &m.CapabilityFlags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal capability flags: %w", err)
		}
	}
	return m, nil
}

func (r *MachineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Machine, error) {
	query := `
		SELECT id, machine_id, type, substitution_groups, status, available_shifts, efficiency_factor, capability_flags
		FROM machines WHERE id = $1
	`
	m, err := scanMachine(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	return m, nil
}

func (r *MachineRepository) GetByMachineID(ctx context.Context, machineID string) (*entity.Machine, error) {
	query := `
		SELECT id, machine_id, type, substitution_groups, status, available_shifts, efficiency_factor, capability_flags
		FROM machines WHERE machine_id = $1
	`
	m, err := scanMachine(r.db.QueryRowContext(ctx, query, machineID).Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: machineID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine by machine_id: %w", err)
	}
	return m, nil
}

func (r *MachineRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Machine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query machines: %w", err)
	}
	defer rows.Close()

	var result []*entity.Machine
	for rows.Next() {
		m, err := scanMachine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *MachineRepository) ListAll(ctx context.Context) ([]*entity.Machine, error) {
	query := `
		SELECT id, machine_id, type, substitution_groups, status, available_shifts, efficiency_factor, capability_flags
		FROM machines
	`
	return r.listByQuery(ctx, query)
}

func (r *MachineRepository) ListBySubstitutionGroup(ctx context.Context, group string) ([]*entity.Machine, error) {
	query := `
		SELECT id, machine_id, type, substitution_groups, status, available_shifts, efficiency_factor, capability_flags
		FROM machines WHERE $1 = ANY(substitution_groups)
	`
	return r.listByQuery(ctx, query, group)
}

func (r *MachineRepository) Update(ctx context.Context, m *entity.Machine) error {
	flagsJSON, err := json.Marshal(m.CapabilityFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal capability flags: %w", err)
	}

	query := `
		UPDATE machines
		SET machine_id = $2, type = $3, substitution_groups = $4, status = $5,
		    available_shifts = $6, efficiency_factor = $7, capability_flags = $8
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.MachineID, string(m.Type), pq.Array(m.SubstitutionGroups), string(m.Status),
		pq.Array(shiftsToInts(m.AvailableShifts)), m.EfficiencyFactor, flagsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update machine: %w", err)
	}
	return requireRowsAffected(result, "Machine", m.ID.String())
}

func (r *MachineRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM machines`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count machines: %w", err)
	}
	return count, nil
}
