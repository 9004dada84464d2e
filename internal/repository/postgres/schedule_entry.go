package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// ScheduleEntryRepository implements repository.ScheduleEntryRepository for
// PostgreSQL. Entries are append/delete only, matching the immutability
// invariant in spec.md §3.
type ScheduleEntryRepository struct {
	db sqlExecutor
}

func (r *ScheduleEntryRepository) AppendBatch(ctx context.Context, entries []*entity.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO schedule_entries
		(id, job_id, operation_sequence, machine_id, operator_id, start_time, end_time, shift, status)
		VALUES `)

	args := make([]interface{}, 0, len(entries)*9)
	for i, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, e.ID, e.JobID, e.OperationSequence, e.MachineID, e.OperatorID,
			e.Start, e.End, int64(e.Shift), string(e.Status))
	}

	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to append schedule entries: %w", err)
	}
	return nil
}

func (r *ScheduleEntryRepository) DeleteByJob(ctx context.Context, jobID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entries for job: %w", err)
	}
	return nil
}

func (r *ScheduleEntryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = ANY($1)`, pq.Array(idArray(ids)))
	if err != nil {
		return fmt.Errorf("failed to delete schedule entries: %w", err)
	}
	return nil
}

func scanScheduleEntry(scan func(...interface{}) error) (*entity.ScheduleEntry, error) {
	e := &entity.ScheduleEntry{}
	var shift int64
	err := scan(
		&e.ID, &e.JobID, &e.OperationSequence, &e.MachineID, &e.OperatorID,
		&e.Start, &e.End, &shift, (*string)(&e.Status),
	)
	if err != nil {
		return nil, err
	}
	e.Shift = entity.Shift(shift)
	return e, nil
}

func (r *ScheduleEntryRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.ScheduleEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	var result []*entity.ScheduleEntry
	for rows.Next() {
		e, err := scanScheduleEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

const scheduleEntryColumns = `id, job_id, operation_sequence, machine_id, operator_id, start_time, end_time, shift, status`

func (r *ScheduleEntryRepository) ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries WHERE machine_id = $1 ORDER BY start_time ASC`
	return r.listByQuery(ctx, query, machineID)
}

func (r *ScheduleEntryRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries WHERE operator_id = $1 ORDER BY start_time ASC`
	return r.listByQuery(ctx, query, operatorID)
}

func (r *ScheduleEntryRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries WHERE job_id = $1 ORDER BY operation_sequence ASC, start_time ASC`
	return r.listByQuery(ctx, query, jobID)
}

func (r *ScheduleEntryRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries WHERE start_time < $2 AND end_time > $1 ORDER BY start_time ASC`
	return r.listByQuery(ctx, query, start, end)
}

func (r *ScheduleEntryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count schedule entries: %w", err)
	}
	return count, nil
}

func idArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
