package scheduler

import (
	"context"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/availability"
	"github.com/cnc-scheduling/engine/internal/entity"
)

// InvalidateForUnavailability implements spec §4.10: when u overlaps
// existing ScheduleEntries of one of its affected operators, every such
// entry's parent job is atomically reverted to Unscheduled and the
// entries themselves are deleted. It returns the distinct job ids that
// now need re-placement; the caller (typically the unavailability API
// handler) is responsible for queuing them into the next ScheduleAll
// pass. Other jobs are left untouched.
func (s *Scheduler) InvalidateForUnavailability(ctx context.Context, u *entity.ResourceUnavailability) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected []*entity.ScheduleEntry
	for _, operatorID := range u.OperatorIDs {
		resource, err := s.db.ResourceRepository().GetByID(ctx, operatorID)
		if err != nil {
			continue
		}

		entries, err := s.db.ScheduleEntryRepository().ListByOperator(ctx, operatorID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Status != entity.EntryScheduled {
				continue
			}
			if !u.CoversDate(e.Start) || !u.CoversShift(e.Shift) {
				continue
			}
			// Re-resolve the working window with just this unavailability
			// applied; an entry that no longer fits inside it (even on a
			// partial-day overlap) is invalidated, not just full-day ones.
			window := availability.WorkingWindow(*resource, e.Start, e.Shift, []entity.ResourceUnavailability{*u})
			if window.Empty() || e.Start.Before(window.Start) || e.End.After(window.End) {
				affected = append(affected, e)
			}
		}
	}

	if len(affected) == 0 {
		return nil, nil
	}

	affectedIDs := make([]uuid.UUID, len(affected))
	jobSet := map[uuid.UUID]bool{}
	for i, e := range affected {
		affectedIDs[i] = e.ID
		jobSet[e.JobID] = true
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	if err := tx.ScheduleEntryRepository().DeleteByIDs(ctx, affectedIDs); err != nil {
		tx.Rollback()
		return nil, err
	}
	var jobIDs []uuid.UUID
	for jobID := range jobSet {
		if err := tx.JobRepository().UpdateStatus(ctx, jobID, entity.JobUnscheduled); err != nil {
			tx.Rollback()
			return nil, err
		}
		jobIDs = append(jobIDs, jobID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return jobIDs, nil
}
