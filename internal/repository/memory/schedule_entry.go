package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// ScheduleEntryRepository is an in-memory implementation of
// repository.ScheduleEntryRepository. Entries are append/delete only;
// nothing ever mutates an entry already stored.
type ScheduleEntryRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.ScheduleEntry
}

func (r *ScheduleEntryRepository) AppendBatch(ctx context.Context, entries []*entity.ScheduleEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		r.byID[e.ID] = e
	}
	return nil
}

func (r *ScheduleEntryRepository) DeleteByJob(ctx context.Context, jobID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, e := range r.byID {
		if e.JobID == jobID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *ScheduleEntryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range ids {
		delete(r.byID, id)
	}
	return nil
}

func (r *ScheduleEntryRepository) ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ScheduleEntry
	for _, e := range r.byID {
		if e.MachineID == machineID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *ScheduleEntryRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ScheduleEntry
	for _, e := range r.byID {
		if e.OperatorID != nil && *e.OperatorID == operatorID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *ScheduleEntryRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ScheduleEntry
	for _, e := range r.byID {
		if e.JobID == jobID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *ScheduleEntryRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ScheduleEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ScheduleEntry
	for _, e := range r.byID {
		if e.Start.Before(end) && start.Before(e.End) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *ScheduleEntryRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
