package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// UnavailabilityRepository is an in-memory implementation of
// repository.UnavailabilityRepository. Every write bumps the store's
// monotonic version counter, which the Scheduler Service polls between
// operations to detect a stale snapshot (spec.md §5).
type UnavailabilityRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.ResourceUnavailability
}

func (r *UnavailabilityRepository) Create(ctx context.Context, u *entity.ResourceUnavailability) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.byID[u.ID] = u
	r.store.bumpVersion()
	return nil
}

func (r *UnavailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ResourceUnavailability, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "ResourceUnavailability", ResourceID: id.String()}
	}
	return u, nil
}

func (r *UnavailabilityRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ResourceUnavailability
	for _, u := range r.byID {
		if u.StartDate.Before(end) && start.Before(u.EndDate.AddDate(0, 0, 1)) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *UnavailabilityRepository) ListForOperator(ctx context.Context, operatorID uuid.UUID, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.ResourceUnavailability
	for _, u := range r.byID {
		if !u.StartDate.Before(end) || !start.Before(u.EndDate.AddDate(0, 0, 1)) {
			continue
		}
		for _, opID := range u.OperatorIDs {
			if opID == operatorID {
				result = append(result, u)
				break
			}
		}
	}
	return result, nil
}

func (r *UnavailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &repository.NotFoundError{ResourceType: "ResourceUnavailability", ResourceID: id.String()}
	}
	delete(r.byID, id)
	r.store.bumpVersion()
	return nil
}

func (r *UnavailabilityRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
