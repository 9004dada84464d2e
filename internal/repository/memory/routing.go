package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// RoutingOperationRepository is an in-memory implementation of
// repository.RoutingOperationRepository.
type RoutingOperationRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.RoutingOperation
}

func (r *RoutingOperationRepository) Create(ctx context.Context, op *entity.RoutingOperation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	r.byID[op.ID] = op
	return nil
}

func (r *RoutingOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RoutingOperation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	op, ok := r.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "RoutingOperation", ResourceID: id.String()}
	}
	return op, nil
}

func (r *RoutingOperationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.RoutingOperation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.RoutingOperation
	for _, op := range r.byID {
		if op.JobID == jobID {
			result = append(result, op)
		}
	}
	return result, nil
}

func (r *RoutingOperationRepository) Update(ctx context.Context, op *entity.RoutingOperation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[op.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "RoutingOperation", ResourceID: op.ID.String()}
	}
	r.byID[op.ID] = op
	return nil
}

func (r *RoutingOperationRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
