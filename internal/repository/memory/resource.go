package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// ResourceRepository is an in-memory implementation of
// repository.ResourceRepository.
type ResourceRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.Resource
}

func (r *ResourceRepository) Create(ctx context.Context, res *entity.Resource) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	r.byID[res.ID] = res
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Resource, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	res, ok := r.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Resource", ResourceID: id.String()}
	}
	return res, nil
}

func (r *ResourceRepository) ListActive(ctx context.Context) ([]*entity.Resource, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.Resource
	for _, res := range r.byID {
		if res.Active {
			result = append(result, res)
		}
	}
	return result, nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *entity.Resource) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[res.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Resource", ResourceID: res.ID.String()}
	}
	r.byID[res.ID] = res
	return nil
}

func (r *ResourceRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
