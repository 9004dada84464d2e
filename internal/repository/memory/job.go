package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// JobRepository is an in-memory implementation of repository.JobRepository.
type JobRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.Job
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	r.byID[job.ID] = job
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: id.String()}
	}
	return job, nil
}

func (r *JobRepository) GetByJobNumber(ctx context.Context, jobNumber string) (*entity.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, job := range r.byID {
		if job.JobNumber == jobNumber {
			return job, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: jobNumber}
}

func (r *JobRepository) ListByStatus(ctx context.Context, status entity.JobStatus) ([]*entity.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.Job
	for _, job := range r.byID {
		if job.Status == status {
			result = append(result, job)
		}
	}
	return result, nil
}

func (r *JobRepository) ListUnscheduled(ctx context.Context) ([]*entity.Job, error) {
	return r.ListByStatus(ctx, entity.JobUnscheduled)
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[job.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Job", ResourceID: job.ID.String()}
	}
	r.byID[job.ID] = job
	return nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	job, ok := r.byID[id]
	if !ok {
		return &repository.NotFoundError{ResourceType: "Job", ResourceID: id.String()}
	}
	job.Status = status
	return nil
}

func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
