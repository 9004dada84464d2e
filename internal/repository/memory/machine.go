package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// MachineRepository is an in-memory implementation of
// repository.MachineRepository.
type MachineRepository struct {
	store *Store
	byID  map[uuid.UUID]*entity.Machine
}

func (r *MachineRepository) Create(ctx context.Context, machine *entity.Machine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if machine.ID == uuid.Nil {
		machine.ID = uuid.New()
	}
	r.byID[machine.ID] = machine
	return nil
}

func (r *MachineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Machine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: id.String()}
	}
	return m, nil
}

func (r *MachineRepository) GetByMachineID(ctx context.Context, machineID string) (*entity.Machine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, m := range r.byID {
		if m.MachineID == machineID {
			return m, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: machineID}
}

func (r *MachineRepository) ListAll(ctx context.Context) ([]*entity.Machine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*entity.Machine, 0, len(r.byID))
	for _, m := range r.byID {
		result = append(result, m)
	}
	return result, nil
}

func (r *MachineRepository) ListBySubstitutionGroup(ctx context.Context, group string) ([]*entity.Machine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.Machine
	for _, m := range r.byID {
		for _, g := range m.SubstitutionGroups {
			if g == group {
				result = append(result, m)
				break
			}
		}
	}
	return result, nil
}

func (r *MachineRepository) Update(ctx context.Context, machine *entity.Machine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[machine.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Machine", ResourceID: machine.ID.String()}
	}
	r.byID[machine.ID] = machine
	return nil
}

func (r *MachineRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.byID)), nil
}
