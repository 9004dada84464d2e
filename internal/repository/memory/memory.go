// Package memory is an in-memory implementation of the storage contract,
// suitable for tests and for small single-process deployments.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// Store backs every repository with a single shared mutex and a monotonic
// version counter bumped on every unavailability write (spec.md §5's
// stale-snapshot detection).
type Store struct {
	mu      sync.RWMutex
	version uint64

	jobs      *JobRepository
	routings  *RoutingOperationRepository
	machines  *MachineRepository
	resources *ResourceRepository
	unavail   *UnavailabilityRepository
	entries   *ScheduleEntryRepository
}

// New creates a new empty in-memory store.
func New() *Store {
	s := &Store{}
	s.jobs = &JobRepository{store: s, byID: make(map[uuid.UUID]*entity.Job)}
	s.routings = &RoutingOperationRepository{store: s, byID: make(map[uuid.UUID]*entity.RoutingOperation)}
	s.machines = &MachineRepository{store: s, byID: make(map[uuid.UUID]*entity.Machine)}
	s.resources = &ResourceRepository{store: s, byID: make(map[uuid.UUID]*entity.Resource)}
	s.unavail = &UnavailabilityRepository{store: s, byID: make(map[uuid.UUID]*entity.ResourceUnavailability)}
	s.entries = &ScheduleEntryRepository{store: s, byID: make(map[uuid.UUID]*entity.ScheduleEntry)}
	return s
}

func (s *Store) JobRepository() repository.JobRepository                           { return s.jobs }
func (s *Store) RoutingOperationRepository() repository.RoutingOperationRepository { return s.routings }
func (s *Store) MachineRepository() repository.MachineRepository                   { return s.machines }
func (s *Store) ResourceRepository() repository.ResourceRepository                 { return s.resources }
func (s *Store) UnavailabilityRepository() repository.UnavailabilityRepository     { return s.unavail }
func (s *Store) ScheduleEntryRepository() repository.ScheduleEntryRepository       { return s.entries }

func (s *Store) Version(ctx context.Context) (uint64, error) {
	return atomic.LoadUint64(&s.version), nil
}

func (s *Store) bumpVersion() {
	atomic.AddUint64(&s.version, 1)
}

func (s *Store) Close() error { return nil }

func (s *Store) Health(ctx context.Context) error { return nil }

// BeginTx returns a transaction wrapping the same store. The in-memory
// store has no rollback log; Commit and Rollback are both no-ops beyond
// bookkeeping, matching the teacher's memory backend treating transactions
// as a pass-through convenience rather than a real isolation boundary.
func (s *Store) BeginTx(ctx context.Context) (repository.Transaction, error) {
	return &tx{store: s}, nil
}

type tx struct {
	store *Store
}

func (t *tx) Commit() error   { return nil }
func (t *tx) Rollback() error { return nil }

func (t *tx) JobRepository() repository.JobRepository                           { return t.store.jobs }
func (t *tx) RoutingOperationRepository() repository.RoutingOperationRepository { return t.store.routings }
func (t *tx) MachineRepository() repository.MachineRepository                   { return t.store.machines }
func (t *tx) ResourceRepository() repository.ResourceRepository                 { return t.store.resources }
func (t *tx) UnavailabilityRepository() repository.UnavailabilityRepository     { return t.store.unavail }
func (t *tx) ScheduleEntryRepository() repository.ScheduleEntryRepository       { return t.store.entries }
