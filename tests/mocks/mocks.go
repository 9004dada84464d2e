// Package mocks provides in-memory mock repositories for unit tests that
// need to inject errors or inspect call behavior beyond what the real
// internal/repository/memory store allows.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// MockJobRepository is a mock implementation of repository.JobRepository.
type MockJobRepository struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*entity.Job
	getErr    error
	saveErr   error
	updateErr error
}

// NewMockJobRepository creates an empty mock job repository.
func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (m *MockJobRepository) Create(ctx context.Context, job *entity.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: id.String()}
}

func (m *MockJobRepository) GetByJobNumber(ctx context.Context, jobNumber string) (*entity.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, job := range m.jobs {
		if job.JobNumber == jobNumber {
			return job, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "Job", ResourceID: jobNumber}
}

func (m *MockJobRepository) ListByStatus(ctx context.Context, status entity.JobStatus) ([]*entity.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var jobs []*entity.Job
	for _, job := range m.jobs {
		if job.Status == status {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (m *MockJobRepository) ListUnscheduled(ctx context.Context) ([]*entity.Job, error) {
	return m.ListByStatus(ctx, entity.JobUnscheduled)
}

func (m *MockJobRepository) Update(ctx context.Context, job *entity.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.jobs[job.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Job", ResourceID: job.ID.String()}
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return &repository.NotFoundError{ResourceType: "Job", ResourceID: id.String()}
	}
	job.Status = status
	return nil
}

func (m *MockJobRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.jobs)), nil
}

// SetGetError sets the error returned from read operations.
func (m *MockJobRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// SetSaveError sets the error returned from Create.
func (m *MockJobRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SetUpdateError sets the error returned from Update/UpdateStatus.
func (m *MockJobRepository) SetUpdateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateErr = err
}

// Clear removes all stored jobs.
func (m *MockJobRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = make(map[uuid.UUID]*entity.Job)
}

// MockRoutingOperationRepository is a mock implementation of
// repository.RoutingOperationRepository.
type MockRoutingOperationRepository struct {
	mu        sync.RWMutex
	ops       map[uuid.UUID]*entity.RoutingOperation
	getErr    error
	saveErr   error
	updateErr error
}

// NewMockRoutingOperationRepository creates an empty mock repository.
func NewMockRoutingOperationRepository() *MockRoutingOperationRepository {
	return &MockRoutingOperationRepository{ops: make(map[uuid.UUID]*entity.RoutingOperation)}
}

func (m *MockRoutingOperationRepository) Create(ctx context.Context, op *entity.RoutingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ops[op.ID] = op
	return nil
}

func (m *MockRoutingOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RoutingOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if op, ok := m.ops[id]; ok {
		return op, nil
	}
	return nil, &repository.NotFoundError{ResourceType: "RoutingOperation", ResourceID: id.String()}
}

func (m *MockRoutingOperationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.RoutingOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var ops []*entity.RoutingOperation
	for _, op := range m.ops {
		if op.JobID == jobID {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (m *MockRoutingOperationRepository) Update(ctx context.Context, op *entity.RoutingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.ops[op.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "RoutingOperation", ResourceID: op.ID.String()}
	}
	m.ops[op.ID] = op
	return nil
}

func (m *MockRoutingOperationRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.ops)), nil
}

func (m *MockRoutingOperationRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockRoutingOperationRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockRoutingOperationRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = make(map[uuid.UUID]*entity.RoutingOperation)
}

// MockMachineRepository is a mock implementation of repository.MachineRepository.
type MockMachineRepository struct {
	mu        sync.RWMutex
	machines  map[uuid.UUID]*entity.Machine
	getErr    error
	saveErr   error
	updateErr error
}

// NewMockMachineRepository creates an empty mock repository.
func NewMockMachineRepository() *MockMachineRepository {
	return &MockMachineRepository{machines: make(map[uuid.UUID]*entity.Machine)}
}

func (m *MockMachineRepository) Create(ctx context.Context, machine *entity.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.machines[machine.ID] = machine
	return nil
}

func (m *MockMachineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if machine, ok := m.machines[id]; ok {
		return machine, nil
	}
	return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: id.String()}
}

func (m *MockMachineRepository) GetByMachineID(ctx context.Context, machineID string) (*entity.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, machine := range m.machines {
		if machine.MachineID == machineID {
			return machine, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "Machine", ResourceID: machineID}
}

func (m *MockMachineRepository) ListAll(ctx context.Context) ([]*entity.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var machines []*entity.Machine
	for _, machine := range m.machines {
		machines = append(machines, machine)
	}
	return machines, nil
}

func (m *MockMachineRepository) ListBySubstitutionGroup(ctx context.Context, group string) ([]*entity.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var machines []*entity.Machine
	for _, machine := range m.machines {
		for _, g := range machine.SubstitutionGroups {
			if g == group {
				machines = append(machines, machine)
				break
			}
		}
	}
	return machines, nil
}

func (m *MockMachineRepository) Update(ctx context.Context, machine *entity.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.machines[machine.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Machine", ResourceID: machine.ID.String()}
	}
	m.machines[machine.ID] = machine
	return nil
}

func (m *MockMachineRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.machines)), nil
}

func (m *MockMachineRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockMachineRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockMachineRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines = make(map[uuid.UUID]*entity.Machine)
}

// MockResourceRepository is a mock implementation of repository.ResourceRepository.
type MockResourceRepository struct {
	mu        sync.RWMutex
	resources map[uuid.UUID]*entity.Resource
	getErr    error
	saveErr   error
	updateErr error
}

// NewMockResourceRepository creates an empty mock repository.
func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{resources: make(map[uuid.UUID]*entity.Resource)}
}

func (m *MockResourceRepository) Create(ctx context.Context, resource *entity.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if resource, ok := m.resources[id]; ok {
		return resource, nil
	}
	return nil, &repository.NotFoundError{ResourceType: "Resource", ResourceID: id.String()}
}

func (m *MockResourceRepository) ListActive(ctx context.Context) ([]*entity.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var resources []*entity.Resource
	for _, resource := range m.resources {
		if resource.Active {
			resources = append(resources, resource)
		}
	}
	return resources, nil
}

func (m *MockResourceRepository) Update(ctx context.Context, resource *entity.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.resources[resource.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Resource", ResourceID: resource.ID.String()}
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *MockResourceRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.resources)), nil
}

func (m *MockResourceRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockResourceRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockResourceRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = make(map[uuid.UUID]*entity.Resource)
}

// MockUnavailabilityRepository is a mock implementation of
// repository.UnavailabilityRepository.
type MockUnavailabilityRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*entity.ResourceUnavailability
	getErr  error
	saveErr error
}

// NewMockUnavailabilityRepository creates an empty mock repository.
func NewMockUnavailabilityRepository() *MockUnavailabilityRepository {
	return &MockUnavailabilityRepository{records: make(map[uuid.UUID]*entity.ResourceUnavailability)}
}

func (m *MockUnavailabilityRepository) Create(ctx context.Context, u *entity.ResourceUnavailability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[u.ID] = u
	return nil
}

func (m *MockUnavailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ResourceUnavailability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.records[id]; ok {
		return u, nil
	}
	return nil, &repository.NotFoundError{ResourceType: "ResourceUnavailability", ResourceID: id.String()}
}

func (m *MockUnavailabilityRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var records []*entity.ResourceUnavailability
	for _, u := range m.records {
		if u.StartDate.Before(end) && start.Before(u.EndDate.AddDate(0, 0, 1)) {
			records = append(records, u)
		}
	}
	return records, nil
}

func (m *MockUnavailabilityRepository) ListForOperator(ctx context.Context, operatorID uuid.UUID, start, end time.Time) ([]*entity.ResourceUnavailability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var records []*entity.ResourceUnavailability
	for _, u := range m.records {
		for _, opID := range u.OperatorIDs {
			if opID == operatorID && u.StartDate.Before(end) && start.Before(u.EndDate.AddDate(0, 0, 1)) {
				records = append(records, u)
				break
			}
		}
	}
	return records, nil
}

func (m *MockUnavailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return &repository.NotFoundError{ResourceType: "ResourceUnavailability", ResourceID: id.String()}
	}
	delete(m.records, id)
	return nil
}

func (m *MockUnavailabilityRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *MockUnavailabilityRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockUnavailabilityRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockUnavailabilityRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[uuid.UUID]*entity.ResourceUnavailability)
}

// MockScheduleEntryRepository is a mock implementation of
// repository.ScheduleEntryRepository.
type MockScheduleEntryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entity.ScheduleEntry
	saveErr error
	getErr  error
}

// NewMockScheduleEntryRepository creates an empty mock repository.
func NewMockScheduleEntryRepository() *MockScheduleEntryRepository {
	return &MockScheduleEntryRepository{entries: make(map[uuid.UUID]*entity.ScheduleEntry)}
}

func (m *MockScheduleEntryRepository) AppendBatch(ctx context.Context, entries []*entity.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return nil
}

func (m *MockScheduleEntryRepository) DeleteByJob(ctx context.Context, jobID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.JobID == jobID {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MockScheduleEntryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

func (m *MockScheduleEntryRepository) ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var entries []*entity.ScheduleEntry
	for _, e := range m.entries {
		if e.MachineID == machineID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockScheduleEntryRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var entries []*entity.ScheduleEntry
	for _, e := range m.entries {
		if e.OperatorID != nil && *e.OperatorID == operatorID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockScheduleEntryRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var entries []*entity.ScheduleEntry
	for _, e := range m.entries {
		if e.JobID == jobID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockScheduleEntryRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var entries []*entity.ScheduleEntry
	for _, e := range m.entries {
		if e.Start.Before(end) && start.Before(e.End) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockScheduleEntryRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

func (m *MockScheduleEntryRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockScheduleEntryRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockScheduleEntryRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[uuid.UUID]*entity.ScheduleEntry)
}

// MockDatabase wires the mock repositories above into a repository.Database
// for scheduler and handler tests that need to inject a specific repository
// error without standing up the full memory store.
type MockDatabase struct {
	mu      sync.Mutex
	version uint64

	jobs      *MockJobRepository
	routing   *MockRoutingOperationRepository
	machines  *MockMachineRepository
	resources *MockResourceRepository
	unavail   *MockUnavailabilityRepository
	entries   *MockScheduleEntryRepository

	healthErr error
}

// NewMockDatabase creates a MockDatabase backed by fresh, empty mock
// repositories.
func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		jobs:      NewMockJobRepository(),
		routing:   NewMockRoutingOperationRepository(),
		machines:  NewMockMachineRepository(),
		resources: NewMockResourceRepository(),
		unavail:   NewMockUnavailabilityRepository(),
		entries:   NewMockScheduleEntryRepository(),
	}
}

func (d *MockDatabase) JobRepository() repository.JobRepository                       { return d.jobs }
func (d *MockDatabase) RoutingOperationRepository() repository.RoutingOperationRepository { return d.routing }
func (d *MockDatabase) MachineRepository() repository.MachineRepository               { return d.machines }
func (d *MockDatabase) ResourceRepository() repository.ResourceRepository             { return d.resources }
func (d *MockDatabase) UnavailabilityRepository() repository.UnavailabilityRepository { return d.unavail }
func (d *MockDatabase) ScheduleEntryRepository() repository.ScheduleEntryRepository   { return d.entries }

// Version returns the current version counter and allows tests to force a
// stale-snapshot retry by calling BumpVersion mid-pass.
func (d *MockDatabase) Version(ctx context.Context) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version, nil
}

// BumpVersion increments the version counter, simulating a concurrent
// unavailability write landing between a scheduler pass's snapshot read
// and commit.
func (d *MockDatabase) BumpVersion() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version++
}

func (d *MockDatabase) SetHealthError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.healthErr = err
}

func (d *MockDatabase) Health(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.healthErr
}

func (d *MockDatabase) Close() error { return nil }

// BeginTx returns a MockTransaction sharing this database's repositories,
// since the mock repositories already apply writes immediately rather than
// buffering them until commit.
func (d *MockDatabase) BeginTx(ctx context.Context) (repository.Transaction, error) {
	return &MockTransaction{db: d}, nil
}

// MockTransaction is a no-op transaction wrapper over a MockDatabase: the
// mock repositories commit writes immediately, so Commit and Rollback only
// exist to satisfy repository.Transaction.
type MockTransaction struct {
	db         *MockDatabase
	rolledBack bool
}

func (t *MockTransaction) Commit() error { return nil }

func (t *MockTransaction) Rollback() error {
	t.rolledBack = true
	return nil
}

func (t *MockTransaction) JobRepository() repository.JobRepository { return t.db.jobs }
func (t *MockTransaction) RoutingOperationRepository() repository.RoutingOperationRepository {
	return t.db.routing
}
func (t *MockTransaction) MachineRepository() repository.MachineRepository   { return t.db.machines }
func (t *MockTransaction) ResourceRepository() repository.ResourceRepository { return t.db.resources }
func (t *MockTransaction) UnavailabilityRepository() repository.UnavailabilityRepository {
	return t.db.unavail
}
func (t *MockTransaction) ScheduleEntryRepository() repository.ScheduleEntryRepository {
	return t.db.entries
}
