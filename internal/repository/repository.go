// Package repository defines the storage contract the scheduling engine
// reads and writes through. Any backing store that upholds these
// interfaces is acceptable to the rest of the engine.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// Database provides access to all repositories plus transaction and
// version-counter primitives the Scheduler Service needs between passes.
type Database interface {
	BeginTx(ctx context.Context) (Transaction, error)

	JobRepository() JobRepository
	RoutingOperationRepository() RoutingOperationRepository
	MachineRepository() MachineRepository
	ResourceRepository() ResourceRepository
	UnavailabilityRepository() UnavailabilityRepository
	ScheduleEntryRepository() ScheduleEntryRepository

	// Version returns the current monotonic version counter, bumped on
	// every unavailability write. The Scheduler Service compares this
	// against the value observed at pass start to detect a stale snapshot.
	Version(ctx context.Context) (uint64, error)

	Close() error
	Health(ctx context.Context) error
}

// Transaction represents a database transaction; the same repository
// accessors are exposed against it so a pass can commit everything or
// nothing.
type Transaction interface {
	Commit() error
	Rollback() error

	JobRepository() JobRepository
	RoutingOperationRepository() RoutingOperationRepository
	MachineRepository() MachineRepository
	ResourceRepository() ResourceRepository
	UnavailabilityRepository() UnavailabilityRepository
	ScheduleEntryRepository() ScheduleEntryRepository
}

// JobRepository defines data access operations for jobs.
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	GetByJobNumber(ctx context.Context, jobNumber string) (*entity.Job, error)
	ListByStatus(ctx context.Context, status entity.JobStatus) ([]*entity.Job, error)
	ListUnscheduled(ctx context.Context) ([]*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error
	Count(ctx context.Context) (int64, error)
}

// RoutingOperationRepository defines data access operations for a job's
// routing operations.
type RoutingOperationRepository interface {
	Create(ctx context.Context, op *entity.RoutingOperation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.RoutingOperation, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.RoutingOperation, error)
	Update(ctx context.Context, op *entity.RoutingOperation) error
	Count(ctx context.Context) (int64, error)
}

// MachineRepository defines data access operations for machines.
type MachineRepository interface {
	Create(ctx context.Context, machine *entity.Machine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Machine, error)
	GetByMachineID(ctx context.Context, machineID string) (*entity.Machine, error)
	ListAll(ctx context.Context) ([]*entity.Machine, error)
	ListBySubstitutionGroup(ctx context.Context, group string) ([]*entity.Machine, error)
	Update(ctx context.Context, machine *entity.Machine) error
	Count(ctx context.Context) (int64, error)
}

// ResourceRepository defines data access operations for operators.
type ResourceRepository interface {
	Create(ctx context.Context, resource *entity.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Resource, error)
	ListActive(ctx context.Context) ([]*entity.Resource, error)
	Update(ctx context.Context, resource *entity.Resource) error
	Count(ctx context.Context) (int64, error)
}

// UnavailabilityRepository defines data access operations for operator
// unavailability records.
type UnavailabilityRepository interface {
	Create(ctx context.Context, u *entity.ResourceUnavailability) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ResourceUnavailability, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ResourceUnavailability, error)
	ListForOperator(ctx context.Context, operatorID uuid.UUID, start, end time.Time) ([]*entity.ResourceUnavailability, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ScheduleEntryRepository defines data access operations for committed
// schedule entries. Writes are append/delete only; entries are never
// mutated in place once written.
type ScheduleEntryRepository interface {
	AppendBatch(ctx context.Context, entries []*entity.ScheduleEntry) error
	DeleteByJob(ctx context.Context, jobID uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*entity.ScheduleEntry, error)
	ListByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.ScheduleEntry, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ScheduleEntry, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*entity.ScheduleEntry, error)
	Count(ctx context.Context) (int64, error)
}

// NotFoundError represents a record not found error.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.ResourceType + " " + e.ResourceID
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ValidationError represents a validation error raised at write time by
// the Storage implementation (spec.md §6's invariant enforcement).
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
