// Package helpers provides fluent builders and factory functions for
// constructing domain entities in tests, adapted from the same
// builder/factory split used across the rest of this codebase's test
// suites.
package helpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// JobBuilder builds Job entities with a fluent interface.
type JobBuilder struct {
	id           uuid.UUID
	jobNumber    string
	dueDate      time.Time
	promisedDate time.Time
	priority     entity.JobPriority
	status       entity.JobStatus
	createdAt    time.Time
}

// NewJobBuilder creates a JobBuilder with sensible defaults.
func NewJobBuilder() *JobBuilder {
	now := entity.Now()
	return &JobBuilder{
		id:        uuid.New(),
		jobNumber: "J-0001",
		dueDate:   now.AddDate(0, 0, 14),
		priority:  entity.PriorityNormal,
		status:    entity.JobUnscheduled,
		createdAt: now,
	}
}

func (b *JobBuilder) WithID(id uuid.UUID) *JobBuilder { b.id = id; return b }

func (b *JobBuilder) WithJobNumber(n string) *JobBuilder { b.jobNumber = n; return b }

func (b *JobBuilder) WithDueDate(t time.Time) *JobBuilder { b.dueDate = t; return b }

func (b *JobBuilder) WithPromisedDate(t time.Time) *JobBuilder { b.promisedDate = t; return b }

func (b *JobBuilder) WithPriority(p entity.JobPriority) *JobBuilder { b.priority = p; return b }

func (b *JobBuilder) WithStatus(s entity.JobStatus) *JobBuilder { b.status = s; return b }

// Build creates the Job entity.
func (b *JobBuilder) Build() *entity.Job {
	return &entity.Job{
		ID:           b.id,
		JobNumber:    b.jobNumber,
		DueDate:      b.dueDate,
		PromisedDate: b.promisedDate,
		Priority:     b.priority,
		Status:       b.status,
		CreatedAt:    b.createdAt,
	}
}

// RoutingOperationBuilder builds RoutingOperation entities.
type RoutingOperationBuilder struct {
	id                      uuid.UUID
	jobID                   uuid.UUID
	sequence                int
	operationName           string
	machineType             entity.MachineType
	estimatedHours          float64
	setupHours              float64
	requiredSkills          []string
	compatibleMachines      []string
	originalQuotedMachineID *string
	earliestStartDate       *time.Time
}

// NewRoutingOperationBuilder creates a RoutingOperationBuilder with
// sensible defaults.
func NewRoutingOperationBuilder() *RoutingOperationBuilder {
	return &RoutingOperationBuilder{
		id:             uuid.New(),
		sequence:       1,
		operationName:  "Mill pocket",
		machineType:    entity.MachineTypeMill,
		estimatedHours: 2,
	}
}

func (b *RoutingOperationBuilder) WithID(id uuid.UUID) *RoutingOperationBuilder { b.id = id; return b }

func (b *RoutingOperationBuilder) WithJobID(id uuid.UUID) *RoutingOperationBuilder {
	b.jobID = id
	return b
}

func (b *RoutingOperationBuilder) WithSequence(n int) *RoutingOperationBuilder {
	b.sequence = n
	return b
}

func (b *RoutingOperationBuilder) WithMachineType(t entity.MachineType) *RoutingOperationBuilder {
	b.machineType = t
	return b
}

func (b *RoutingOperationBuilder) WithEstimatedHours(h float64) *RoutingOperationBuilder {
	b.estimatedHours = h
	return b
}

func (b *RoutingOperationBuilder) WithSetupHours(h float64) *RoutingOperationBuilder {
	b.setupHours = h
	return b
}

func (b *RoutingOperationBuilder) WithRequiredSkills(skills ...string) *RoutingOperationBuilder {
	b.requiredSkills = skills
	return b
}

func (b *RoutingOperationBuilder) WithCompatibleMachines(ids ...string) *RoutingOperationBuilder {
	b.compatibleMachines = ids
	return b
}

func (b *RoutingOperationBuilder) WithOriginalQuotedMachineID(id string) *RoutingOperationBuilder {
	b.originalQuotedMachineID = &id
	return b
}

func (b *RoutingOperationBuilder) WithEarliestStartDate(t time.Time) *RoutingOperationBuilder {
	b.earliestStartDate = &t
	return b
}

// Build creates the RoutingOperation entity.
func (b *RoutingOperationBuilder) Build() entity.RoutingOperation {
	return entity.RoutingOperation{
		ID:                      b.id,
		JobID:                   b.jobID,
		Sequence:                b.sequence,
		OperationName:           b.operationName,
		MachineType:             b.machineType,
		EstimatedHours:          b.estimatedHours,
		SetupHours:              b.setupHours,
		RequiredSkills:          b.requiredSkills,
		CompatibleMachines:      b.compatibleMachines,
		OriginalQuotedMachineID: b.originalQuotedMachineID,
		EarliestStartDate:       b.earliestStartDate,
	}
}

// MachineBuilder builds Machine entities.
type MachineBuilder struct {
	id                 uuid.UUID
	machineID          string
	machineType        entity.MachineType
	substitutionGroups []string
	status             entity.MachineStatus
	availableShifts    []entity.Shift
	efficiencyFactor   float64
	capabilityFlags    map[string]bool
}

// NewMachineBuilder creates a MachineBuilder with sensible defaults: an
// available mill running both shifts at full efficiency.
func NewMachineBuilder() *MachineBuilder {
	return &MachineBuilder{
		id:               uuid.New(),
		machineID:        "MILL-01",
		machineType:      entity.MachineTypeMill,
		status:           entity.MachineAvailable,
		availableShifts:  []entity.Shift{entity.Shift1, entity.Shift2},
		efficiencyFactor: 1,
	}
}

func (b *MachineBuilder) WithID(id uuid.UUID) *MachineBuilder { b.id = id; return b }

func (b *MachineBuilder) WithMachineID(id string) *MachineBuilder { b.machineID = id; return b }

func (b *MachineBuilder) WithType(t entity.MachineType) *MachineBuilder { b.machineType = t; return b }

func (b *MachineBuilder) WithSubstitutionGroups(groups ...string) *MachineBuilder {
	b.substitutionGroups = groups
	return b
}

func (b *MachineBuilder) WithStatus(s entity.MachineStatus) *MachineBuilder { b.status = s; return b }

func (b *MachineBuilder) WithAvailableShifts(shifts ...entity.Shift) *MachineBuilder {
	b.availableShifts = shifts
	return b
}

func (b *MachineBuilder) WithEfficiencyFactor(f float64) *MachineBuilder {
	b.efficiencyFactor = f
	return b
}

func (b *MachineBuilder) WithCapabilityFlag(flag string) *MachineBuilder {
	if b.capabilityFlags == nil {
		b.capabilityFlags = map[string]bool{}
	}
	b.capabilityFlags[flag] = true
	return b
}

// Build creates the Machine entity.
func (b *MachineBuilder) Build() entity.Machine {
	return entity.Machine{
		ID:                 b.id,
		MachineID:          b.machineID,
		Type:               b.machineType,
		SubstitutionGroups: b.substitutionGroups,
		Status:             b.status,
		AvailableShifts:    b.availableShifts,
		EfficiencyFactor:   b.efficiencyFactor,
		CapabilityFlags:    b.capabilityFlags,
	}
}

// ResourceBuilder builds Resource (operator) entities.
type ResourceBuilder struct {
	id            uuid.UUID
	role          entity.ResourceRole
	active        bool
	shiftSchedule []entity.Shift
	workCenters   map[string]bool
	skills        []string
}

// NewResourceBuilder creates a ResourceBuilder with sensible defaults: an
// active operator working both shifts with no work-center qualifications.
func NewResourceBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		id:            uuid.New(),
		role:          entity.RoleOperator,
		active:        true,
		shiftSchedule: []entity.Shift{entity.Shift1, entity.Shift2},
		workCenters:   map[string]bool{},
	}
}

func (b *ResourceBuilder) WithID(id uuid.UUID) *ResourceBuilder { b.id = id; return b }

func (b *ResourceBuilder) WithRole(r entity.ResourceRole) *ResourceBuilder { b.role = r; return b }

func (b *ResourceBuilder) WithActive(active bool) *ResourceBuilder { b.active = active; return b }

func (b *ResourceBuilder) WithShiftSchedule(shifts ...entity.Shift) *ResourceBuilder {
	b.shiftSchedule = shifts
	return b
}

func (b *ResourceBuilder) WithWorkCenters(ids ...string) *ResourceBuilder {
	for _, id := range ids {
		b.workCenters[id] = true
	}
	return b
}

func (b *ResourceBuilder) WithSkills(skills ...string) *ResourceBuilder {
	b.skills = skills
	return b
}

// Build creates the Resource entity.
func (b *ResourceBuilder) Build() entity.Resource {
	return entity.Resource{
		ID:            b.id,
		Role:          b.role,
		Active:        b.active,
		ShiftSchedule: b.shiftSchedule,
		WorkCenters:   b.workCenters,
		Skills:        b.skills,
	}
}

// ResourceUnavailabilityBuilder builds ResourceUnavailability entities.
type ResourceUnavailabilityBuilder struct {
	id          uuid.UUID
	operatorIDs []uuid.UUID
	startDate   time.Time
	endDate     time.Time
	partial     bool
	startTime   *string
	endTime     *string
	shifts      []entity.Shift
	reason      string
}

// NewResourceUnavailabilityBuilder creates a builder for a single-day,
// full-day unavailability record.
func NewResourceUnavailabilityBuilder() *ResourceUnavailabilityBuilder {
	today := entity.Now()
	return &ResourceUnavailabilityBuilder{
		id:        uuid.New(),
		startDate: today,
		endDate:   today,
	}
}

func (b *ResourceUnavailabilityBuilder) WithOperatorIDs(ids ...uuid.UUID) *ResourceUnavailabilityBuilder {
	b.operatorIDs = ids
	return b
}

func (b *ResourceUnavailabilityBuilder) WithDateRange(start, end time.Time) *ResourceUnavailabilityBuilder {
	b.startDate, b.endDate = start, end
	return b
}

func (b *ResourceUnavailabilityBuilder) WithPartial(startClock, endClock string) *ResourceUnavailabilityBuilder {
	b.partial = true
	b.startTime, b.endTime = &startClock, &endClock
	return b
}

func (b *ResourceUnavailabilityBuilder) WithShifts(shifts ...entity.Shift) *ResourceUnavailabilityBuilder {
	b.shifts = shifts
	return b
}

func (b *ResourceUnavailabilityBuilder) WithReason(reason string) *ResourceUnavailabilityBuilder {
	b.reason = reason
	return b
}

// Build creates the ResourceUnavailability entity.
func (b *ResourceUnavailabilityBuilder) Build() entity.ResourceUnavailability {
	return entity.ResourceUnavailability{
		ID:          b.id,
		OperatorIDs: b.operatorIDs,
		StartDate:   b.startDate,
		EndDate:     b.endDate,
		Partial:     b.partial,
		StartTime:   b.startTime,
		EndTime:     b.endTime,
		Shifts:      b.shifts,
		Reason:      b.reason,
	}
}
