package helpers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// Factory functions create valid entities with sensible defaults, layered
// on top of the builders in builders.go.

// CreateValidJob creates a valid, unscheduled Job due two weeks out.
func CreateValidJob() *entity.Job {
	return NewJobBuilder().Build()
}

// CreateValidJobWithPriority creates a valid Job at a specific priority.
func CreateValidJobWithPriority(priority entity.JobPriority) *entity.Job {
	return NewJobBuilder().WithPriority(priority).Build()
}

// CreateValidJobDueOn creates a valid Job due on a specific date.
func CreateValidJobDueOn(due time.Time) *entity.Job {
	return NewJobBuilder().WithDueDate(due).Build()
}

// CreateValidJobWithStatus creates a valid Job in a specific lifecycle state.
func CreateValidJobWithStatus(status entity.JobStatus) *entity.Job {
	return NewJobBuilder().WithStatus(status).Build()
}

// CreateValidRoutingOperation creates a single-sequence mill operation for jobID.
func CreateValidRoutingOperation(jobID uuid.UUID) entity.RoutingOperation {
	return NewRoutingOperationBuilder().WithJobID(jobID).Build()
}

// CreateValidRoutingOperationWithType creates a routing operation of a
// specific machine type for jobID.
func CreateValidRoutingOperationWithType(jobID uuid.UUID, machineType entity.MachineType) entity.RoutingOperation {
	return NewRoutingOperationBuilder().
		WithJobID(jobID).
		WithMachineType(machineType).
		Build()
}

// CreateValidRouting creates a dense, sequential routing of n operations
// for jobID: mill steps, with the last step an inspect step in the style of
// a typical shop traveler.
func CreateValidRouting(jobID uuid.UUID, n int) []entity.RoutingOperation {
	ops := make([]entity.RoutingOperation, n)
	for i := 0; i < n; i++ {
		machineType := entity.MachineTypeMill
		if i == n-1 {
			machineType = entity.MachineTypeInspect
		}
		ops[i] = NewRoutingOperationBuilder().
			WithJobID(jobID).
			WithSequence(i + 1).
			WithMachineType(machineType).
			Build()
	}
	return ops
}

// CreateValidMachine creates a valid, available mill running both shifts.
func CreateValidMachine() entity.Machine {
	return NewMachineBuilder().Build()
}

// CreateValidMachineWithType creates a valid machine of a specific type.
func CreateValidMachineWithType(machineType entity.MachineType) entity.Machine {
	return NewMachineBuilder().WithType(machineType).Build()
}

// CreateValidMachineWithStatus creates a valid machine in a specific status.
func CreateValidMachineWithStatus(status entity.MachineStatus) entity.Machine {
	return NewMachineBuilder().WithStatus(status).Build()
}

// CreateValidMachineInGroups creates a machine belonging to the given
// substitution groups.
func CreateValidMachineInGroups(groups ...string) entity.Machine {
	return NewMachineBuilder().WithSubstitutionGroups(groups...).Build()
}

// CreateValidOperator creates a valid, active operator working both shifts.
func CreateValidOperator() entity.Resource {
	return NewResourceBuilder().Build()
}

// CreateValidOperatorWithRole creates a valid operator with a specific role.
func CreateValidOperatorWithRole(role entity.ResourceRole) entity.Resource {
	return NewResourceBuilder().WithRole(role).Build()
}

// CreateValidOperatorQualifiedFor creates an operator qualified on the
// given machine identifiers.
func CreateValidOperatorQualifiedFor(machineIDs ...string) entity.Resource {
	return NewResourceBuilder().WithWorkCenters(machineIDs...).Build()
}

// CreateValidOperatorInactive creates a valid but inactive operator.
func CreateValidOperatorInactive() entity.Resource {
	return NewResourceBuilder().WithActive(false).Build()
}

// CreateValidUnavailability creates a full-day unavailability for the given
// operators covering both shifts today.
func CreateValidUnavailability(operatorIDs ...uuid.UUID) entity.ResourceUnavailability {
	return NewResourceUnavailabilityBuilder().
		WithOperatorIDs(operatorIDs...).
		WithShifts(entity.Shift1, entity.Shift2).
		Build()
}

// CreateValidPartialUnavailability creates a partial-day unavailability
// window for the given operators on the given shift.
func CreateValidPartialUnavailability(shift entity.Shift, startClock, endClock string, operatorIDs ...uuid.UUID) entity.ResourceUnavailability {
	return NewResourceUnavailabilityBuilder().
		WithOperatorIDs(operatorIDs...).
		WithShifts(shift).
		WithPartial(startClock, endClock).
		Build()
}

// CreateValidScheduleEntry creates a valid, scheduled entry for the given
// job operation against the given machine, with no operator (outsourced
// style placement).
func CreateValidScheduleEntry(jobID uuid.UUID, sequence int, machineID uuid.UUID, start, end time.Time, shift entity.Shift) entity.ScheduleEntry {
	return entity.ScheduleEntry{
		ID:                uuid.New(),
		JobID:             jobID,
		OperationSequence: sequence,
		MachineID:         machineID,
		Start:             start,
		End:               end,
		Shift:             shift,
		Status:            entity.EntryScheduled,
	}
}

// CreateValidScheduleEntryWithOperator creates a valid scheduled entry with
// an assigned operator.
func CreateValidScheduleEntryWithOperator(jobID uuid.UUID, sequence int, machineID, operatorID uuid.UUID, start, end time.Time, shift entity.Shift) entity.ScheduleEntry {
	e := CreateValidScheduleEntry(jobID, sequence, machineID, start, end, shift)
	e.OperatorID = &operatorID
	return e
}

// BulkCreateValidJobs creates count valid jobs, each with a distinct job
// number.
func BulkCreateValidJobs(count int) []*entity.Job {
	jobs := make([]*entity.Job, count)
	for i := 0; i < count; i++ {
		jobs[i] = NewJobBuilder().WithJobNumber(fmt.Sprintf("J-%04d", i+1)).Build()
	}
	return jobs
}

// BulkCreateValidMachines creates count valid machines of the given type,
// each with a distinct MachineID.
func BulkCreateValidMachines(count int, machineType entity.MachineType) []entity.Machine {
	machines := make([]entity.Machine, count)
	for i := 0; i < count; i++ {
		machines[i] = NewMachineBuilder().
			WithMachineID(fmt.Sprintf("%s-%02d", machineType, i+1)).
			WithType(machineType).
			Build()
	}
	return machines
}

// BulkCreateValidOperators creates count valid operators, all qualified on
// the given machine identifiers.
func BulkCreateValidOperators(count int, machineIDs ...string) []entity.Resource {
	operators := make([]entity.Resource, count)
	for i := 0; i < count; i++ {
		operators[i] = NewResourceBuilder().WithWorkCenters(machineIDs...).Build()
	}
	return operators
}
