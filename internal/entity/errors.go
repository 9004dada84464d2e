package entity

import (
	"errors"
	"fmt"
)

// Tagged outcomes surfaced by the scheduling engine (spec §7). These are
// returned as values, never raised across the component boundary as panics.
var (
	ErrNoCandidateMachine  = errors.New("no candidate machine")
	ErrNoQualifiedOperator = errors.New("no qualified operator")
	ErrCapacityExhausted   = errors.New("no gap of sufficient size found within the search horizon")
	ErrTimeoutExceeded     = errors.New("placement pass exceeded its wall-clock budget")
	ErrStaleSnapshot       = errors.New("pass retried three times against a stale snapshot")
	ErrRoutingInvalid      = errors.New("routing is invalid")
)

// UnplaceableError wraps any of the above with the operation it was raised
// for, so a caller can report which step of a job's routing failed.
type UnplaceableError struct {
	JobID      JobID
	OpSequence int
	Cause      error
}

func (e *UnplaceableError) Error() string {
	return fmt.Sprintf("job %s operation %d: unplaceable: %v", e.JobID, e.OpSequence, e.Cause)
}

func (e *UnplaceableError) Unwrap() error {
	return e.Cause
}

// ValidateJobPriority validates a job priority string.
func ValidateJobPriority(p string) bool {
	switch JobPriority(p) {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// ValidateJobStatus validates a job status string.
func ValidateJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobUnscheduled, JobPlanning, JobScheduled, JobInProgress, JobComplete, JobOnHold:
		return true
	default:
		return false
	}
}

// ValidateMachineStatus validates a machine status string.
func ValidateMachineStatus(s string) bool {
	switch MachineStatus(s) {
	case MachineAvailable, MachineBusy, MachineMaintenance, MachineOffline:
		return true
	default:
		return false
	}
}

// ValidateResourceRole validates an operator role string.
func ValidateResourceRole(r string) bool {
	switch ResourceRole(r) {
	case RoleOperator, RoleShiftLead, RoleQualityInspector, RoleMaintenance, RoleSupervisor, RoleSetup:
		return true
	default:
		return false
	}
}

// ParseMachineType maps an incoming free-form machine-type tag to a known
// MachineType, falling back to MachineTypeOther for anything unrecognized
// (Design Notes: "dynamic typing artifacts to replace").
func ParseMachineType(s string) MachineType {
	switch MachineType(s) {
	case MachineTypeMill, MachineTypeLathe, MachineTypeInspect, MachineTypeOutsource, MachineTypeDeburr:
		return MachineType(s)
	default:
		return MachineTypeOther
	}
}

// ValidateRoutingOperation checks the per-operation invariants spec §7
// groups under RoutingInvalid: a populated machine type and non-negative
// hours. Sequence density is a job-wide property checked by the caller
// across the whole routing (see ValidateRoutingSequence).
func ValidateRoutingOperation(op RoutingOperation) error {
	if op.MachineType == "" {
		return fmt.Errorf("%w: operation %d has no machine-type tag", ErrRoutingInvalid, op.Sequence)
	}
	if op.EstimatedHours < 0 || op.SetupHours < 0 {
		return fmt.Errorf("%w: operation %d has negative hours", ErrRoutingInvalid, op.Sequence)
	}
	return nil
}

// ValidateRoutingSequence checks that operations (in any order) form a
// dense 1..N sequence for one job.
func ValidateRoutingSequence(ops []RoutingOperation) error {
	seen := make(map[int]bool, len(ops))
	for _, op := range ops {
		if seen[op.Sequence] {
			return fmt.Errorf("%w: duplicate sequence %d", ErrRoutingInvalid, op.Sequence)
		}
		seen[op.Sequence] = true
	}
	for i := 1; i <= len(ops); i++ {
		if !seen[i] {
			return fmt.Errorf("%w: sequence is not dense from 1 (missing %d)", ErrRoutingInvalid, i)
		}
	}
	return nil
}
