// Package entity contains the domain types shared by the scheduling engine:
// jobs, their routings, machines, operators, unavailability records, and the
// schedule entries placement produces.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Type aliases for domain IDs and temporal types.
type (
	JobID          = uuid.UUID
	RoutingOpID    = uuid.UUID
	MachineID      = uuid.UUID
	ResourceID     = uuid.UUID
	UnavailID      = uuid.UUID
	ScheduleEntryID = uuid.UUID
)

// Now returns the current instant in UTC. Placement and commit timestamps
// are always stamped in UTC; wall-clock interpretation happens only at the
// Calendar boundary.
func Now() time.Time {
	return time.Now().UTC()
}

// Shift identifies one of the two fixed twelve-hour production shifts.
type Shift int

const (
	Shift1 Shift = 1
	Shift2 Shift = 2
)

func (s Shift) Other() Shift {
	if s == Shift1 {
		return Shift2
	}
	return Shift1
}

func (s Shift) Valid() bool {
	return s == Shift1 || s == Shift2
}

// JobPriority orders jobs for batch scheduling and displacement.
type JobPriority string

const (
	PriorityCritical JobPriority = "Critical"
	PriorityHigh     JobPriority = "High"
	PriorityNormal   JobPriority = "Normal"
	PriorityLow      JobPriority = "Low"
)

// rank returns a sort weight; lower sorts first (higher priority).
func (p JobPriority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Higher reports whether p outranks other (strictly higher priority).
func (p JobPriority) Higher(other JobPriority) bool {
	return p.rank() < other.rank()
}

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobUnscheduled JobStatus = "Unscheduled"
	JobPlanning    JobStatus = "Planning"
	JobScheduled   JobStatus = "Scheduled"
	JobInProgress  JobStatus = "InProgress"
	JobComplete    JobStatus = "Complete"
	JobOnHold      JobStatus = "OnHold"
)

// Job is a unit of work whose RoutingOperations are placed onto machines
// and operators by the Scheduler Service. Storage owns the Job; placement
// only ever mutates its Status.
type Job struct {
	ID           JobID
	JobNumber    string
	DueDate      time.Time
	PromisedDate time.Time
	Priority     JobPriority
	Status       JobStatus
	CreatedAt    time.Time
}

// MachineType tags the kind of work an operation requires and the kind of
// machine that can perform it. Unrecognized incoming tags become
// MachineTypeOther, which is routed only to type-fallback candidates
// (Machine Substitution Resolver step 4) since no substitution-group or
// compatible-machines metadata can be trusted for them.
type MachineType string

const (
	MachineTypeMill      MachineType = "MILL"
	MachineTypeLathe     MachineType = "LATHE"
	MachineTypeInspect   MachineType = "INSPECT"
	MachineTypeOutsource MachineType = "OUTSOURCE"
	MachineTypeDeburr    MachineType = "DEBURR"
	MachineTypeOther     MachineType = "OTHER"
)

// RoutingOperation belongs to exactly one Job. Sequences are unique and
// dense from 1 within a job; operation k may only start after operation
// k-1's last chunk ends.
type RoutingOperation struct {
	ID                      RoutingOpID
	JobID                   JobID
	Sequence                int
	OperationName           string
	MachineType             MachineType
	EstimatedHours          float64
	SetupHours              float64
	RequiredSkills          []string
	CompatibleMachines      []string // machine identifiers (Machine.MachineID)
	OriginalQuotedMachineID *string  // machine identifier, not MachineID (uuid)
	EarliestStartDate       *time.Time
	Modified                bool
}

// TotalMinutes returns (estimated + setup) hours converted to minutes, the
// M the Placement Algorithm must place in full.
func (op RoutingOperation) TotalMinutes() float64 {
	return (op.EstimatedHours + op.SetupHours) * 60
}

// MachineStatus gates whether a machine may receive new placements.
type MachineStatus string

const (
	MachineAvailable   MachineStatus = "Available"
	MachineBusy        MachineStatus = "Busy"
	MachineMaintenance MachineStatus = "Maintenance"
	MachineOffline     MachineStatus = "Offline"
)

// Machine is a fleet member that can run operations of its Type (and any
// operation reachable through its substitution groups or compatible-machine
// lists). SubstitutionGroups is plural — the design note's 4-axis/3-axis
// example requires a single machine to belong to more than one group (a
// 4-axis mill belongs to both the "4-axis" and the "3-axis" group; a 3-axis
// mill belongs only to "3-axis").
type Machine struct {
	ID                 uuid.UUID
	MachineID          string // stable external identifier, e.g. "MILL-01"
	Type               MachineType
	SubstitutionGroups []string
	Status             MachineStatus
	AvailableShifts    []Shift
	EfficiencyFactor   float64
	CapabilityFlags    map[string]bool // e.g. "fourthAxis", "liveTooling", "barFeeder"
}

// AvailableForShift reports whether the machine may be scheduled on s.
func (m Machine) AvailableForShift(s Shift) bool {
	for _, avail := range m.AvailableShifts {
		if avail == s {
			return true
		}
	}
	return false
}

// IsPlaceable reports whether the machine may receive new placements at all.
func (m Machine) IsPlaceable() bool {
	return m.Status == MachineAvailable
}

// ResourceRole gates which operation kinds a Resource (operator) may run.
type ResourceRole string

const (
	RoleOperator         ResourceRole = "Operator"
	RoleShiftLead        ResourceRole = "ShiftLead"
	RoleQualityInspector ResourceRole = "QualityInspector"
	RoleMaintenance      ResourceRole = "Maintenance"
	RoleSupervisor       ResourceRole = "Supervisor"
	RoleSetup            ResourceRole = "Setup"
)

// Resource is a human operator: identity, role, calendar eligibility, and
// qualification (work centers + skills).
type Resource struct {
	ID            ResourceID
	Role          ResourceRole
	Active        bool
	ShiftSchedule []Shift
	WorkCenters   map[string]bool // set of Machine.MachineID the operator is qualified on
	Skills        []string
}

// WorksShift reports whether the operator's base shift schedule includes s.
func (r Resource) WorksShift(s Shift) bool {
	for _, sh := range r.ShiftSchedule {
		if sh == s {
			return true
		}
	}
	return false
}

// QualifiedFor reports whether machineID is in the operator's work centers.
func (r Resource) QualifiedFor(machineID string) bool {
	return r.WorkCenters[machineID]
}

// ResourceUnavailability records a period during which one or more
// operators are partly or fully unavailable. Overlapping entries for the
// same operator are not merged; availability.WorkingWindow applies each
// one in turn.
type ResourceUnavailability struct {
	ID          UnavailID
	OperatorIDs []ResourceID
	StartDate   time.Time
	EndDate     time.Time
	Partial     bool
	StartTime   *string // "HH:MM", only meaningful when Partial
	EndTime     *string
	Shifts      []Shift
	Reason      string
	Notes       string
}

// CoversDate reports whether date (at midnight, any timezone-normalized
// instant) falls within [StartDate, EndDate] inclusive.
func (u ResourceUnavailability) CoversDate(date time.Time) bool {
	d := truncateToDate(date)
	start := truncateToDate(u.StartDate)
	end := truncateToDate(u.EndDate)
	return !d.Before(start) && !d.After(end)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CoversShift reports whether s is one of the affected shifts.
func (u ResourceUnavailability) CoversShift(s Shift) bool {
	for _, sh := range u.Shifts {
		if sh == s {
			return true
		}
	}
	return false
}

// ScheduleEntryStatus is the lifecycle state of a committed ScheduleEntry.
type ScheduleEntryStatus string

const (
	EntryScheduled  ScheduleEntryStatus = "Scheduled"
	EntryInProgress ScheduleEntryStatus = "InProgress"
	EntryComplete   ScheduleEntryStatus = "Complete"
	EntryCancelled  ScheduleEntryStatus = "Cancelled"
)

// ScheduleEntry is immutable once written. It carries handles (not owned
// references) to the Job, RoutingOperation (by sequence), Machine, and
// Resource it was placed against.
type ScheduleEntry struct {
	ID                ScheduleEntryID
	JobID             JobID
	OperationSequence int
	MachineID         uuid.UUID
	OperatorID        *ResourceID // nil for OUTSOURCE
	Start             time.Time
	End               time.Time
	Shift             Shift
	Status            ScheduleEntryStatus
}

// DurationMinutes returns end-start in minutes.
func (e ScheduleEntry) DurationMinutes() float64 {
	return e.End.Sub(e.Start).Minutes()
}

// Overlaps reports whether e and other occupy any common instant.
func (e ScheduleEntry) Overlaps(other ScheduleEntry) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}
