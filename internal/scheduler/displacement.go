package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/capacity"
	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/placement"
	"github.com/cnc-scheduling/engine/internal/substitution"
)

// tryDisplacement implements spec §4.9's bounded displacement rule: only
// for Critical/High jobs, only one contiguous victim set (every entry
// belonging to a single lower-priority job on one candidate machine, no
// cascading across jobs), and only committed by the caller once the
// retried placement actually succeeds.
func (s *Scheduler) tryDisplacement(
	ctx context.Context,
	job *entity.Job,
	op entity.RoutingOperation,
	fleet []entity.Machine,
	roster []entity.Resource,
	unavail map[entity.ResourceID][]entity.ResourceUnavailability,
	tracker *capacity.Tracker,
	boundary time.Time,
	buffer []*entity.ScheduleEntry,
) ([]*entity.ScheduleEntry, []uuid.UUID, *placement.Result, error) {
	if job.Priority != entity.PriorityCritical && job.Priority != entity.PriorityHigh {
		return nil, nil, nil, entity.ErrCapacityExhausted
	}

	candidates := substitution.Resolve(op, fleet)
	if candidates.Empty() {
		return nil, nil, nil, entity.ErrNoCandidateMachine
	}

	for _, machine := range candidates.Machines {
		existing, err := s.db.ScheduleEntryRepository().ListByMachine(ctx, machine.ID)
		if err != nil {
			continue
		}

		victims, victimJobID, ok := s.worstPriorityVictims(ctx, job.Priority, existing)
		if !ok {
			continue
		}

		exclude := make(map[uuid.UUID]bool, len(victims))
		for _, v := range victims {
			exclude[v.ID] = true
		}
		scheduleFn := machineScheduleFunc(ctx, s.db, buffer, exclude)

		machineID := machine.ID
		result, err := placement.Place(placement.Input{
			Operation:         op,
			SearchFrom:        boundary,
			Fleet:             []entity.Machine{machine},
			Roster:            roster,
			UnavailByOperator: unavail,
			MachineSchedule:   scheduleFn,
			Capacity:          tracker,
			LockedMachine:     &machineID,
		})
		if err != nil {
			continue
		}

		return victims, []uuid.UUID{victimJobID}, result, nil
	}

	return nil, nil, nil, entity.ErrCapacityExhausted
}

// worstPriorityVictims groups existing entries by job and returns every
// entry belonging to the single lowest-priority job present, provided
// incomingPriority strictly outranks it. Returns ok=false if no job on
// the machine is outranked by incomingPriority.
func (s *Scheduler) worstPriorityVictims(ctx context.Context, incomingPriority entity.JobPriority, existing []*entity.ScheduleEntry) ([]*entity.ScheduleEntry, uuid.UUID, bool) {
	byJob := map[uuid.UUID][]*entity.ScheduleEntry{}
	for _, e := range existing {
		byJob[e.JobID] = append(byJob[e.JobID], e)
	}

	var worstJobID uuid.UUID
	var worstPriority entity.JobPriority
	found := false

	for jobID := range byJob {
		candidateJob, err := s.db.JobRepository().GetByID(ctx, jobID)
		if err != nil {
			continue
		}
		if !incomingPriority.Higher(candidateJob.Priority) {
			continue
		}
		if !found || worstPriority.Higher(candidateJob.Priority) {
			worstJobID = jobID
			worstPriority = candidateJob.Priority
			found = true
		}
	}

	if !found {
		return nil, uuid.Nil, false
	}
	return byJob[worstJobID], worstJobID, true
}
