// Package scheduler orchestrates per-job and batch placement: it is the
// only component that appends or deletes ScheduleEntries, and the only
// one that mutates Job.Status.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/capacity"
	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/placement"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// perJobTimeout is the wall-clock ceiling a placement pass has for one
// job (spec §5).
const perJobTimeout = 30 * time.Second

// maxStaleRetries is how many times a pass is retried against a fresh
// snapshot before surfacing entity.ErrStaleSnapshot (spec §5).
const maxStaleRetries = 3

// errStaleSnapshot is an internal retry signal; ScheduleJob translates it
// to entity.ErrStaleSnapshot once retries are exhausted.
var errStaleSnapshot = errors.New("scheduler: snapshot changed during pass")

// Scheduler serializes scheduling passes behind a single mutex (spec §5:
// "a single logical worker per process").
type Scheduler struct {
	mu sync.Mutex
	db repository.Database
}

// New builds a Scheduler against a backing Database.
func New(db repository.Database) *Scheduler {
	return &Scheduler{db: db}
}

// JobFailure pairs a job with the error that kept it Unscheduled, for
// BatchResult reporting.
type JobFailure struct {
	JobID uuid.UUID
	Err   error
}

// BatchResult is the outcome of ScheduleAll.
type BatchResult struct {
	Scheduled []uuid.UUID
	Failed    []JobFailure
}

// ScheduleJob runs a full placement pass for jobID: load routing, place
// every operation in sequence, commit atomically. Retries up to
// maxStaleRetries times if the monotonic version counter moved during
// the pass (spec §5); each attempt is bounded by perJobTimeout.
func (s *Scheduler) ScheduleJob(ctx context.Context, jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt <= maxStaleRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, perJobTimeout)
		err := s.scheduleJobOnce(attemptCtx, jobID)
		cancel()

		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return entity.ErrTimeoutExceeded
		}
		if !errors.Is(err, errStaleSnapshot) {
			return err
		}
	}
	return entity.ErrStaleSnapshot
}

// ScheduleAll schedules every Unscheduled job, ordered by priority
// (Critical > High > Normal > Low), then due date ascending, then job
// number lexicographically (spec §4.8). A failure on one job does not
// roll back previously committed jobs.
func (s *Scheduler) ScheduleAll(ctx context.Context) (*BatchResult, error) {
	jobs, err := s.db.JobRepository().ListUnscheduled(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if a.Priority != b.Priority {
			return a.Priority.Higher(b.Priority)
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.JobNumber < b.JobNumber
	})

	result := &BatchResult{}
	for _, job := range jobs {
		if err := s.ScheduleJob(ctx, job.ID); err != nil {
			result.Failed = append(result.Failed, JobFailure{JobID: job.ID, Err: err})
			continue
		}
		result.Scheduled = append(result.Scheduled, job.ID)
	}
	return result, nil
}

// scheduleJobOnce runs one placement pass for jobID and commits it, or
// returns errStaleSnapshot if the version counter moved underneath it.
func (s *Scheduler) scheduleJobOnce(ctx context.Context, jobID uuid.UUID) error {
	versionAtStart, err := s.db.Version(ctx)
	if err != nil {
		return err
	}

	job, err := s.db.JobRepository().GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	ops, err := s.db.RoutingOperationRepository().ListByJob(ctx, jobID)
	if err != nil {
		return err
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Sequence < ops[j].Sequence })

	plainOps := make([]entity.RoutingOperation, len(ops))
	for i, op := range ops {
		plainOps[i] = *op
	}
	if err := entity.ValidateRoutingSequence(plainOps); err != nil {
		return err
	}
	for _, op := range plainOps {
		if err := entity.ValidateRoutingOperation(op); err != nil {
			return err
		}
	}

	fleet, roster, unavail, tracker, err := s.loadSnapshot(ctx)
	if err != nil {
		return err
	}

	boundary := calendar.NextBusinessDayShift1Open(entity.Now())
	var buffer []*entity.ScheduleEntry
	var victims []*entity.ScheduleEntry
	var victimJobs []uuid.UUID

	for _, op := range plainOps {
		if err := ctx.Err(); err != nil {
			return err
		}
		scheduleFn := machineScheduleFunc(ctx, s.db, buffer, nil)
		result, placeErr := placement.Place(placement.Input{
			Operation:         op,
			SearchFrom:        boundary,
			Fleet:             fleet,
			Roster:            roster,
			UnavailByOperator: unavail,
			MachineSchedule:   scheduleFn,
			Capacity:          tracker,
		})

		if placeErr != nil {
			displaced, displacedJobs, dResult, dErr := s.tryDisplacement(ctx, job, op, fleet, roster, unavail, tracker, boundary, buffer)
			if dErr != nil {
				return &entity.UnplaceableError{JobID: jobID, OpSequence: op.Sequence, Cause: placeErr}
			}
			result = dResult
			victims = append(victims, displaced...)
			victimJobs = append(victimJobs, displacedJobs...)
		}

		buffer = append(buffer, result.Entries...)
		boundary = result.Entries[len(result.Entries)-1].End
	}

	versionNow, err := s.db.Version(ctx)
	if err != nil {
		return err
	}
	if versionNow != versionAtStart {
		return errStaleSnapshot
	}

	return s.commit(ctx, jobID, buffer, victims, victimJobs)
}

// commit atomically appends buffer, marks jobID Scheduled, deletes any
// displacement victims, and reverts their parent jobs to Unscheduled —
// all in one transaction (spec §4.9).
func (s *Scheduler) commit(ctx context.Context, jobID uuid.UUID, buffer, victims []*entity.ScheduleEntry, victimJobs []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}

	if len(victims) > 0 {
		victimIDs := make([]uuid.UUID, len(victims))
		for i, v := range victims {
			victimIDs[i] = v.ID
		}
		if err := tx.ScheduleEntryRepository().DeleteByIDs(ctx, victimIDs); err != nil {
			tx.Rollback()
			return err
		}
		for _, vJobID := range uniqueIDs(victimJobs) {
			if err := tx.JobRepository().UpdateStatus(ctx, vJobID, entity.JobUnscheduled); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := tx.ScheduleEntryRepository().AppendBatch(ctx, buffer); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.JobRepository().UpdateStatus(ctx, jobID, entity.JobScheduled); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// loadSnapshot takes the consistent read-only view a pass operates
// against: active roster, available fleet, unavailability per operator
// for the lookahead window, and a fresh capacity Tracker (spec §5).
func (s *Scheduler) loadSnapshot(ctx context.Context) ([]entity.Machine, []entity.Resource, map[entity.ResourceID][]entity.ResourceUnavailability, *capacity.Tracker, error) {
	machinePtrs, err := s.db.MachineRepository().ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	fleet := make([]entity.Machine, len(machinePtrs))
	for i, m := range machinePtrs {
		fleet[i] = *m
	}

	resourcePtrs, err := s.db.ResourceRepository().ListActive(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	roster := make([]entity.Resource, len(resourcePtrs))
	for i, r := range resourcePtrs {
		roster[i] = *r
	}

	now := entity.Now()
	lookahead := now.AddDate(0, 3, 0)
	unavail := make(map[entity.ResourceID][]entity.ResourceUnavailability, len(roster))
	for _, r := range roster {
		records, err := s.db.UnavailabilityRepository().ListForOperator(ctx, r.ID, now, lookahead)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		plain := make([]entity.ResourceUnavailability, len(records))
		for i, rec := range records {
			plain[i] = *rec
		}
		unavail[r.ID] = plain
	}

	weekEntries, err := s.entriesThisWeek(ctx, now)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tracker := capacity.NewTracker(now, roster, weekEntries)

	return fleet, roster, unavail, tracker, nil
}

func (s *Scheduler) entriesThisWeek(ctx context.Context, now time.Time) ([]*entity.ScheduleEntry, error) {
	weekStart := calendar.WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	return s.db.ScheduleEntryRepository().ListOverlapping(ctx, weekStart, weekEnd)
}

// machineScheduleFunc returns the placement.Input.MachineSchedule closure:
// committed entries for the machine, plus any chunks this same pass has
// already buffered (read-your-writes, spec §5), minus any entries marked
// as displaced.
func machineScheduleFunc(ctx context.Context, db repository.Database, buffer []*entity.ScheduleEntry, exclude map[uuid.UUID]bool) func(uuid.UUID) []entity.ScheduleEntry {
	return func(machineID uuid.UUID) []entity.ScheduleEntry {
		existing, err := db.ScheduleEntryRepository().ListByMachine(ctx, machineID)
		if err != nil {
			return nil
		}
		var combined []entity.ScheduleEntry
		for _, e := range existing {
			if exclude != nil && exclude[e.ID] {
				continue
			}
			combined = append(combined, *e)
		}
		for _, e := range buffer {
			if e.MachineID == machineID {
				combined = append(combined, *e)
			}
		}
		return combined
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
