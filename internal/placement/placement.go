// Package placement implements the first-fit search that turns one
// RoutingOperation into one or more ScheduleEntries. It is the core of
// the scheduling engine; everything else supplies or consumes its inputs
// and outputs.
package placement

import (
	"time"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/availability"
	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/capacity"
	"github.com/cnc-scheduling/engine/internal/compatibility"
	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/substitution"
)

// searchHorizon bounds how long the search loop may go without emitting a
// single chunk before giving up (spec §4.7).
const searchHorizon = 30 * 24 * time.Hour

// Input is everything the search loop needs. Fleet, Roster, and
// UnavailByOperator are read-only snapshots taken by the caller at pass
// start (spec §5); MachineSchedule is called fresh per candidate machine
// and returns whatever the caller supplies for it (the scheduler passes
// committed entries plus chunks buffered for earlier operations of the
// pass). Chunks produced by this same call are not in it; the search
// cursor moves past each one instead.
type Input struct {
	Operation         entity.RoutingOperation
	SearchFrom        time.Time
	Now               time.Time // defaults to entity.Now() if zero
	Fleet             []entity.Machine
	Roster            []entity.Resource
	UnavailByOperator map[entity.ResourceID][]entity.ResourceUnavailability
	MachineSchedule   func(machineID uuid.UUID) []entity.ScheduleEntry
	Capacity          *capacity.Tracker
	LockedMachine     *uuid.UUID
	LockedOperator    *entity.ResourceID
}

// Result is the outcome of a successful Place call.
type Result struct {
	Entries        []*entity.ScheduleEntry
	LockedMachine  uuid.UUID
	LockedOperator *entity.ResourceID // nil for OUTSOURCE
}

// Place runs the search loop described in spec §4.7 for one operation,
// returning every chunk needed to cover its total minutes, or one of the
// tagged errors in entity.errors.go, returned unwrapped; the scheduler wraps
// them in entity.UnplaceableError to name the failing operation.
func Place(in Input) (*Result, error) {
	now := in.Now
	if now.IsZero() {
		now = entity.Now()
	}

	floor := timeFloor(in, now)

	if in.Operation.MachineType == entity.MachineTypeOutsource {
		return placeOutsource(in, floor)
	}

	remaining := in.Operation.TotalMinutes()
	cursor := floor
	emptyStreakStart := cursor

	var entries []*entity.ScheduleEntry
	lockedMachine := in.LockedMachine
	lockedOperator := in.LockedOperator
	sawGapWithNoOperator := false

	for remaining > 0 {
		candidates, err := candidateMachines(in, lockedMachine)
		if err != nil {
			return nil, err
		}

		cursor = calendar.NextWorkingInstant(cursor)
		chunkEmitted := false

		for _, machine := range candidates {
			entry, newCursor, gotGap, gotOperator := tryMachine(in, machine, cursor, remaining, lockedOperator, in.Capacity.OptimalShift())
			if entry == nil {
				if gotGap && !gotOperator {
					sawGapWithNoOperator = true
				}
				continue
			}

			entries = append(entries, entry)
			remaining -= entry.DurationMinutes()
			in.Capacity.AddEntries([]*entity.ScheduleEntry{entry})
			cursor = newCursor
			emptyStreakStart = cursor
			chunkEmitted = true

			if lockedMachine == nil {
				id := machine.ID
				lockedMachine = &id
			}
			if lockedOperator == nil && entry.OperatorID != nil {
				id := *entry.OperatorID
				lockedOperator = &id
			}
			break
		}

		if !chunkEmitted {
			cursor = calendar.NextShiftBoundary(cursor)
			if cursor.Sub(emptyStreakStart) > searchHorizon {
				if sawGapWithNoOperator {
					return nil, entity.ErrNoQualifiedOperator
				}
				return nil, entity.ErrCapacityExhausted
			}
		}
	}

	result := &Result{Entries: entries, LockedOperator: lockedOperator}
	if lockedMachine != nil {
		result.LockedMachine = *lockedMachine
	}
	return result, nil
}

// timeFloor implements spec §4.7's earliestStart = max(searchFrom,
// operation.earliestStartDate, now + 1 business day).
func timeFloor(in Input, now time.Time) time.Time {
	floor := in.SearchFrom
	if in.Operation.EarliestStartDate != nil && in.Operation.EarliestStartDate.After(floor) {
		floor = *in.Operation.EarliestStartDate
	}
	businessFloor := calendar.NextBusinessDayShift1Open(now)
	if businessFloor.After(floor) {
		floor = businessFloor
	}
	return floor
}

func candidateMachines(in Input, lockedMachine *uuid.UUID) ([]entity.Machine, error) {
	if lockedMachine != nil {
		for _, m := range in.Fleet {
			if m.ID == *lockedMachine {
				return []entity.Machine{m}, nil
			}
		}
		return nil, entity.ErrNoCandidateMachine
	}
	set := substitution.Resolve(in.Operation, in.Fleet)
	if set.Empty() {
		return nil, entity.ErrNoCandidateMachine
	}
	return set.Machines, nil
}

// tryMachine attempts to emit one chunk against machine starting at or
// after cursor. It returns gotGap/gotOperator so the caller can
// distinguish "no room at all" from "room existed but no operator
// qualified" for its eventual failure tag.
func tryMachine(in Input, machine entity.Machine, cursor time.Time, remaining float64, lockedOperator *entity.ResourceID, optimal entity.Shift) (entry *entity.ScheduleEntry, newCursor time.Time, gotGap bool, gotOperator bool) {
	schedule := in.MachineSchedule(machine.ID)
	gapStart := nextGapStart(schedule, cursor)
	gapEnd := nextEntryStartAfter(schedule, gapStart)

	for _, shift := range []entity.Shift{optimal, optimal.Other()} {
		if !machine.AvailableForShift(shift) {
			continue
		}

		shiftStart, shiftEnd := calendar.ShiftWindow(gapStart, shift)
		s := maxTime(gapStart, shiftStart)
		e := minTime(gapEnd, shiftEnd)
		if !e.After(s) {
			continue
		}
		gotGap = true

		date := gapStart
		operator, window, found := selectOperator(in, machine, date, shift, s, e, lockedOperator)
		if !found {
			continue
		}
		gotOperator = true

		actualStart := maxTime(s, window.Start)
		actualEnd := minTime(e, window.End)
		if !actualEnd.After(actualStart) {
			continue
		}
		if actualEnd.Sub(actualStart) < time.Minute {
			continue
		}

		chunkMinutes := actualEnd.Sub(actualStart).Minutes()
		if chunkMinutes > remaining {
			actualEnd = actualStart.Add(time.Duration(remaining * float64(time.Minute)))
		}

		opID := operator.ID
		entry = &entity.ScheduleEntry{
			ID:                uuid.New(),
			OperationSequence: in.Operation.Sequence,
			MachineID:         machine.ID,
			OperatorID:        &opID,
			Start:             actualStart,
			End:               actualEnd,
			Shift:             shift,
			Status:            entity.EntryScheduled,
		}
		return entry, actualEnd, gotGap, gotOperator
	}

	return nil, cursor, gotGap, gotOperator
}

func selectOperator(in Input, machine entity.Machine, date time.Time, shift entity.Shift, gapStart, gapEnd time.Time, locked *entity.ResourceID) (entity.Resource, entity.OperatorWorkingWindow, bool) {
	if locked != nil {
		for _, r := range in.Roster {
			if r.ID != *locked {
				continue
			}
			w := availability.WorkingWindow(r, date, shift, in.UnavailByOperator[r.ID])
			clipped := w.Intersect(gapStart, gapEnd)
			if clipped.Empty() {
				return entity.Resource{}, entity.OperatorWorkingWindow{}, false
			}
			return r, clipped, true
		}
		return entity.Resource{}, entity.OperatorWorkingWindow{}, false
	}

	for _, r := range in.Roster {
		if !compatibility.Eligible(r, in.Operation, machine, nil) {
			continue
		}
		w := availability.WorkingWindow(r, date, shift, in.UnavailByOperator[r.ID])
		clipped := w.Intersect(gapStart, gapEnd)
		if clipped.Empty() {
			continue
		}
		return r, clipped, true
	}
	return entity.Resource{}, entity.OperatorWorkingWindow{}, false
}

// nextGapStart pushes cursor forward past any machine schedule entry that
// already occupies it, repeating until cursor lands in open time.
func nextGapStart(schedule []entity.ScheduleEntry, cursor time.Time) time.Time {
	start := cursor
	for {
		advanced := false
		for _, e := range schedule {
			if !e.Start.After(start) && e.End.After(start) {
				start = e.End
				advanced = true
			}
		}
		if !advanced {
			return start
		}
	}
}

// nextEntryStartAfter returns the earliest entry start strictly after
// instant, or a far-future cap if the machine has nothing scheduled past
// that point (the real bound then comes from the shift window instead).
func nextEntryStartAfter(schedule []entity.ScheduleEntry, instant time.Time) time.Time {
	best := instant.AddDate(0, 0, 45)
	for _, e := range schedule {
		if e.Start.After(instant) && e.Start.Before(best) {
			best = e.Start
		}
	}
	return best
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// placeOutsource handles MachineTypeOutsource operations: no operator
// assignment, no shift ceiling, a single entry covering the full
// duration starting at the earliest working instant. Shift is set to 1
// by convention only (spec §4.7).
func placeOutsource(in Input, floor time.Time) (*Result, error) {
	set := substitution.Resolve(in.Operation, in.Fleet)
	if set.Empty() {
		return nil, entity.ErrNoCandidateMachine
	}
	machine := set.Machines[0]

	start := calendar.NextWorkingInstant(floor)
	end := advanceSkippingNonWorkingDays(start, in.Operation.TotalMinutes())

	entry := &entity.ScheduleEntry{
		ID:                uuid.New(),
		OperationSequence: in.Operation.Sequence,
		MachineID:         machine.ID,
		OperatorID:        nil,
		Start:             start,
		End:               end,
		Shift:             entity.Shift1,
		Status:            entity.EntryScheduled,
	}
	in.Capacity.AddEntries([]*entity.ScheduleEntry{entry})

	id := machine.ID
	return &Result{Entries: []*entity.ScheduleEntry{entry}, LockedMachine: id}, nil
}

// advanceSkippingNonWorkingDays adds minutes of wall-clock duration to
// start, pushing the end out by a full day for every non-working day the
// span would otherwise cross — OUTSOURCE has no shift ceiling, only the
// working-day calendar applies. Walks forward from start exactly once,
// counting each calendar day at most once: d only ever advances, and
// extending end can only lengthen the remaining walk, never revisit a day
// already passed.
func advanceSkippingNonWorkingDays(start time.Time, minutes float64) time.Time {
	end := start.Add(time.Duration(minutes * float64(time.Minute)))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if !calendar.IsWorkingDay(d) {
			end = end.AddDate(0, 0, 1)
		}
	}
	return end
}
