package scheduler

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository/memory"
)

// TestScenarioInspectionAfterProduction seeds routing [MILL 2h, INSPECT
// 0.5h] with exactly one QualityInspector qualified on the inspection
// machine: the MILL entry goes to the Operator, the INSPECT entry goes to
// the inspector, and starts at or after the MILL operation ends.
func TestScenarioInspectionAfterProduction(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	mill := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	inspectMachine := seedMachine(t, store, "INSPECT-01", entity.MachineTypeInspect)
	seedOperator(t, store, mill.MachineID)

	lindsay := &entity.Resource{
		ID: uuid.New(), Role: entity.RoleQualityInspector, Active: true,
		ShiftSchedule: []entity.Shift{entity.Shift1, entity.Shift2},
		WorkCenters:   map[string]bool{inspectMachine.MachineID: true},
	}
	require.NoError(t, store.ResourceRepository().Create(ctx, lindsay))

	job := seedJob(t, store, "J-8000", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2},
		entity.RoutingOperation{Sequence: 2, MachineType: entity.MachineTypeInspect, EstimatedHours: 0.5},
	)

	s := New(store)
	require.NoError(t, s.ScheduleJob(ctx, job.ID))

	entries, err := store.ScheduleEntryRepository().ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var millEntry, inspectEntry *entity.ScheduleEntry
	for _, e := range entries {
		if e.OperationSequence == 1 {
			millEntry = e
		} else {
			inspectEntry = e
		}
	}
	require.NotNil(t, millEntry)
	require.NotNil(t, inspectEntry)

	require.NotNil(t, inspectEntry.OperatorID)
	assert.Equal(t, lindsay.ID, *inspectEntry.OperatorID)
	assert.False(t, inspectEntry.Start.Before(millEntry.End),
		"inspection must not start before production ends")

	updated, err := store.JobRepository().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobScheduled, updated.Status)
}

// TestScenarioOutsourceOperation seeds routing [MILL 2h, OUTSOURCE 40h]:
// the OUTSOURCE entries carry no operator and their total duration is 40
// working hours following the MILL operation's end.
func TestScenarioOutsourceOperation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	mill := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	seedOperator(t, store, mill.MachineID)
	seedMachine(t, store, "OUT-01", entity.MachineTypeOutsource)

	job := seedJob(t, store, "J-8001", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2},
		entity.RoutingOperation{Sequence: 2, MachineType: entity.MachineTypeOutsource, EstimatedHours: 40},
	)

	s := New(store)
	require.NoError(t, s.ScheduleJob(ctx, job.ID))

	entries, err := store.ScheduleEntryRepository().ListByJob(ctx, job.ID)
	require.NoError(t, err)

	var millEntry *entity.ScheduleEntry
	var outsourceEntries []*entity.ScheduleEntry
	for _, e := range entries {
		if e.OperationSequence == 1 {
			millEntry = e
		} else {
			outsourceEntries = append(outsourceEntries, e)
		}
	}
	require.NotNil(t, millEntry)
	require.NotEmpty(t, outsourceEntries)

	var totalMinutes float64
	earliestStart := outsourceEntries[0].Start
	for _, e := range outsourceEntries {
		assert.Nil(t, e.OperatorID, "OUTSOURCE entries must carry no operator")
		totalMinutes += e.DurationMinutes()
		if e.Start.Before(earliestStart) {
			earliestStart = e.Start
		}
	}
	assert.InDelta(t, 40*60.0, totalMinutes, 1.0)
	assert.False(t, earliestStart.Before(millEntry.End),
		"outsource work must not start before the prior operation ends")
}

// TestScenarioUnavailabilityInvalidatesAffectedJobsOnly marks an operator
// unavailable for the shift two jobs were scheduled against on the same
// machine: both revert to Unscheduled with their entries removed, while a
// third job scheduled against a different operator on the same shift is
// untouched.
func TestScenarioUnavailabilityInvalidatesAffectedJobsOnly(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	vmc := seedMachine(t, store, "VMC-01", entity.MachineTypeMill)
	otherMill := seedMachine(t, store, "MILL-02", entity.MachineTypeMill)
	mike := seedOperator(t, store, vmc.MachineID)
	pat := seedOperator(t, store, otherMill.MachineID)

	jobA := seedJob(t, store, "J-9000", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2})
	jobB := seedJob(t, store, "J-9001", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2})
	jobC := seedJob(t, store, "J-9002", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2})

	s := New(store)
	require.NoError(t, s.ScheduleJob(ctx, jobA.ID))
	require.NoError(t, s.ScheduleJob(ctx, jobB.ID))
	require.NoError(t, s.ScheduleJob(ctx, jobC.ID))

	aEntries, err := store.ScheduleEntryRepository().ListByJob(ctx, jobA.ID)
	require.NoError(t, err)
	require.NotEmpty(t, aEntries)

	u := &entity.ResourceUnavailability{
		ID:          uuid.New(),
		OperatorIDs: []uuid.UUID{mike.ID},
		StartDate:   aEntries[0].Start,
		EndDate:     aEntries[0].Start,
		Shifts:      []entity.Shift{aEntries[0].Shift},
	}
	require.NoError(t, store.UnavailabilityRepository().Create(ctx, u))

	affected, err := s.InvalidateForUnavailability(ctx, u)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{jobA.ID, jobB.ID}, affected)

	updatedA, err := store.JobRepository().GetByID(ctx, jobA.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobUnscheduled, updatedA.Status)
	remainingA, err := store.ScheduleEntryRepository().ListByJob(ctx, jobA.ID)
	require.NoError(t, err)
	assert.Empty(t, remainingA)

	updatedB, err := store.JobRepository().GetByID(ctx, jobB.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobUnscheduled, updatedB.Status)

	updatedC, err := store.JobRepository().GetByID(ctx, jobC.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobScheduled, updatedC.Status)
	_ = pat
}

// TestScenarioMultiDayBridge seeds a single 25.5-hour HMC operation: it must
// span three consecutive working shifts on one locked machine and operator,
// and its committed entries must conserve the full 25.5 hours.
func TestScenarioMultiDayBridge(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	hmc := seedMachine(t, store, "HMC-01", entity.MachineTypeMill)
	operator := seedOperator(t, store, hmc.MachineID)

	job := seedJob(t, store, "J-8100", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 25.5})

	s := New(store)
	require.NoError(t, s.ScheduleJob(ctx, job.ID))

	entries, err := store.ScheduleEntryRepository().ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Greater(t, len(entries), 1, "a 25.5h bridge must span more than one shift")

	sort.Slice(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	var totalMinutes float64
	distinctDays := map[string]bool{}
	for i, e := range entries {
		assert.Equal(t, hmc.ID, e.MachineID, "bridge entry %d on the wrong machine", i)
		require.NotNil(t, e.OperatorID)
		assert.Equal(t, operator.ID, *e.OperatorID, "bridge entry %d assigned to the wrong operator", i)
		totalMinutes += e.DurationMinutes()
		distinctDays[e.Start.In(calendar.Location).Format("2006-01-02")] = true
		if i > 0 {
			assert.False(t, e.Start.Before(entries[i-1].End), "bridge entries overlap or run out of order")
		}
	}
	assert.InDelta(t, 25.5*60.0, totalMinutes, 1.0)
	assert.Greater(t, len(distinctDays), 1, "a 25.5h bridge must land on more than one calendar day")
}

// TestScenarioWeekendSkip seeds an operation long enough (120 working hours,
// more than one business week's capacity) that it is guaranteed to run
// through at least one Thursday-to-Monday boundary: the entries either side
// of that boundary must be separated by the full weekend gap rather than
// landing on Friday, Saturday, or Sunday.
func TestScenarioWeekendSkip(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	machine := seedMachine(t, store, "MILL-09", entity.MachineTypeMill)
	seedOperator(t, store, machine.MachineID)

	job := seedJob(t, store, "J-8200", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 120})

	s := New(store)
	require.NoError(t, s.ScheduleJob(ctx, job.ID))

	entries, err := store.ScheduleEntryRepository().ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	for _, e := range entries {
		assert.True(t, calendar.IsWorkingDay(e.Start), "entry %v starts on a non-working day", e.Start)
	}

	var sawWeekendSkip bool
	for i := 1; i < len(entries); i++ {
		gap := entries[i].Start.Sub(entries[i-1].End)
		if gap >= 70*time.Hour {
			sawWeekendSkip = true
			assert.Equal(t, entity.Shift2, entries[i-1].Shift, "the entry before a weekend gap must be Shift 2")
			assert.Equal(t, time.Thursday, entries[i-1].Start.In(calendar.Location).Weekday(),
				"the entry before a weekend gap must fall on Thursday")
			assert.Equal(t, entity.Shift1, entries[i].Shift, "the entry after a weekend gap must be Shift 1")
			assert.Equal(t, time.Monday, entries[i].Start.In(calendar.Location).Weekday(),
				"the entry after a weekend gap must fall on Monday")
		} else {
			assert.False(t, gap > 0, "unexplained gap %v between bridge entries", gap)
		}
	}
	assert.True(t, sawWeekendSkip, "120 working hours must cross at least one weekend")
}
