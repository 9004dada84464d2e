package scheduler

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository/memory"
)

func seedMachine(t *testing.T, store *memory.Store, machineID string, mtype entity.MachineType) *entity.Machine {
	t.Helper()
	m := &entity.Machine{
		ID: uuid.New(), MachineID: machineID, Type: mtype,
		Status: entity.MachineAvailable, AvailableShifts: []entity.Shift{entity.Shift1, entity.Shift2},
		EfficiencyFactor: 1,
	}
	require.NoError(t, store.MachineRepository().Create(context.Background(), m))
	return m
}

func seedOperator(t *testing.T, store *memory.Store, workCenter string) *entity.Resource {
	t.Helper()
	r := &entity.Resource{
		ID: uuid.New(), Role: entity.RoleOperator, Active: true,
		ShiftSchedule: []entity.Shift{entity.Shift1, entity.Shift2},
		WorkCenters:   map[string]bool{workCenter: true},
	}
	require.NoError(t, store.ResourceRepository().Create(context.Background(), r))
	return r
}

func seedJob(t *testing.T, store *memory.Store, jobNumber string, priority entity.JobPriority, ops ...entity.RoutingOperation) *entity.Job {
	t.Helper()
	job := &entity.Job{
		ID: uuid.New(), JobNumber: jobNumber, Priority: priority,
		Status: entity.JobUnscheduled, DueDate: entity.Now().AddDate(0, 0, 30),
	}
	require.NoError(t, store.JobRepository().Create(context.Background(), job))
	for i := range ops {
		ops[i].ID = uuid.New()
		ops[i].JobID = job.ID
		require.NoError(t, store.RoutingOperationRepository().Create(context.Background(), &ops[i]))
	}
	return job
}

func TestScheduleJobPlacesEveryOperation(t *testing.T) {
	store := memory.New()
	machine := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	seedOperator(t, store, machine.MachineID)

	job := seedJob(t, store, "J-1000", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2},
		entity.RoutingOperation{Sequence: 2, MachineType: entity.MachineTypeMill, EstimatedHours: 2},
	)

	s := New(store)
	require.NoError(t, s.ScheduleJob(context.Background(), job.ID))

	updated, err := store.JobRepository().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobScheduled, updated.Status)

	entries, err := store.ScheduleEntryRepository().ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestScheduleJobFailsWithoutCandidateMachine(t *testing.T) {
	store := memory.New()
	job := seedJob(t, store, "J-1001", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2},
	)

	s := New(store)
	err := s.ScheduleJob(context.Background(), job.ID)
	require.Error(t, err)

	updated, getErr := store.JobRepository().GetByID(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.JobUnscheduled, updated.Status)
}

func TestScheduleAllOrdersByPriority(t *testing.T) {
	store := memory.New()
	machine := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	seedOperator(t, store, machine.MachineID)

	low := seedJob(t, store, "J-2000", entity.PriorityLow,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1})
	critical := seedJob(t, store, "J-2001", entity.PriorityCritical,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1})

	s := New(store)
	result, err := s.ScheduleAll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Scheduled, 2)
	assert.Equal(t, critical.ID, result.Scheduled[0])
	assert.Equal(t, low.ID, result.Scheduled[1])
}

func TestScheduleAllReportsIndependentFailures(t *testing.T) {
	store := memory.New()
	machine := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	seedOperator(t, store, machine.MachineID)

	placeable := seedJob(t, store, "J-3000", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1})
	unplaceable := seedJob(t, store, "J-3001", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeOutsource, EstimatedHours: 1})

	s := New(store)
	result, err := s.ScheduleAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Scheduled, placeable.ID)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, unplaceable.ID, result.Failed[0].JobID)
}

func TestCriticalJobSchedulesOnMachineHeldByLowerPriority(t *testing.T) {
	store := memory.New()
	machine := seedMachine(t, store, "MILL-01", entity.MachineTypeMill)
	seedOperator(t, store, machine.MachineID)

	normal := seedJob(t, store, "J-4000", entity.PriorityNormal,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 40})

	s := New(store)
	require.NoError(t, s.ScheduleJob(context.Background(), normal.ID))

	critical := seedJob(t, store, "J-4001", entity.PriorityCritical,
		entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 2})

	err := s.ScheduleJob(context.Background(), critical.ID)
	require.NoError(t, err)

	updatedCritical, err := store.JobRepository().GetByID(context.Background(), critical.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobScheduled, updatedCritical.Status)
}
