package placement

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnc-scheduling/engine/internal/capacity"
	"github.com/cnc-scheduling/engine/internal/entity"
)

func emptySchedule(uuid.UUID) []entity.ScheduleEntry { return nil }

func baseMachine() entity.Machine {
	return entity.Machine{
		ID: uuid.New(), MachineID: "MILL-01", Type: entity.MachineTypeMill,
		Status: entity.MachineAvailable, AvailableShifts: []entity.Shift{entity.Shift1, entity.Shift2},
		EfficiencyFactor: 1,
	}
}

func baseOperator(workCenter string) entity.Resource {
	return entity.Resource{
		ID: uuid.New(), Role: entity.RoleOperator, Active: true,
		ShiftSchedule: []entity.Shift{entity.Shift1, entity.Shift2},
		WorkCenters:   map[string]bool{workCenter: true},
	}
}

func newTracker() *capacity.Tracker {
	return capacity.NewTracker(entity.Now(), nil, nil)
}

func TestPlaceHappyPathSingleChunk(t *testing.T) {
	machine := baseMachine()
	operator := baseOperator("MILL-01")

	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 4}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           []entity.Machine{machine},
		Roster:          []entity.Resource{operator},
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	result, err := Place(in)
	require.NoError(t, err)
	require.NotEmpty(t, result.Entries)

	var total float64
	for _, e := range result.Entries {
		total += e.DurationMinutes()
		assert.Equal(t, machine.ID, e.MachineID)
		require.NotNil(t, e.OperatorID)
		assert.Equal(t, operator.ID, *e.OperatorID)
	}
	assert.InDelta(t, op.TotalMinutes(), total, 0.01)
	assert.Equal(t, machine.ID, result.LockedMachine)
	require.NotNil(t, result.LockedOperator)
	assert.Equal(t, operator.ID, *result.LockedOperator)
}

func TestPlaceLocksOperatorAcrossMultipleChunks(t *testing.T) {
	machine := baseMachine()
	operator := baseOperator("MILL-01")

	// 30 hours exceeds a single 12-hour shift window, forcing multiple chunks.
	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 30}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           []entity.Machine{machine},
		Roster:          []entity.Resource{operator},
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	result, err := Place(in)
	require.NoError(t, err)
	require.Greater(t, len(result.Entries), 1)

	for _, e := range result.Entries {
		require.NotNil(t, e.OperatorID)
		assert.Equal(t, operator.ID, *e.OperatorID)
		assert.Equal(t, machine.ID, e.MachineID)
	}
}

func TestPlaceNoCandidateMachine(t *testing.T) {
	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           nil,
		Roster:          nil,
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	_, err := Place(in)
	assert.True(t, errors.Is(err, entity.ErrNoCandidateMachine))
}

func TestPlaceNoQualifiedOperator(t *testing.T) {
	machine := baseMachine()
	unqualified := baseOperator("LATHE-02")

	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           []entity.Machine{machine},
		Roster:          []entity.Resource{unqualified},
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	_, err := Place(in)
	assert.True(t, errors.Is(err, entity.ErrNoQualifiedOperator))
}

func TestPlaceOutsourceNoOperatorAssigned(t *testing.T) {
	machine := entity.Machine{ID: uuid.New(), MachineID: "VENDOR-1", Type: entity.MachineTypeOutsource, Status: entity.MachineAvailable}

	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeOutsource, EstimatedHours: 8}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           []entity.Machine{machine},
		Roster:          nil,
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	result, err := Place(in)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Nil(t, result.Entries[0].OperatorID)
	assert.Equal(t, entity.Shift1, result.Entries[0].Shift)
}

func TestPlaceRespectsEarliestStartDate(t *testing.T) {
	machine := baseMachine()
	operator := baseOperator("MILL-01")

	future := entity.Now().AddDate(0, 0, 60)
	op := entity.RoutingOperation{Sequence: 1, MachineType: entity.MachineTypeMill, EstimatedHours: 1, EarliestStartDate: &future}

	in := Input{
		Operation:       op,
		SearchFrom:      entity.Now(),
		Fleet:           []entity.Machine{machine},
		Roster:          []entity.Resource{operator},
		MachineSchedule: emptySchedule,
		Capacity:        newTracker(),
	}

	result, err := Place(in)
	require.NoError(t, err)
	require.NotEmpty(t, result.Entries)
	assert.True(t, result.Entries[0].Start.After(future.AddDate(0, 0, -1)))
}
