package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/repository"
)

// TestJobRepositoryCreateAndGet validates job creation and retrieval by id
// and job number.
func TestJobRepositoryCreateAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	job := &entity.Job{
		JobNumber: "J-1042",
		DueDate:   time.Now().AddDate(0, 0, 7),
		Priority:  entity.PriorityHigh,
		Status:    entity.JobUnscheduled,
		CreatedAt: entity.Now(),
	}

	err := store.JobRepository().Create(ctx, job)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)

	byID, err := store.JobRepository().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "J-1042", byID.JobNumber)

	byNumber, err := store.JobRepository().GetByJobNumber(ctx, "J-1042")
	require.NoError(t, err)
	assert.Equal(t, job.ID, byNumber.ID)
}

// TestJobRepositoryGetByIDNotFound validates the NotFoundError contract.
func TestJobRepositoryGetByIDNotFound(t *testing.T) {
	store := New()
	_, err := store.JobRepository().GetByID(context.Background(), uuid.New())

	assert.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
}

// TestJobRepositoryUpdateStatus validates the Unscheduled -> Scheduled
// transition the Scheduler Service drives on a successful commit.
func TestJobRepositoryUpdateStatus(t *testing.T) {
	store := New()
	ctx := context.Background()

	job := &entity.Job{JobNumber: "J-2000", Status: entity.JobUnscheduled, CreatedAt: entity.Now()}
	require.NoError(t, store.JobRepository().Create(ctx, job))

	require.NoError(t, store.JobRepository().UpdateStatus(ctx, job.ID, entity.JobScheduled))

	got, err := store.JobRepository().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobScheduled, got.Status)
}

// TestUnavailabilityRepositoryBumpsVersion validates that the store's
// monotonic version counter advances on unavailability writes (spec.md §5).
func TestUnavailabilityRepositoryBumpsVersion(t *testing.T) {
	store := New()
	ctx := context.Background()

	before, err := store.Version(ctx)
	require.NoError(t, err)

	u := &entity.ResourceUnavailability{
		OperatorIDs: []uuid.UUID{uuid.New()},
		StartDate:   entity.Now(),
		EndDate:     entity.Now().AddDate(0, 0, 1),
		Shifts:      []entity.Shift{entity.Shift1},
	}
	require.NoError(t, store.UnavailabilityRepository().Create(ctx, u))

	after, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	require.NoError(t, store.UnavailabilityRepository().Delete(ctx, u.ID))

	afterDelete, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Greater(t, afterDelete, after)
}

// TestScheduleEntryRepositoryAppendAndDeleteByJob validates the
// append/delete-by-job cycle behind unscheduleJob.
func TestScheduleEntryRepositoryAppendAndDeleteByJob(t *testing.T) {
	store := New()
	ctx := context.Background()

	jobID := uuid.New()
	machineID := uuid.New()
	start := entity.Now()

	entries := []*entity.ScheduleEntry{
		{JobID: jobID, OperationSequence: 1, MachineID: machineID, Start: start, End: start.Add(4 * time.Hour), Shift: entity.Shift1, Status: entity.EntryScheduled},
	}
	require.NoError(t, store.ScheduleEntryRepository().AppendBatch(ctx, entries))

	byJob, err := store.ScheduleEntryRepository().ListByJob(ctx, jobID)
	require.NoError(t, err)
	assert.Len(t, byJob, 1)

	require.NoError(t, store.ScheduleEntryRepository().DeleteByJob(ctx, jobID))

	byJob, err = store.ScheduleEntryRepository().ListByJob(ctx, jobID)
	require.NoError(t, err)
	assert.Empty(t, byJob)
}

// TestMachineRepositoryListBySubstitutionGroup validates the substitution
// group filter the Machine Substitution Resolver depends on.
func TestMachineRepositoryListBySubstitutionGroup(t *testing.T) {
	store := New()
	ctx := context.Background()

	fourAxis := &entity.Machine{MachineID: "HMC-05", Type: entity.MachineTypeMill, SubstitutionGroups: []string{"4-axis", "3-axis"}, Status: entity.MachineAvailable}
	threeAxis := &entity.Machine{MachineID: "MILL-01", Type: entity.MachineTypeMill, SubstitutionGroups: []string{"3-axis"}, Status: entity.MachineAvailable}

	require.NoError(t, store.MachineRepository().Create(ctx, fourAxis))
	require.NoError(t, store.MachineRepository().Create(ctx, threeAxis))

	threeAxisGroup, err := store.MachineRepository().ListBySubstitutionGroup(ctx, "3-axis")
	require.NoError(t, err)
	assert.Len(t, threeAxisGroup, 2)

	fourAxisGroup, err := store.MachineRepository().ListBySubstitutionGroup(ctx, "4-axis")
	require.NoError(t, err)
	assert.Len(t, fourAxisGroup, 1)
	assert.Equal(t, "HMC-05", fourAxisGroup[0].MachineID)
}
