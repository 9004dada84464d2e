// Package job wraps Asynq for the engine's two genuinely asynchronous
// operations: placing a single job and sweeping every Unscheduled job,
// for callers that don't want to block an HTTP request on a placement
// pass.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types.
const (
	TypeScheduleJob = "schedule:job"
	TypeScheduleAll = "schedule:all"
)

// Scheduler enqueues scheduling work onto Asynq.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler connects a Scheduler to the Redis instance backing Asynq.
func NewScheduler(redisAddr string) (*Scheduler, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})

	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Scheduler{client: client}, nil
}

// ScheduleJobPayload is the payload for TypeScheduleJob.
type ScheduleJobPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// EnqueueScheduleJob enqueues a single-job placement pass.
func (s *Scheduler) EnqueueScheduleJob(ctx context.Context, jobID uuid.UUID) (*asynq.TaskInfo, error) {
	payloadBytes, err := json.Marshal(ScheduleJobPayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeScheduleJob, payloadBytes)

	info, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(perJobTaskTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue schedule:job task: %w", err)
	}

	return info, nil
}

// perJobTaskTimeout bounds one queued ScheduleJob execution; generous
// relative to the Scheduler Service's own 30s per-attempt ceiling to leave
// room for its internal stale-snapshot retries.
const perJobTaskTimeout = 2 * time.Minute

// EnqueueScheduleAll enqueues a full batch-placement sweep — the
// out-of-scope "nightly re-placement pass after CSV import" trigger
// spec.md §1 names as an external collaborator.
func (s *Scheduler) EnqueueScheduleAll(ctx context.Context) (*asynq.TaskInfo, error) {
	task := asynq.NewTask(TypeScheduleAll, nil)

	info, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(1), asynq.Timeout(scheduleAllTaskTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue schedule:all task: %w", err)
	}

	return info, nil
}

// scheduleAllTaskTimeout bounds a full sweep; a shop floor's Unscheduled
// backlog is bounded in practice, but a full sweep can still run long
// since every job gets its own per-job ceiling.
const scheduleAllTaskTimeout = 30 * time.Minute

// Close releases the underlying Asynq client.
func (s *Scheduler) Close() error {
	return s.client.Close()
}
