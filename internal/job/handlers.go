package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/cnc-scheduling/engine/internal/scheduler"
)

// Handlers executes queued scheduling tasks against the Scheduler Service.
type Handlers struct {
	scheduler *scheduler.Scheduler
}

// NewHandlers builds a Handlers bound to a Scheduler Service instance.
func NewHandlers(s *scheduler.Scheduler) *Handlers {
	return &Handlers{scheduler: s}
}

// RegisterHandlers registers every task type with the Asynq mux.
func (h *Handlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeScheduleJob, h.HandleScheduleJob)
	mux.HandleFunc(TypeScheduleAll, h.HandleScheduleAll)
}

// HandleScheduleJob runs a single-job placement pass.
func (h *Handlers) HandleScheduleJob(ctx context.Context, t *asynq.Task) error {
	var payload ScheduleJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	log.Printf("scheduling job=%s", payload.JobID)

	if err := h.scheduler.ScheduleJob(ctx, payload.JobID); err != nil {
		log.Printf("job=%s failed to schedule: %v", payload.JobID, err)
		return fmt.Errorf("schedule job %s: %w", payload.JobID, err)
	}

	log.Printf("job=%s scheduled", payload.JobID)
	return nil
}

// HandleScheduleAll runs a full batch-placement sweep.
func (h *Handlers) HandleScheduleAll(ctx context.Context, t *asynq.Task) error {
	log.Printf("running schedule:all sweep")

	result, err := h.scheduler.ScheduleAll(ctx)
	if err != nil {
		log.Printf("schedule:all sweep failed: %v", err)
		return fmt.Errorf("schedule all: %w", err)
	}

	log.Printf("schedule:all sweep completed: scheduled=%d failed=%d", len(result.Scheduled), len(result.Failed))
	return nil
}
