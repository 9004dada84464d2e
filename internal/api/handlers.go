package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cnc-scheduling/engine/internal/availability"
	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/capacity"
	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/job"
	"github.com/cnc-scheduling/engine/internal/repository"
	"github.com/cnc-scheduling/engine/internal/scheduler"
)

// Handlers contains all HTTP request handlers for the scheduling engine.
type Handlers struct {
	scheduler *scheduler.Scheduler
	db        repository.Database
	async     *job.Scheduler // nil unless Asynq/Redis is configured
}

// NewHandlers wires a Handlers against the scheduling engine and its
// backing store.
func NewHandlers(s *scheduler.Scheduler, db repository.Database) *Handlers {
	return &Handlers{scheduler: s, db: db}
}

// WithAsync attaches an Asynq-backed job.Scheduler so ?async=true on the
// scheduling endpoints queues the pass instead of running it inline.
func (h *Handlers) WithAsync(async *job.Scheduler) *Handlers {
	h.async = async
	return h
}

func errCode(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrNoCandidateMachine):
		return http.StatusUnprocessableEntity, "NO_CANDIDATE_MACHINE"
	case errors.Is(err, entity.ErrNoQualifiedOperator):
		return http.StatusUnprocessableEntity, "NO_QUALIFIED_OPERATOR"
	case errors.Is(err, entity.ErrCapacityExhausted):
		return http.StatusUnprocessableEntity, "CAPACITY_EXHAUSTED"
	case errors.Is(err, entity.ErrTimeoutExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT_EXCEEDED"
	case errors.Is(err, entity.ErrStaleSnapshot):
		return http.StatusConflict, "STALE_SNAPSHOT"
	case errors.Is(err, entity.ErrRoutingInvalid):
		return http.StatusUnprocessableEntity, "ROUTING_INVALID"
	case repository.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *Handlers) fail(c echo.Context, err error) error {
	status, code := errCode(err)
	return c.JSON(status, ErrorResponseWithCode(code, err.Error()))
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// ScheduleJob handles POST /api/jobs/:id/schedule. With ?async=true and an
// Asynq backend configured, it enqueues a schedule:job task and returns
// immediately instead of blocking on the placement pass.
func (h *Handlers) ScheduleJob(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_JOB_ID", err.Error()))
	}

	if h.async != nil && c.QueryParam("async") == "true" {
		info, err := h.async.EnqueueScheduleJob(c.Request().Context(), jobID)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusAccepted, SuccessResponse(map[string]string{"task_id": info.ID}))
	}

	if err := h.scheduler.ScheduleJob(c.Request().Context(), jobID); err != nil {
		return h.fail(c, err)
	}

	entries, err := h.db.ScheduleEntryRepository().ListByJob(c.Request().Context(), jobID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(entries))
}

// ScheduleAll handles POST /api/schedule/run-all, with the same ?async=true
// queuing behavior as ScheduleJob.
func (h *Handlers) ScheduleAll(c echo.Context) error {
	if h.async != nil && c.QueryParam("async") == "true" {
		info, err := h.async.EnqueueScheduleAll(c.Request().Context())
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusAccepted, SuccessResponse(map[string]string{"task_id": info.ID}))
	}

	result, err := h.scheduler.ScheduleAll(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(result))
}

// UnscheduleJob handles DELETE /api/jobs/:id/schedule. It deletes the
// job's committed entries and reverts it to Unscheduled; the caller is
// responsible for re-running ScheduleJob or waiting for the next
// ScheduleAll sweep.
func (h *Handlers) UnscheduleJob(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_JOB_ID", err.Error()))
	}

	ctx := c.Request().Context()
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	if err := tx.ScheduleEntryRepository().DeleteByJob(ctx, jobID); err != nil {
		tx.Rollback()
		return h.fail(c, err)
	}
	if err := tx.JobRepository().UpdateStatus(ctx, jobID, entity.JobUnscheduled); err != nil {
		tx.Rollback()
		return h.fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse(map[string]string{"status": string(entity.JobUnscheduled)}))
}

// MarkUnavailableRequest is the body of POST /api/unavailability.
type MarkUnavailableRequest struct {
	OperatorIDs []string `json:"operator_ids" validate:"required"`
	StartDate   string   `json:"start_date" validate:"required"`
	EndDate     string   `json:"end_date" validate:"required"`
	Partial     bool     `json:"partial"`
	StartTime   *string  `json:"start_time,omitempty"`
	EndTime     *string  `json:"end_time,omitempty"`
	Shifts      []int    `json:"shifts,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// MarkUnavailable handles POST /api/unavailability: records the
// unavailability, invalidates any schedule entries it overlaps (spec
// §4.10), and returns the jobs that need re-placement.
func (h *Handlers) MarkUnavailable(c echo.Context) error {
	var req MarkUnavailableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_REQUEST", err.Error()))
	}

	operatorIDs := make([]uuid.UUID, 0, len(req.OperatorIDs))
	for _, raw := range req.OperatorIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_OPERATOR_ID", err.Error()))
		}
		operatorIDs = append(operatorIDs, id)
	}

	startDate, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_START_DATE", err.Error()))
	}
	endDate, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_END_DATE", err.Error()))
	}

	shifts := make([]entity.Shift, 0, len(req.Shifts))
	for _, s := range req.Shifts {
		shifts = append(shifts, entity.Shift(s))
	}

	u := &entity.ResourceUnavailability{
		ID:          uuid.New(),
		OperatorIDs: operatorIDs,
		StartDate:   startDate,
		EndDate:     endDate,
		Partial:     req.Partial,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Shifts:      shifts,
		Reason:      req.Reason,
		Notes:       req.Notes,
	}

	ctx := c.Request().Context()
	if err := h.db.UnavailabilityRepository().Create(ctx, u); err != nil {
		return h.fail(c, err)
	}

	affectedJobs, err := h.scheduler.InvalidateForUnavailability(ctx, u)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse(map[string]interface{}{
		"unavailability_id": u.ID,
		"affected_jobs":      affectedJobs,
	}))
}

// MachineSchedule handles GET /api/machines/:id/schedule.
func (h *Handlers) MachineSchedule(c echo.Context) error {
	machineID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_MACHINE_ID", err.Error()))
	}
	entries, err := h.db.ScheduleEntryRepository().ListByMachine(c.Request().Context(), machineID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(entries))
}

// OperatorSchedule handles GET /api/operators/:id/schedule.
func (h *Handlers) OperatorSchedule(c echo.Context) error {
	operatorID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_OPERATOR_ID", err.Error()))
	}
	entries, err := h.db.ScheduleEntryRepository().ListByOperator(c.Request().Context(), operatorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(entries))
}

// JobSchedule handles GET /api/jobs/:id/schedule.
func (h *Handlers) JobSchedule(c echo.Context) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_JOB_ID", err.Error()))
	}
	entries, err := h.db.ScheduleEntryRepository().ListByJob(c.Request().Context(), jobID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(entries))
}

// OperatorWindow handles GET /api/operators/:id/window?date=.
func (h *Handlers) OperatorWindow(c echo.Context) error {
	operatorID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_OPERATOR_ID", err.Error()))
	}
	date, err := calendar.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_DATE", err.Error()))
	}

	ctx := c.Request().Context()
	resource, err := h.db.ResourceRepository().GetByID(ctx, operatorID)
	if err != nil {
		return h.fail(c, err)
	}

	dayEnd := date.AddDate(0, 0, 1)
	records, err := h.db.UnavailabilityRepository().ListForOperator(ctx, operatorID, date, dayEnd)
	if err != nil {
		return h.fail(c, err)
	}
	unavail := make([]entity.ResourceUnavailability, len(records))
	for i, r := range records {
		unavail[i] = *r
	}

	windows := map[string]entity.OperatorWorkingWindow{
		"shift1": availability.WorkingWindow(*resource, date, entity.Shift1, unavail),
		"shift2": availability.WorkingWindow(*resource, date, entity.Shift2, unavail),
	}
	return c.JSON(http.StatusOK, SuccessResponse(windows))
}

// AvailableOperators handles
// GET /api/operators/available?date=&shift=&role=&workCenters=.
func (h *Handlers) AvailableOperators(c echo.Context) error {
	date, err := calendar.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_DATE", err.Error()))
	}
	shiftNum, err := strconv.Atoi(c.QueryParam("shift"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_SHIFT", err.Error()))
	}
	shift := entity.Shift(shiftNum)

	var role *entity.ResourceRole
	if raw := c.QueryParam("role"); raw != "" {
		r := entity.ResourceRole(raw)
		role = &r
	}
	var workCenters []string
	if raw := c.QueryParam("workCenters"); raw != "" {
		workCenters = strings.Split(raw, ",")
	}

	ctx := c.Request().Context()
	resourcePtrs, err := h.db.ResourceRepository().ListActive(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	roster := make([]entity.Resource, len(resourcePtrs))
	for i, r := range resourcePtrs {
		roster[i] = *r
	}

	dayEnd := date.AddDate(0, 0, 1)
	unavail := make(map[entity.ResourceID][]entity.ResourceUnavailability, len(roster))
	for _, r := range roster {
		records, err := h.db.UnavailabilityRepository().ListForOperator(ctx, r.ID, date, dayEnd)
		if err != nil {
			return h.fail(c, err)
		}
		plain := make([]entity.ResourceUnavailability, len(records))
		for i, rec := range records {
			plain[i] = *rec
		}
		unavail[r.ID] = plain
	}

	available := availability.GetAvailableOperators(roster, date, shift, role, workCenters, unavail)
	return c.JSON(http.StatusOK, SuccessResponse(available))
}

// Capacity handles GET /api/capacity.
func (h *Handlers) Capacity(c echo.Context) error {
	ctx := c.Request().Context()
	now := entity.Now()

	resourcePtrs, err := h.db.ResourceRepository().ListActive(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	roster := make([]entity.Resource, len(resourcePtrs))
	for i, r := range resourcePtrs {
		roster[i] = *r
	}

	weekStart := calendar.WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	entries, err := h.db.ScheduleEntryRepository().ListOverlapping(ctx, weekStart, weekEnd)
	if err != nil {
		return h.fail(c, err)
	}

	tracker := capacity.NewTracker(now, roster, entries)
	return c.JSON(http.StatusOK, SuccessResponse(map[string]entity.ShiftMetrics{
		"shift1": tracker.Metrics(entity.Shift1),
		"shift2": tracker.Metrics(entity.Shift2),
	}))
}

// InspectionQueue handles GET /api/inspection-queue: jobs whose next
// unscheduled operation is INSPECT and whose predecessor operation's
// entries have all completed.
func (h *Handlers) InspectionQueue(c echo.Context) error {
	ctx := c.Request().Context()
	jobs, err := h.db.JobRepository().ListByStatus(ctx, entity.JobScheduled)
	if err != nil {
		return h.fail(c, err)
	}
	inProgress, err := h.db.JobRepository().ListByStatus(ctx, entity.JobInProgress)
	if err != nil {
		return h.fail(c, err)
	}
	jobs = append(jobs, inProgress...)

	var queue []*entity.Job
	for _, job := range jobs {
		ops, err := h.db.RoutingOperationRepository().ListByJob(ctx, job.ID)
		if err != nil {
			return h.fail(c, err)
		}
		sort.Slice(ops, func(i, j int) bool { return ops[i].Sequence < ops[j].Sequence })

		entries, err := h.db.ScheduleEntryRepository().ListByJob(ctx, job.ID)
		if err != nil {
			return h.fail(c, err)
		}

		next, predecessorDone := nextUnscheduledOperation(ops, entries)
		if next == nil || next.MachineType != entity.MachineTypeInspect || !predecessorDone {
			continue
		}
		queue = append(queue, job)
	}

	return c.JSON(http.StatusOK, SuccessResponse(queue))
}

// nextUnscheduledOperation returns the lowest-sequence operation with no
// entries yet, and whether every operation before it is fully Complete.
func nextUnscheduledOperation(ops []*entity.RoutingOperation, entries []*entity.ScheduleEntry) (*entity.RoutingOperation, bool) {
	bySequence := map[int][]*entity.ScheduleEntry{}
	for _, e := range entries {
		bySequence[e.OperationSequence] = append(bySequence[e.OperationSequence], e)
	}

	predecessorDone := true
	for _, op := range ops {
		seqEntries := bySequence[op.Sequence]
		if len(seqEntries) == 0 {
			return op, predecessorDone
		}
		for _, e := range seqEntries {
			if e.Status != entity.EntryComplete {
				predecessorDone = false
			}
		}
	}
	return nil, false
}
