package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cnc-scheduling/engine/internal/job"
	"github.com/cnc-scheduling/engine/internal/repository"
	"github.com/cnc-scheduling/engine/internal/scheduler"
)

// Router wraps the Echo engine and the handlers it dispatches to.
type Router struct {
	echo     *echo.Echo
	handlers *Handlers
}

// NewRouter creates an Echo router with every route registered.
func NewRouter(s *scheduler.Scheduler, db repository.Database) *Router {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	r := &Router{echo: e, handlers: NewHandlers(s, db)}
	r.registerRoutes()
	return r
}

// WithAsync attaches an Asynq-backed job.Scheduler to the router's
// handlers, enabling ?async=true on the scheduling endpoints.
func (r *Router) WithAsync(async *job.Scheduler) *Router {
	r.handlers.WithAsync(async)
	return r
}

func (r *Router) registerRoutes() {
	r.echo.GET("/api/health", r.health)

	r.echo.POST("/api/jobs/:id/schedule", r.handlers.ScheduleJob)
	r.echo.DELETE("/api/jobs/:id/schedule", r.handlers.UnscheduleJob)
	r.echo.GET("/api/jobs/:id/schedule", r.handlers.JobSchedule)
	r.echo.POST("/api/schedule/run-all", r.handlers.ScheduleAll)

	r.echo.POST("/api/unavailability", r.handlers.MarkUnavailable)

	r.echo.GET("/api/machines/:id/schedule", r.handlers.MachineSchedule)
	r.echo.GET("/api/operators/:id/schedule", r.handlers.OperatorSchedule)
	r.echo.GET("/api/operators/:id/window", r.handlers.OperatorWindow)
	r.echo.GET("/api/operators/available", r.handlers.AvailableOperators)

	r.echo.GET("/api/capacity", r.handlers.Capacity)
	r.echo.GET("/api/inspection-queue", r.handlers.InspectionQueue)
}

func (r *Router) health(c echo.Context) error {
	return c.JSON(200, SuccessResponse(map[string]string{"status": "ok"}))
}

// Start starts the HTTP server.
func (r *Router) Start(addr string) error {
	return r.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
