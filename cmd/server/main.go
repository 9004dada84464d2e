package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cnc-scheduling/engine/internal/api"
	"github.com/cnc-scheduling/engine/internal/job"
	"github.com/cnc-scheduling/engine/internal/repository"
	"github.com/cnc-scheduling/engine/internal/repository/memory"
	"github.com/cnc-scheduling/engine/internal/repository/postgres"
	"github.com/cnc-scheduling/engine/internal/scheduler"
)

func main() {
	db, err := openStorage()
	if err != nil {
		log.Fatalf("failed to open storage backend: %v", err)
	}
	defer db.Close()

	s := scheduler.New(db)
	router := api.NewRouter(s, db)

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		asyncScheduler, err := job.NewScheduler(redisAddr)
		if err != nil {
			log.Printf("redis unavailable, async scheduling disabled: %v", err)
		} else {
			defer asyncScheduler.Close()
			router.WithAsync(asyncScheduler)
		}
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		log.Printf("starting server on %s (backend=%s)...\n", addr, backendName())
		if err := router.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	if err := router.Shutdown(); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
}

// openStorage selects the backing store via STORAGE_BACKEND ("memory" or
// "postgres"; defaults to "memory" for local development, same pattern as
// the teacher's Phase 0 in-memory default.
func openStorage() (repository.Database, error) {
	switch backendName() {
	case "postgres":
		return postgres.New(os.Getenv("DATABASE_URL"))
	default:
		return memory.New(), nil
	}
}

func backendName() string {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		return "memory"
	}
	return backend
}
