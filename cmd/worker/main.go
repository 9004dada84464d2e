// Command worker runs the Asynq server that executes queued schedule:job
// and schedule:all tasks against the Scheduler Service.
package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"

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

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	handlers := job.NewHandlers(scheduler.New(db))
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{Concurrency: 4},
	)

	log.Printf("starting worker against redis=%s (backend=%s)...\n", redisAddr, backendName())
	if err := srv.Run(mux); err != nil {
		log.Fatalf("worker exited: %v", err)
	}
}

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
