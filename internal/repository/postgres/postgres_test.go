// Package postgres provides PostgreSQL repository implementations with integration tests
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestHelper provides utilities for PostgreSQL integration tests.
type PostgresTestHelper struct {
	db        *sql.DB
	container testcontainers.Container
	ctx       context.Context
}

// NewPostgresTestHelper creates and starts a PostgreSQL container for testing.
func NewPostgresTestHelper(ctx context.Context, t *testing.T) *PostgresTestHelper {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "scheduling_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/scheduling_test?sslmode=disable",
		host, port.Port())

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := createTestTables(ctx, db); err != nil {
		t.Fatalf("Failed to create test tables: %v", err)
	}

	return &PostgresTestHelper{db: db, container: container, ctx: ctx}
}

// Close stops the PostgreSQL container and closes the database connection.
func (h *PostgresTestHelper) Close(t *testing.T) {
	if err := h.db.Close(); err != nil {
		t.Logf("Warning: failed to close database: %v", err)
	}
	if err := h.container.Terminate(h.ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

// DB returns the database connection.
func (h *PostgresTestHelper) DB() *sql.DB {
	return h.db
}

// ClearTables truncates all tables (useful for test isolation).
func (h *PostgresTestHelper) ClearTables(ctx context.Context, t *testing.T) {
	tables := []string{
		"schedule_entries",
		"resource_unavailability",
		"resources",
		"routing_operations",
		"machines",
		"jobs",
	}
	for _, table := range tables {
		if _, err := h.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Logf("Warning: failed to truncate table %s: %v", table, err)
		}
	}
}

func createTestTables(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE SEQUENCE IF NOT EXISTS unavailability_version_seq;

	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		job_number VARCHAR(64) NOT NULL UNIQUE,
		due_date TIMESTAMP NOT NULL,
		promised_date TIMESTAMP NOT NULL,
		priority VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS machines (
		id UUID PRIMARY KEY,
		machine_id VARCHAR(64) NOT NULL UNIQUE,
		type VARCHAR(20) NOT NULL,
		substitution_groups TEXT[] DEFAULT '{}',
		status VARCHAR(20) NOT NULL,
		available_shifts INTEGER[] DEFAULT '{}',
		efficiency_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		capability_flags JSONB
	);

	CREATE TABLE IF NOT EXISTS routing_operations (
		id UUID PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id),
		sequence INTEGER NOT NULL,
		operation_name VARCHAR(255) NOT NULL,
		machine_type VARCHAR(20) NOT NULL,
		estimated_hours DOUBLE PRECISION NOT NULL,
		setup_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		required_skills TEXT[] DEFAULT '{}',
		compatible_machines TEXT[] DEFAULT '{}',
		original_quoted_machine_id VARCHAR(64),
		earliest_start_date TIMESTAMP,
		modified BOOLEAN DEFAULT false
	);

	CREATE TABLE IF NOT EXISTS resources (
		id UUID PRIMARY KEY,
		role VARCHAR(30) NOT NULL,
		active BOOLEAN DEFAULT true,
		shift_schedule INTEGER[] DEFAULT '{}',
		work_centers TEXT[] DEFAULT '{}',
		skills TEXT[] DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS resource_unavailability (
		id UUID PRIMARY KEY,
		operator_ids UUID[] NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		partial BOOLEAN DEFAULT false,
		start_time VARCHAR(5),
		end_time VARCHAR(5),
		shifts INTEGER[] DEFAULT '{}',
		reason VARCHAR(255),
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		id UUID PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id),
		operation_sequence INTEGER NOT NULL,
		machine_id UUID NOT NULL REFERENCES machines(id),
		operator_id UUID,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		shift INTEGER NOT NULL,
		status VARCHAR(20) NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}
