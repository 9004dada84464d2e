// Package postgres is a PostgreSQL implementation of the storage contract,
// backed by database/sql and the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/cnc-scheduling/engine/internal/repository"
)

// DB wraps a SQL database connection and exposes the repository accessors
// that compose repository.Database.
type DB struct {
	*sql.DB

	jobs      *JobRepository
	routings  *RoutingOperationRepository
	machines  *MachineRepository
	resources *ResourceRepository
	unavail   *UnavailabilityRepository
	entries   *ScheduleEntryRepository
}

// New opens a PostgreSQL connection and wires up its repositories.
func New(connString string) (*DB, error) {
	sqldb, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqldb}
	db.jobs = &JobRepository{db: sqldb}
	db.routings = &RoutingOperationRepository{db: sqldb}
	db.machines = &MachineRepository{db: sqldb}
	db.resources = &ResourceRepository{db: sqldb}
	db.unavail = &UnavailabilityRepository{db: sqldb}
	db.entries = &ScheduleEntryRepository{db: sqldb}
	return db, nil
}

func (db *DB) JobRepository() repository.JobRepository                           { return db.jobs }
func (db *DB) RoutingOperationRepository() repository.RoutingOperationRepository { return db.routings }
func (db *DB) MachineRepository() repository.MachineRepository                   { return db.machines }
func (db *DB) ResourceRepository() repository.ResourceRepository                 { return db.resources }
func (db *DB) UnavailabilityRepository() repository.UnavailabilityRepository     { return db.unavail }
func (db *DB) ScheduleEntryRepository() repository.ScheduleEntryRepository       { return db.entries }

// Version reads the monotonic unavailability-write counter maintained by a
// Postgres sequence, incremented by a trigger on resource_unavailability
// inserts/deletes (outside this contract's concern; the sequence itself is
// provisioned by the deployment's migrations).
func (db *DB) Version(ctx context.Context) (uint64, error) {
	var v int64
	err := db.QueryRowContext(ctx, `SELECT last_value FROM unavailability_version_seq`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read version sequence: %w", err)
	}
	return uint64(v), nil
}

func (db *DB) Close() error { return db.DB.Close() }

func (db *DB) Health(ctx context.Context) error { return db.PingContext(ctx) }

// BeginTx opens a real SQL transaction. Each repository accessor against the
// returned Transaction operates within that single sql.Tx, giving per-pass
// atomic commit.
func (db *DB) BeginTx(ctx context.Context) (repository.Transaction, error) {
	sqltx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{
		tx:        sqltx,
		jobs:      &JobRepository{db: sqltx},
		routings:  &RoutingOperationRepository{db: sqltx},
		machines:  &MachineRepository{db: sqltx},
		resources: &ResourceRepository{db: sqltx},
		unavail:   &UnavailabilityRepository{db: sqltx},
		entries:   &ScheduleEntryRepository{db: sqltx},
	}, nil
}

// sqlExecutor is the subset of *sql.DB and *sql.Tx every repository needs;
// each repository is constructed against either, identically.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type tx struct {
	tx        *sql.Tx
	jobs      *JobRepository
	routings  *RoutingOperationRepository
	machines  *MachineRepository
	resources *ResourceRepository
	unavail   *UnavailabilityRepository
	entries   *ScheduleEntryRepository
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) JobRepository() repository.JobRepository                           { return t.jobs }
func (t *tx) RoutingOperationRepository() repository.RoutingOperationRepository { return t.routings }
func (t *tx) MachineRepository() repository.MachineRepository                   { return t.machines }
func (t *tx) ResourceRepository() repository.ResourceRepository                 { return t.resources }
func (t *tx) UnavailabilityRepository() repository.UnavailabilityRepository     { return t.unavail }
func (t *tx) ScheduleEntryRepository() repository.ScheduleEntryRepository       { return t.entries }
