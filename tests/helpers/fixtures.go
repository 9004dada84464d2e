package helpers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// FixtureLoader loads JSON fixture files from a tests/fixtures directory,
// for the handful of cases (e.g. a recorded production snapshot) worth
// keeping on disk rather than built with the factories above.
type FixtureLoader struct {
	fixturesDir string
}

// NewFixtureLoader creates a fixture loader pointing at the nearest
// tests/fixtures directory relative to the working directory.
func NewFixtureLoader() *FixtureLoader {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	possiblePaths := []string{
		filepath.Join(cwd, "fixtures"),
		filepath.Join(cwd, "tests", "fixtures"),
		filepath.Join(cwd, "..", "fixtures"),
		filepath.Join(cwd, "..", "..", "tests", "fixtures"),
	}

	for _, path := range possiblePaths {
		if stat, err := os.Stat(path); err == nil && stat.IsDir() {
			return &FixtureLoader{fixturesDir: path}
		}
	}

	return &FixtureLoader{fixturesDir: "."}
}

// NewFixtureLoaderWithDir creates a FixtureLoader with an explicit directory.
func NewFixtureLoaderWithDir(dir string) *FixtureLoader {
	return &FixtureLoader{fixturesDir: dir}
}

// LoadJSONFixture loads and unmarshals a JSON fixture file into v.
func (fl *FixtureLoader) LoadJSONFixture(filename string, v interface{}) error {
	path := filepath.Join(fl.fixturesDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal JSON fixture %s: %w", filename, err)
	}
	return nil
}

// SaveJSONFixture marshals v and writes it to a fixture file, creating
// directories as needed.
func (fl *FixtureLoader) SaveJSONFixture(filename string, v interface{}) error {
	path := filepath.Join(fl.fixturesDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create fixture directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture file %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether a fixture file exists.
func (fl *FixtureLoader) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(fl.fixturesDir, filename))
	return err == nil
}

// FixturesDir returns the resolved fixtures directory.
func (fl *FixtureLoader) FixturesDir() string {
	return fl.fixturesDir
}

// ShopFloorScenario bundles a self-consistent fleet, roster, and job set
// for placement and scheduler tests that need more than one or two
// entities wired together.
type ShopFloorScenario struct {
	Machines  []entity.Machine
	Operators []entity.Resource
	Jobs      []*entity.Job
	Routings  map[uuid.UUID][]entity.RoutingOperation
}

// NewSmallShopScenario builds a minimal two-machine, two-operator shop: one
// mill and one lathe, each staffed by an operator qualified on it across
// both shifts, with a single two-operation job routed mill-then-inspect.
// Every standalone scheduler/placement test that doesn't care about the
// scenario's specifics can start from this and override what it needs.
func NewSmallShopScenario() ShopFloorScenario {
	mill := NewMachineBuilder().WithMachineID("MILL-01").WithType(entity.MachineTypeMill).Build()
	lathe := NewMachineBuilder().WithMachineID("LATHE-01").WithType(entity.MachineTypeLathe).Build()

	millOperator := NewResourceBuilder().WithWorkCenters(mill.MachineID).Build()
	latheOperator := NewResourceBuilder().WithWorkCenters(lathe.MachineID).Build()

	job := CreateValidJob()
	routing := []entity.RoutingOperation{
		NewRoutingOperationBuilder().
			WithJobID(job.ID).
			WithSequence(1).
			WithMachineType(entity.MachineTypeMill).
			Build(),
		NewRoutingOperationBuilder().
			WithJobID(job.ID).
			WithSequence(2).
			WithMachineType(entity.MachineTypeInspect).
			Build(),
	}

	return ShopFloorScenario{
		Machines:  []entity.Machine{mill, lathe},
		Operators: []entity.Resource{millOperator, latheOperator},
		Jobs:      []*entity.Job{job},
		Routings:  map[uuid.UUID][]entity.RoutingOperation{job.ID: routing},
	}
}

// NewContendedShopScenario builds a single-mill shop with two jobs of
// different priority competing for the same machine, for displacement
// tests.
func NewContendedShopScenario() ShopFloorScenario {
	mill := NewMachineBuilder().WithMachineID("MILL-01").Build()
	operator := NewResourceBuilder().WithWorkCenters(mill.MachineID).Build()

	lowJob := CreateValidJobWithPriority(entity.PriorityLow)
	criticalJob := CreateValidJobWithPriority(entity.PriorityCritical)

	routings := map[uuid.UUID][]entity.RoutingOperation{
		lowJob.ID:      {CreateValidRoutingOperationWithType(lowJob.ID, entity.MachineTypeMill)},
		criticalJob.ID: {CreateValidRoutingOperationWithType(criticalJob.ID, entity.MachineTypeMill)},
	}

	return ShopFloorScenario{
		Machines:  []entity.Machine{mill},
		Operators: []entity.Resource{operator},
		Jobs:      []*entity.Job{lowJob, criticalJob},
		Routings:  routings,
	}
}
