// Package capacity computes per-shift weekly load/capacity metrics for
// the current business week. Pure functions only; nothing here reads
// storage or the clock beyond what is handed in.
package capacity

import (
	"time"

	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/entity"
)

// Efficiency factors applied to the 40-hour nominal week to produce
// effective capacity hours per operator per shift (spec §4.4).
const (
	shiftBaseHours       = 40.0
	efficiencyShift1     = 0.825
	efficiencyShift2     = 0.605
	unknownShiftCapacity = 0.0
)

func efficiency(s entity.Shift) float64 {
	if s == entity.Shift1 {
		return efficiencyShift1
	}
	return efficiencyShift2
}

// Tracker holds the running weekly load/capacity snapshot for both
// shifts. Mutated only by the Scheduler Service during a pass, via
// AddEntries, so that subsequent placement decisions within the same
// pass see the updated balance (spec §4.4, §5).
type Tracker struct {
	weekStart time.Time
	metrics   map[entity.Shift]*entity.ShiftMetrics
}

// NewTracker builds a Tracker for the business week containing asOf,
// given the active operator roster and the schedule entries already
// committed this week.
func NewTracker(asOf time.Time, roster []entity.Resource, entries []*entity.ScheduleEntry) *Tracker {
	weekStart := calendar.WeekStart(asOf)
	weekEnd := weekStart.AddDate(0, 0, 7)

	t := &Tracker{
		weekStart: weekStart,
		metrics: map[entity.Shift]*entity.ShiftMetrics{
			entity.Shift1: {Shift: entity.Shift1, CapacityHours: effectiveCapacity(roster, entity.Shift1)},
			entity.Shift2: {Shift: entity.Shift2, CapacityHours: effectiveCapacity(roster, entity.Shift2)},
		},
	}
	for _, m := range t.metrics {
		m.LoadPercentage = loadPercentage(m.LoadHours, m.CapacityHours)
	}

	var thisWeek []*entity.ScheduleEntry
	for _, e := range entries {
		if !e.Start.Before(weekStart) && e.Start.Before(weekEnd) {
			thisWeek = append(thisWeek, e)
		}
	}
	t.AddEntries(thisWeek)
	return t
}

func effectiveCapacity(roster []entity.Resource, shift entity.Shift) float64 {
	count := 0
	for _, r := range roster {
		if r.Active && r.WorksShift(shift) {
			count++
		}
	}
	return float64(count) * shiftBaseHours * efficiency(shift)
}

// AddEntries folds newly committed entries into the running week totals.
// Entries whose start falls outside the tracked week are ignored.
func (t *Tracker) AddEntries(batch []*entity.ScheduleEntry) {
	weekEnd := t.weekStart.AddDate(0, 0, 7)
	for _, e := range batch {
		if e.Start.Before(t.weekStart) || !e.Start.Before(weekEnd) {
			continue
		}
		m := t.metrics[e.Shift]
		if m == nil {
			continue
		}
		m.LoadHours += e.End.Sub(e.Start).Hours()
		m.LoadPercentage = loadPercentage(m.LoadHours, m.CapacityHours)
	}
}

func loadPercentage(load, capacity float64) float64 {
	if capacity == 0 {
		return 100
	}
	return load / capacity * 100
}

// Metrics returns a copy of the current snapshot for shift.
func (t *Tracker) Metrics(shift entity.Shift) entity.ShiftMetrics {
	if m := t.metrics[shift]; m != nil {
		return *m
	}
	return entity.ShiftMetrics{Shift: shift, CapacityHours: unknownShiftCapacity}
}

// OptimalShift returns the less-loaded shift as a soft bias for
// placement ordering (spec §4.4): shift 1 wins ties.
func (t *Tracker) OptimalShift() entity.Shift {
	s1 := t.Metrics(entity.Shift1)
	s2 := t.Metrics(entity.Shift2)
	if s1.LoadPercentage <= s2.LoadPercentage {
		return entity.Shift1
	}
	return entity.Shift2
}
