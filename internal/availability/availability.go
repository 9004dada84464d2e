// Package availability provides pure functional algorithms for operator
// availability resolution without side effects, database access, or
// external I/O.
package availability

import (
	"time"

	"github.com/cnc-scheduling/engine/internal/calendar"
	"github.com/cnc-scheduling/engine/internal/entity"
)

// WorkingWindow is a pure function that resolves an operator's working
// window on a date and shift from its base shift schedule and recorded
// unavailability.
//
// Resolution order:
//  1. Inactive operator -> empty.
//  2. Non-working day -> empty.
//  3. Shift not in the operator's shift-schedule -> empty.
//  4. Full-day unavailability covering the shift -> empty.
//  5. Partial-day unavailability covering the shift -> shift window minus
//     the unavailable clock range; if the remainder is empty or
//     non-contiguous, the largest contiguous remainder anchored at the
//     shift start is returned (spec §4.3).
//  6. Otherwise -> the full shift window.
//
// Overlapping unavailability records for the operator are not merged
// beforehand; WorkingWindow applies every record covering the date and
// shift in turn.
//
// Edge Cases Handled:
//   - Unknown/inactive operator -> empty window, never an error.
//   - Multiple partial-day records on the same date/shift -> each is
//     subtracted in turn; only the remainder surviving all of them remains.
//   - A clock range entirely outside the shift window has no effect.
func WorkingWindow(resource entity.Resource, date time.Time, shift entity.Shift, unavailability []entity.ResourceUnavailability) entity.OperatorWorkingWindow {
	if !resource.Active {
		return entity.OperatorWorkingWindow{}
	}
	if !calendar.IsWorkingDay(date) {
		return entity.OperatorWorkingWindow{}
	}
	if !resource.WorksShift(shift) {
		return entity.OperatorWorkingWindow{}
	}

	shiftStart, shiftEnd := calendar.ShiftWindow(date, shift)
	window := entity.OperatorWorkingWindow{Start: shiftStart, End: shiftEnd}

	for _, u := range unavailability {
		if !u.CoversDate(date) || !u.CoversShift(shift) {
			continue
		}
		if !u.Partial {
			return entity.OperatorWorkingWindow{}
		}
		window = subtractClockRange(window, shiftStart, u)
		if window.Empty() {
			return window
		}
	}

	return window
}

// subtractClockRange removes the unavailable [StartTime,EndTime) portion
// (interpreted against dayStart, the shift's own start instant) from
// window, returning the largest contiguous remainder anchored at the
// window's own start when the subtraction would otherwise split it in two.
func subtractClockRange(window entity.OperatorWorkingWindow, dayStart time.Time, u entity.ResourceUnavailability) entity.OperatorWorkingWindow {
	if u.StartTime == nil || u.EndTime == nil {
		return window
	}

	y, m, d := dayStart.Date()
	unavailStart := clockTimeOn(y, m, d, dayStart.Location(), *u.StartTime)
	unavailEnd := clockTimeOn(y, m, d, dayStart.Location(), *u.EndTime)
	if !unavailEnd.After(unavailStart) {
		return window
	}

	// No overlap with the window at all.
	if !unavailStart.Before(window.End) || !window.Start.Before(unavailEnd) {
		return window
	}

	leadingRemainder := window.Start.Before(unavailStart)
	trailingRemainder := unavailEnd.Before(window.End)

	switch {
	case leadingRemainder && trailingRemainder:
		// Splits the window in two; the leading piece, anchored at the
		// window's own start, is kept whichever of the two is larger.
		leading := entity.OperatorWorkingWindow{Start: window.Start, End: unavailStart}
		trailing := entity.OperatorWorkingWindow{Start: unavailEnd, End: window.End}
		if leading.End.Sub(leading.Start) >= trailing.End.Sub(trailing.Start) {
			return leading
		}
		return entity.OperatorWorkingWindow{Start: window.Start, End: leading.End}
	case leadingRemainder:
		return entity.OperatorWorkingWindow{Start: window.Start, End: unavailStart}
	case trailingRemainder:
		return entity.OperatorWorkingWindow{Start: unavailEnd, End: window.End}
	default:
		return entity.OperatorWorkingWindow{}
	}
}

// clockTimeOn parses an "HH:MM" string against the given calendar date and
// location; an unparsable string is treated as midnight (defensive only —
// Storage is expected to validate this field at write time).
func clockTimeOn(y int, month time.Month, d int, loc *time.Location, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Date(y, month, d, 0, 0, 0, 0, loc)
	}
	return time.Date(y, month, d, parsed.Hour(), parsed.Minute(), 0, 0, loc)
}

// IsAvailable reports whether the operator has any non-empty working
// window at instant, for shift.
func IsAvailable(resource entity.Resource, instant time.Time, shift entity.Shift, unavailability []entity.ResourceUnavailability) bool {
	window := WorkingWindow(resource, instant, shift, unavailability)
	return !window.Empty() && !instant.Before(window.Start) && instant.Before(window.End)
}

// GetAvailableOperators filters roster to those working at instant/shift,
// optionally by role and by work-center intersection with workCenters.
func GetAvailableOperators(roster []entity.Resource, instant time.Time, shift entity.Shift, role *entity.ResourceRole, workCenters []string, unavailByOperator map[entity.ResourceID][]entity.ResourceUnavailability) []entity.Resource {
	var result []entity.Resource
	for _, r := range roster {
		if role != nil && r.Role != *role {
			continue
		}
		if len(workCenters) > 0 && !intersectsWorkCenters(r, workCenters) {
			continue
		}
		if IsAvailable(r, instant, shift, unavailByOperator[r.ID]) {
			result = append(result, r)
		}
	}
	return result
}

func intersectsWorkCenters(r entity.Resource, workCenters []string) bool {
	for _, wc := range workCenters {
		if r.WorkCenters[wc] {
			return true
		}
	}
	return false
}

// NextAvailableDay scans working days forward from fromDate (inclusive)
// and returns the first date on which resource has a non-empty working
// window on either shift.
func NextAvailableDay(resource entity.Resource, fromDate time.Time, unavailability []entity.ResourceUnavailability) (time.Time, bool) {
	day := fromDate
	for i := 0; i < 366; i++ {
		if calendar.IsWorkingDay(day) {
			if !WorkingWindow(resource, day, entity.Shift1, unavailability).Empty() ||
				!WorkingWindow(resource, day, entity.Shift2, unavailability).Empty() {
				return day, true
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// AvailableHoursInRange sums working-window lengths across both shifts for
// every working day in [from, to), clipped to the range.
func AvailableHoursInRange(resource entity.Resource, from, to time.Time, unavailability []entity.ResourceUnavailability) float64 {
	var total time.Duration
	day := from

	for !day.After(to) && day.Before(to) {
		if calendar.IsWorkingDay(day) {
			for _, shift := range []entity.Shift{entity.Shift1, entity.Shift2} {
				w := WorkingWindow(resource, day, shift, unavailability)
				clipped := w.Intersect(from, to)
				if !clipped.Empty() {
					total += clipped.End.Sub(clipped.Start)
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return total.Hours()
}
