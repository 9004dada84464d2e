// Package calendar provides pure functional algorithms for the business
// calendar — working days, shift windows, and working-minute arithmetic —
// without side effects, database access, or external I/O.
package calendar

import (
	"time"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// dateLayout and clockLayout are the wire formats the HTTP boundary
// accepts for calendar dates and bare clock times.
const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Location is the fixed business timezone. All wall-clock interpretation
// (working-day membership, shift windows) happens against this location;
// everywhere else in the engine times are absolute instants.
var Location = mustLoadLocation("America/Chicago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// The IANA database ships with the Go toolchain on every supported
		// platform; failure here means a broken build environment, not a
		// runtime condition callers can recover from.
		panic("calendar: cannot load " + name + ": " + err.Error())
	}
	return loc
}

// The shift*Minute constants are offsets in minutes from local midnight.
const (
	shift1StartMinute = 3 * 60
	shift1EndMinute   = 15 * 60
	shift2StartMinute = 15 * 60
	shift2EndMinute   = 27 * 60 // 03:00 of the following day
)

// IsWorkingDay reports whether t's local calendar date is Monday through
// Thursday, the business week.
func IsWorkingDay(t time.Time) bool {
	switch t.In(Location).Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return true
	default:
		return false
	}
}

// ShiftWindow returns the absolute [start, end) instants of shift s on
// date's local calendar date. date's own clock component is ignored; only
// its local calendar date matters. Shift 2 belongs to the date on which it
// starts even though it ends after local midnight of the following day.
func ShiftWindow(date time.Time, shift entity.Shift) (start, end time.Time) {
	local := date.In(Location)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, Location)

	switch shift {
	case entity.Shift1:
		return midnight.Add(shift1StartMinute * time.Minute), midnight.Add(shift1EndMinute * time.Minute)
	case entity.Shift2:
		return midnight.Add(shift2StartMinute * time.Minute), midnight.Add(shift2EndMinute * time.Minute)
	default:
		return midnight, midnight
	}
}

// shiftOf reports the shift containing t and the calendar date that shift
// belongs to, or ok=false if t falls in neither shift window of any
// working day.
func shiftOf(t time.Time) (shift entity.Shift, dayStart time.Time, ok bool) {
	local := t.In(Location)
	y, m, d := local.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, Location)

	if IsWorkingDay(today) {
		s1, e1 := ShiftWindow(today, entity.Shift1)
		if !t.Before(s1) && t.Before(e1) {
			return entity.Shift1, today, true
		}
		s2, e2 := ShiftWindow(today, entity.Shift2)
		if !t.Before(s2) && t.Before(e2) {
			return entity.Shift2, today, true
		}
	}

	// t may fall in yesterday's Shift 2 tail (past local midnight).
	yesterday := today.AddDate(0, 0, -1)
	if IsWorkingDay(yesterday) {
		s2, e2 := ShiftWindow(yesterday, entity.Shift2)
		if !t.Before(s2) && t.Before(e2) {
			return entity.Shift2, yesterday, true
		}
	}

	return 0, today, false
}

// NextWorkingInstant returns t if t falls inside a shift window on a
// working day; otherwise the start of the next shift window, scanning
// forward day by day.
func NextWorkingInstant(t time.Time) time.Time {
	if _, _, ok := shiftOf(t); ok {
		return t
	}

	local := t.In(Location)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, Location)

	// Scan forward through shift starts until we find the first one at or
	// after t. Bounded generously; a working shift start exists within any
	// 7-day window since at most 3 consecutive days are non-working.
	for i := 0; i < 14; i++ {
		if IsWorkingDay(day) {
			s1, _ := ShiftWindow(day, entity.Shift1)
			if !s1.Before(t) {
				return s1
			}
			s2, e2 := ShiftWindow(day, entity.Shift2)
			if !s2.Before(t) {
				return s2
			}
			if t.Before(e2) {
				// t already inside Shift 2's wraparound tail, handled above.
				return t
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return t
}

// AdvanceByWorkingMinutes returns t advanced by m minutes of working time,
// skipping non-working intervals (off-days, inter-shift gaps, weekends).
// t must already fall on or be advanced to a working instant; the function
// calls NextWorkingInstant internally so callers may pass any t.
func AdvanceByWorkingMinutes(t time.Time, minutes float64) time.Time {
	cursor := NextWorkingInstant(t)
	remaining := minutes

	for remaining > 0 {
		shift, day, ok := shiftOf(cursor)
		if !ok {
			cursor = NextWorkingInstant(cursor)
			continue
		}
		_, shiftEnd := ShiftWindow(day, shift)
		available := shiftEnd.Sub(cursor).Minutes()
		if available <= 0 {
			cursor = NextWorkingInstant(shiftEnd)
			continue
		}
		if remaining <= available {
			return cursor.Add(time.Duration(remaining * float64(time.Minute)))
		}
		remaining -= available
		cursor = NextWorkingInstant(shiftEnd)
	}
	return cursor
}

// NextBusinessDayShift1Open returns the Shift 1 opening of the next
// business day strictly after t's local calendar date — the "never
// schedule today, never in the past" floor used by the Placement
// Algorithm and Scheduler Service.
func NextBusinessDayShift1Open(t time.Time) time.Time {
	local := t.In(Location)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, Location).AddDate(0, 0, 1)

	for i := 0; i < 10; i++ {
		if IsWorkingDay(day) {
			start, _ := ShiftWindow(day, entity.Shift1)
			return start
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// NextShiftBoundary returns the start of the next shift window strictly
// after t — the shift's end if t is inside one, or the next working
// shift's start if t falls in a gap. Used by the Placement Algorithm to
// advance its cursor past a shift in which no chunk could be emitted.
func NextShiftBoundary(t time.Time) time.Time {
	if shift, day, ok := shiftOf(t); ok {
		_, end := ShiftWindow(day, shift)
		return NextWorkingInstant(end)
	}
	return NextWorkingInstant(t)
}

// ParseDate parses a "YYYY-MM-DD" wire value into the local midnight
// instant of that calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, Location)
}

// ParseClockTime parses a "HH:MM" wire value into a time.Time; only its
// clock-of-day component carries meaning, the calendar date component does
// not.
func ParseClockTime(s string) (time.Time, error) {
	return time.ParseInLocation(clockLayout, s, Location)
}

// WeekStart returns the Monday 00:00 local instant of the business week
// containing t, used by the Shift Capacity Manager to window load totals.
func WeekStart(t time.Time) time.Time {
	local := t.In(Location)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, Location)
	offset := (int(midnight.Weekday()) + 6) % 7 // days since Monday
	return midnight.AddDate(0, 0, -offset)
}
