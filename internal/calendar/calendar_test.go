package calendar

import (
	"testing"
	"time"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/stretchr/testify/assert"
)

func localDate(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, Location)
}

// TestIsWorkingDay tests the Monday-Thursday working week.
func TestIsWorkingDay(t *testing.T) {
	assert.True(t, IsWorkingDay(localDate(2026, 8, 3, 9, 0)))  // Monday
	assert.True(t, IsWorkingDay(localDate(2026, 8, 6, 9, 0)))  // Thursday
	assert.False(t, IsWorkingDay(localDate(2026, 8, 7, 9, 0))) // Friday
	assert.False(t, IsWorkingDay(localDate(2026, 8, 8, 9, 0))) // Saturday
	assert.False(t, IsWorkingDay(localDate(2026, 8, 9, 9, 0))) // Sunday
}

// TestShiftWindow tests the fixed Shift 1/Shift 2 wall-clock boundaries.
func TestShiftWindow(t *testing.T) {
	day := localDate(2026, 8, 3, 0, 0)

	s1, e1 := ShiftWindow(day, entity.Shift1)
	assert.Equal(t, localDate(2026, 8, 3, 3, 0), s1)
	assert.Equal(t, localDate(2026, 8, 3, 15, 0), e1)

	s2, e2 := ShiftWindow(day, entity.Shift2)
	assert.Equal(t, localDate(2026, 8, 3, 15, 0), s2)
	assert.Equal(t, localDate(2026, 8, 4, 3, 0), e2) // crosses midnight
}

// TestNextWorkingInstantInsideShift tests that an instant already inside a
// shift window is returned unchanged.
func TestNextWorkingInstantInsideShift(t *testing.T) {
	inside := localDate(2026, 8, 3, 10, 0)
	assert.Equal(t, inside, NextWorkingInstant(inside))
}

// TestNextWorkingInstantSkipsWeekend tests that a Friday-morning request
// lands on Monday Shift 1, skipping Friday/Saturday/Sunday.
func TestNextWorkingInstantSkipsWeekend(t *testing.T) {
	thursdayNight := localDate(2026, 8, 6, 16, 0) // after Shift 2 start, before its end... actually inside Shift 2
	// Pick an instant clearly outside both shifts: between Shift1 end (15:00)
	// and Shift2 start (15:00) there is no gap, so use the tail after Shift 2
	// ends, i.e. Friday 03:00 onward with no working day until Monday.
	_ = thursdayNight
	fridayMorning := localDate(2026, 8, 7, 10, 0)
	got := NextWorkingInstant(fridayMorning)
	assert.Equal(t, localDate(2026, 8, 10, 3, 0), got) // Monday Shift 1 open
}

// TestAdvanceByWorkingMinutesWithinShift tests a simple same-shift advance.
func TestAdvanceByWorkingMinutesWithinShift(t *testing.T) {
	start := localDate(2026, 8, 3, 3, 0)
	got := AdvanceByWorkingMinutes(start, 240) // 4 hours
	assert.Equal(t, localDate(2026, 8, 3, 7, 0), got)
}

// TestAdvanceByWorkingMinutesCrossesShiftBoundary tests that minutes
// exceeding the remainder of a shift spill into the next shift, skipping
// the non-working gap between them (there is none here: S1 ends 15:00, S2
// starts 15:00).
func TestAdvanceByWorkingMinutesCrossesShiftBoundary(t *testing.T) {
	start := localDate(2026, 8, 3, 13, 0) // 2h left in Shift 1
	got := AdvanceByWorkingMinutes(start, 180)
	// 2h consumes the rest of Shift 1 (ends 15:00); remaining 1h spent at the
	// start of Shift 2 (15:00-16:00).
	assert.Equal(t, localDate(2026, 8, 3, 16, 0), got)
}

// TestAdvanceByWorkingMinutesEndsAtShiftClose tests that advancing a full
// 12-hour shift from Thursday Shift 1 open ends exactly at Shift 1 close on
// the same Thursday.
func TestAdvanceByWorkingMinutesEndsAtShiftClose(t *testing.T) {
	start := localDate(2026, 8, 6, 3, 0) // Thursday Shift 1 open
	got := AdvanceByWorkingMinutes(start, 12*60)
	assert.Equal(t, localDate(2026, 8, 6, 15, 0), got) // ends exactly at Shift1 close, still Thursday
}

// TestNextBusinessDayShift1Open tests the "never today, never past" floor.
func TestNextBusinessDayShift1Open(t *testing.T) {
	monday := localDate(2026, 8, 3, 10, 0)
	assert.Equal(t, localDate(2026, 8, 4, 3, 0), NextBusinessDayShift1Open(monday))

	thursday := localDate(2026, 8, 6, 11, 0)
	assert.Equal(t, localDate(2026, 8, 10, 3, 0), NextBusinessDayShift1Open(thursday)) // skips to next Monday
}

// TestNextShiftBoundary tests advancing past both mid-shift and gap
// positions, the cursor move the Placement Algorithm makes when an
// iteration yields no chunk.
func TestNextShiftBoundary(t *testing.T) {
	midShift1 := localDate(2026, 8, 3, 9, 0) // Monday, inside Shift 1
	assert.Equal(t, localDate(2026, 8, 3, 15, 0), NextShiftBoundary(midShift1))

	gap := localDate(2026, 8, 7, 9, 0) // Friday, non-working
	assert.Equal(t, localDate(2026, 8, 10, 3, 0), NextShiftBoundary(gap))
}

// TestWeekStart tests that WeekStart always resolves to a Monday midnight.
func TestWeekStart(t *testing.T) {
	wednesday := localDate(2026, 8, 5, 14, 30)
	assert.Equal(t, localDate(2026, 8, 3, 0, 0), WeekStart(wednesday))

	sunday := localDate(2026, 8, 9, 23, 0)
	assert.Equal(t, localDate(2026, 8, 3, 0, 0), WeekStart(sunday))
}
