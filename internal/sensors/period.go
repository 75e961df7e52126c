package sensors

import (
	"errors"
	"time"
)

// ErrBadPeriod means a time period name was not one of the four known
// periods.
var ErrBadPeriod = errors.New("unknown time period")

// Period is a named clock-time-of-day window used to filter readings
// independent of calendar date.
type Period string

// The four recognized periods. Boundaries are inclusive at both ends,
// so a reading at exactly 06:00 matches both night and morning.
const (
	PeriodMorning   Period = "morning"   // 06:00–12:00
	PeriodAfternoon Period = "afternoon" // 12:00–18:00
	PeriodEvening   Period = "evening"   // 18:00–23:59
	PeriodNight     Period = "night"     // 00:00–06:00
)

// periodWindows maps each period to its [start, end] window in minutes
// since midnight.
var periodWindows = map[Period][2]int{
	PeriodMorning:   {6 * 60, 12 * 60},
	PeriodAfternoon: {12 * 60, 18 * 60},
	PeriodEvening:   {18 * 60, 23*60 + 59},
	PeriodNight:     {0, 6 * 60},
}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Valid() {
		return "", ErrBadPeriod
	}
	return p, nil
}

// Valid reports whether p is one of the four known periods.
func (p Period) Valid() bool {
	_, ok := periodWindows[p]
	return ok
}

// Contains reports whether t's time of day falls inside the period's
// window, regardless of t's date.
func (p Period) Contains(t time.Time) bool {
	w, ok := periodWindows[p]
	if !ok {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= w[0] && m <= w[1]
}
