package core

import "time"

// Period selects how an analytics window is derived from a reference date.
type Period string

const (
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

// Window is an inclusive [Start, End] date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days is the inclusive day count of the window: calendar days between the
// endpoints plus one, so a single-day window counts as 1.
func (w Window) Days() int {
	return daysBetween(w.Start, w.End) + 1
}

// Validate enforces the shared window rules: start not after end, start not
// in the future, and a span of at most 365 days.
func (w Window) Validate(now time.Time) error {
	if w.Start.After(w.End) {
		return InvalidArgumentf("start date must not be after end date")
	}
	if w.Start.After(now) {
		return InvalidArgumentf("start date cannot be in the future")
	}
	if daysBetween(w.Start, w.End) > 365 {
		return InvalidArgumentf("date range cannot exceed 365 days")
	}
	return nil
}

// WindowFor derives the window for a period around a reference date. Weeks
// start on Monday; month and year windows span the full calendar unit.
// PeriodCustom is resolved by the caller and rejected here.
func WindowFor(period Period, ref time.Time) (Window, error) {
	ref = ref.UTC()
	switch period {
	case PeriodWeek:
		start := MidnightUTC(ref)
		offset := (int(start.Weekday()) + 6) % 7 // Monday = 0
		start = start.AddDate(0, 0, -offset)
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, nil
	case PeriodMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}, nil
	case PeriodYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: endOfDay(time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC))}, nil
	default:
		return Window{}, InvalidArgumentf("invalid period %q", period)
	}
}

// IntervalWindow returns the window for the interval `ago` periods before
// the reference date together with its label: the year for yearly periods,
// month and year otherwise.
func IntervalWindow(period Period, ref time.Time, ago int) (Window, string, error) {
	var shifted time.Time
	switch period {
	case PeriodWeek:
		shifted = ref.AddDate(0, 0, -7*ago)
	case PeriodMonth:
		shifted = ref.AddDate(0, -ago, 0)
	case PeriodYear:
		shifted = ref.AddDate(-ago, 0, 0)
	default:
		return Window{}, "", InvalidArgumentf("invalid period %q", period)
	}
	w, err := WindowFor(period, shifted)
	if err != nil {
		return Window{}, "", err
	}
	layout := "Jan 2006"
	if period == PeriodYear {
		layout = "2006"
	}
	return w, w.Start.Format(layout), nil
}

// DayKey formats a date as the canonical per-day breakdown key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// daysBetween counts whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	ad := MidnightUTC(a)
	bd := MidnightUTC(b)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

// DaysUntil counts whole days from now until t, never negative.
func DaysUntil(t, now time.Time) int {
	d := int(t.Sub(now) / (24 * time.Hour))
	if d < 0 {
		return 0
	}
	return d
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
