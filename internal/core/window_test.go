package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowValidate(t *testing.T) {
	now := date(2026, time.June, 15)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid month", date(2026, time.May, 1), date(2026, time.May, 31), false},
		{"single day", date(2026, time.May, 1), date(2026, time.May, 1), false},
		{"start after end", date(2026, time.May, 2), date(2026, time.May, 1), true},
		{"future start", date(2026, time.July, 1), date(2026, time.July, 2), true},
		{"exactly 365 days", date(2025, time.June, 15), date(2026, time.June, 15), false},
		{"over 365 days", date(2025, time.June, 1), date(2026, time.June, 15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Window{Start: tt.start, End: tt.end}.Validate(now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsKind(err, KindInvalidArgument) {
				t.Errorf("error kind = %v, want invalid_argument", KindOf(err))
			}
		})
	}
}

func TestWindowDays(t *testing.T) {
	w := Window{Start: date(2026, time.May, 1), End: date(2026, time.May, 31)}
	if got := w.Days(); got != 31 {
		t.Errorf("Days() = %d, want 31 (inclusive of both endpoints)", got)
	}
	single := Window{Start: date(2026, time.May, 1), End: date(2026, time.May, 1)}
	if got := single.Days(); got != 1 {
		t.Errorf("Days() = %d, want 1", got)
	}
}

func TestWindowFor(t *testing.T) {
	// 2026-06-17 is a Wednesday.
	ref := date(2026, time.June, 17)

	week, err := WindowFor(PeriodWeek, ref)
	if err != nil {
		t.Fatalf("WindowFor(week): %v", err)
	}
	if !week.Start.Equal(date(2026, time.June, 15)) {
		t.Errorf("week start = %v, want Monday 2026-06-15", week.Start)
	}
	if week.End.Day() != 21 {
		t.Errorf("week end day = %d, want 21", week.End.Day())
	}

	month, err := WindowFor(PeriodMonth, ref)
	if err != nil {
		t.Fatalf("WindowFor(month): %v", err)
	}
	if !month.Start.Equal(date(2026, time.June, 1)) || month.End.Day() != 30 {
		t.Errorf("month window = [%v, %v], want [2026-06-01, 2026-06-30]", month.Start, month.End)
	}

	year, err := WindowFor(PeriodYear, ref)
	if err != nil {
		t.Fatalf("WindowFor(year): %v", err)
	}
	if year.Start.Month() != time.January || year.End.Month() != time.December {
		t.Errorf("year window = [%v, %v]", year.Start, year.End)
	}

	if _, err := WindowFor(PeriodCustom, ref); err == nil {
		t.Error("WindowFor(custom) should fail; custom ranges are resolved by the caller")
	}
}

func TestIntervalWindow(t *testing.T) {
	ref := date(2026, time.June, 17)

	w, label, err := IntervalWindow(PeriodMonth, ref, 1)
	if err != nil {
		t.Fatalf("IntervalWindow: %v", err)
	}
	if !w.Start.Equal(date(2026, time.May, 1)) {
		t.Errorf("start = %v, want 2026-05-01", w.Start)
	}
	if label != "May 2026" {
		t.Errorf("label = %q, want %q", label, "May 2026")
	}

	_, yearLabel, err := IntervalWindow(PeriodYear, ref, 2)
	if err != nil {
		t.Fatalf("IntervalWindow(year): %v", err)
	}
	if yearLabel != "2024" {
		t.Errorf("year label = %q, want %q", yearLabel, "2024")
	}
}

func TestDaysUntil(t *testing.T) {
	now := date(2026, time.June, 15)
	if got := DaysUntil(date(2026, time.June, 25), now); got != 10 {
		t.Errorf("DaysUntil = %d, want 10", got)
	}
	if got := DaysUntil(date(2026, time.June, 10), now); got != 0 {
		t.Errorf("DaysUntil past date = %d, want 0", got)
	}
}

func TestBudgetEndDate(t *testing.T) {
	start := date(2026, time.January, 15)

	weekly, err := BudgetEndDate(start, Weekly)
	if err != nil || !weekly.Equal(date(2026, time.January, 22)) {
		t.Errorf("weekly end = %v (%v), want 2026-01-22", weekly, err)
	}
	monthly, err := BudgetEndDate(start, Monthly)
	if err != nil || !monthly.Equal(date(2026, time.February, 15)) {
		t.Errorf("monthly end = %v (%v), want 2026-02-15", monthly, err)
	}
	yearly, err := BudgetEndDate(start, Yearly)
	if err != nil || !yearly.Equal(date(2027, time.January, 15)) {
		t.Errorf("yearly end = %v (%v), want 2027-01-15", yearly, err)
	}
	if _, err := BudgetEndDate(start, BudgetPeriod("DAILY")); err == nil {
		t.Error("invalid period should fail")
	}
}
