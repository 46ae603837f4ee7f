package timeutil_test

import (
	"testing"
	"time"

	"ticket-backend/internal/timeutil"
)

func TestParseDate(t *testing.T) {
	got, err := timeutil.ParseDate("2024-03-02")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 2 {
		t.Errorf("parsed %v, want 2024-03-02", got)
	}
	if got.Location() != timeutil.Mountain {
		t.Errorf("parsed in %v, want company timezone", got.Location())
	}

	if _, err := timeutil.ParseDate("03/02/2024"); err == nil {
		t.Error("non-ISO date accepted")
	}
}

// A late UTC timestamp is still the previous calendar day locally.
func TestDateOnlyCrossesMidnightUTC(t *testing.T) {
	utc := time.Date(2024, 3, 3, 2, 30, 0, 0, time.UTC)
	got := timeutil.DateOnly(utc)
	if got.Day() != 2 || got.Month() != time.March {
		t.Errorf("DateOnly(%v) = %v, want March 2 local", utc, got)
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2024, 3, 2, 8, 0, 0, 0, timeutil.Mountain)
	b := time.Date(2024, 3, 2, 23, 59, 0, 0, timeutil.Mountain)
	c := time.Date(2024, 3, 3, 0, 1, 0, 0, timeutil.Mountain)

	if !timeutil.SameDate(a, b) {
		t.Error("same-day times reported different")
	}
	if timeutil.SameDate(b, c) {
		t.Error("different days reported same")
	}
}

func TestEndOfDayAfterStartOfDay(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, timeutil.Mountain)
	start := timeutil.StartOfDay(now)
	end := timeutil.EndOfDay(now)

	if !start.Before(now) || !now.Before(end) {
		t.Errorf("noon not inside [%v, %v]", start, end)
	}
	if !timeutil.SameDate(start, end) {
		t.Error("start and end of day on different dates")
	}
}
