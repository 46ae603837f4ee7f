package timeutil

import (
	"time"
)

// Mountain is the company operating timezone (America/Edmonton).
// Service dates are calendar days in this zone regardless of where
// the server runs.
var Mountain *time.Location

func init() {
	var err error
	Mountain, err = time.LoadLocation("America/Edmonton")
	if err != nil {
		// Fallback: fixed MST if the tz database is unavailable
		Mountain = time.FixedZone("MST", -7*60*60)
	}
}

// Now returns the current time in the company timezone
func Now() time.Time {
	return time.Now().In(Mountain)
}

// ToMountain converts any time to the company timezone
func ToMountain(t time.Time) time.Time {
	return t.In(Mountain)
}

// ParseDate parses a YYYY-MM-DD service date in the company timezone
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, Mountain)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DateOnly truncates a time to its calendar day in the company timezone
func DateOnly(t time.Time) time.Time {
	mt := t.In(Mountain)
	return time.Date(mt.Year(), mt.Month(), mt.Day(), 0, 0, 0, 0, Mountain)
}

// SameDate reports whether two times fall on the same calendar day
// in the company timezone
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// StartOfDay returns the start of day (00:00:00) for the given time
func StartOfDay(t time.Time) time.Time {
	return DateOnly(t)
}

// EndOfDay returns the end of day (23:59:59.999999999) for the given time
func EndOfDay(t time.Time) time.Time {
	mt := t.In(Mountain)
	return time.Date(mt.Year(), mt.Month(), mt.Day(), 23, 59, 59, 999999999, Mountain)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
