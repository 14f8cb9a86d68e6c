package domain

import (
	"fmt"
	"time"
)

// AODNEpoch is the reference instant of the raw TIME variable.
var AODNEpoch = time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)

// EpochOffsetSeconds is the number of seconds between 1970-01-01 and 1985-01-01.
const EpochOffsetSeconds = 473385600.0

const secondsPerDay = 86400.0

// DateLayout is the compact YYYYMMDDHH form used for the date window.
const DateLayout = "2006010215"

// DaysToUnix converts raw days-since-1985 to seconds since 1970.
func DaysToUnix(days float64) float64 {
	return days*secondsPerDay + EpochOffsetSeconds
}

// UnixToDays converts seconds since 1970 to raw days-since-1985.
func UnixToDays(sec float64) float64 {
	return (sec - EpochOffsetSeconds) / secondsPerDay
}

// TimeToDays expresses a calendar instant in raw days-since-1985.
func TimeToDays(t time.Time) float64 {
	return t.Sub(AODNEpoch).Seconds() / secondsPerDay
}

// ParseDate parses a YYYYMMDDHH string as a UTC instant.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DateWindow is an inclusive calendar interval.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Days returns the window bounds in raw days-since-1985.
func (w DateWindow) Days() (float64, float64) {
	return TimeToDays(w.Start), TimeToDays(w.End)
}
