package policy

import (
	"time"

	leaveerrors "flexileave/internal/leave/errors"
)

const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// DateOnly strips the time of day, keeping the calendar date as seen in t's
// own location. The result is midnight UTC so date arithmetic is DST free.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeDays returns the inclusive number of calendar days between start
// and end. The order of the arguments does not matter; rejecting an end
// before the start is the validator's job.
func ComputeDays(start, end time.Time) int {
	diff := dayNumber(end) - dayNumber(start)
	if diff < 0 {
		diff = -diff
	}
	return int(diff) + 1
}

// dayNumber counts calendar days since the Unix epoch. It works on seconds
// rather than time.Duration, which saturates about 292 years out.
func dayNumber(t time.Time) int64 {
	return DateOnly(t).Unix() / secondsPerDay
}

func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return DateOnly(t).Format(DateLayout)
}
