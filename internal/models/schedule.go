package models

import (
	"errors"
	"fmt"
	"time"
)

const scheduleLayout = "2006-01-02 15:04:05"

// ErrInvalidSchedule is returned when an event's date and time fields do not
// combine into a valid start/end pair.
var ErrInvalidSchedule = errors.New("invalid event schedule")

// Schedule reads the event's date and time fields as wall-clock time in loc
// and returns the start and end instants in UTC. A nil loc means UTC.
func (e Event) Schedule(loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err = time.ParseInLocation(scheduleLayout, e.StartDate+" "+e.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start: %w", ErrInvalidSchedule, err)
	}
	end, err = time.ParseInLocation(scheduleLayout, e.EndDate+" "+e.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end: %w", ErrInvalidSchedule, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: ends before it starts", ErrInvalidSchedule)
	}
	return start.UTC(), end.UTC(), nil
}
