package services

import (
	"time"

	"github.com/yukikurage/study-tracker-api/internal/gamification"
)

// Clock returns the current instant.
type Clock func() time.Time

// Calendar turns instants into calendar dates in a fixed time zone.
type Calendar struct {
	now      Clock
	location *time.Location
}

// NewCalendar creates a Calendar. A nil clock means time.Now and a nil
// location means time.Local.
func NewCalendar(now Clock, location *time.Location) Calendar {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return Calendar{now: now, location: location}
}

// Now returns the current instant in the calendar's zone.
func (c Calendar) Now() time.Time {
	return c.now().In(c.location)
}

// Today returns the current date as YYYY-MM-DD.
func (c Calendar) Today() string {
	return gamification.DateIn(c.now(), c.location)
}
