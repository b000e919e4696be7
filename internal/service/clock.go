package service

import (
	"time"

	"clinic/internal/domain"
)

// Clock supplies the current instant and the clinic's wall-clock zone.
// Stored dates and times are interpreted in Location.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c systemClock) Location() *time.Location {
	return c.loc
}

// today is the clinic-local calendar date as a UTC-midnight value.
func today(c Clock) time.Time {
	return domain.DateOf(c.Now().In(c.Location()))
}
