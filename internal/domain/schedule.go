package domain

import (
	"fmt"
	"strings"
	"time"
)

// SlotMinutes is the fixed slot granularity.
const SlotMinutes = 30

const (
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Weekday numbering used across the service: 1=Sunday ... 7=Saturday.
const (
	Sunday    = 1
	Monday    = 2
	Tuesday   = 3
	Wednesday = 4
	Thursday  = 5
	Friday    = 6
	Saturday  = 7
)

// WeekdayOf maps a calendar date to the 1=Sunday..7=Saturday numbering.
// time.Weekday already counts from Sunday=0, so the shift is +1.
func WeekdayOf(date time.Time) int {
	return int(date.Weekday()) + 1
}

func ValidWeekday(day int) bool {
	return day >= Sunday && day <= Saturday
}

// DateOf drops the time-of-day component and pins the date to UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q, ожидается YYYY-MM-DD: %w", s, ErrInvalidInput)
	}
	return d, nil
}

// ClockTime is a wall-clock time of day in minutes since midnight.
type ClockTime int

func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	// values read back from a TIME column carry seconds
	if len(s) == 8 && strings.HasSuffix(s, ":00") {
		s = s[:5]
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("неверный формат времени %q, ожидается HH:MM: %w", s, ErrInvalidInput)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) Add(minutes int) ClockTime {
	return c + ClockTime(minutes)
}

// OnGrid reports whether c sits on the slot grid anchored at start.
func (c ClockTime) OnGrid(start ClockTime) bool {
	return c >= start && int(c-start)%SlotMinutes == 0
}

// On combines a date with the time of day in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(text []byte) error {
	v, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

type WeeklyScheduleRule struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime ClockTime `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime   ClockTime `json:"end_time" swaggertype:"string" example:"17:00"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FirstActiveRule returns the first active rule for the weekday, in the order
// given. Duplicate rules for one doctor-day are tolerated.
func FirstActiveRule(rules []WeeklyScheduleRule, weekday int) (WeeklyScheduleRule, bool) {
	for _, r := range rules {
		if r.Active && r.DayOfWeek == weekday {
			return r, true
		}
	}
	return WeeklyScheduleRule{}, false
}

type CreateScheduleRuleDTO struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
	Active    *bool  `json:"active"`
}

type UpdateScheduleRuleDTO struct {
	StartTime *string `json:"start_time,omitempty" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time,omitempty" binding:"omitempty,clock"`
	Active    *bool   `json:"active,omitempty"`
}
