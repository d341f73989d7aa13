package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at 00:00 UTC.
// The wall-clock date in t's own location is kept.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b.
// It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// Clock is a time of day in minutes after midnight, 0 through 1440.
type Clock int

// MinutesPerDay is the upper bound of a Clock; 24:00 is a valid end time.
const MinutesPerDay = 24 * 60

// NewClock builds a Clock from hours and minutes.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM" (24-hour) into a Clock. "24:00" is accepted as
// the end of the day.
func ParseClock(s string) (Clock, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	// time.Parse alone would also take a one-digit hour.
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: invalid time %q, want HH:MM", ErrValidation, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q, want HH:MM", ErrValidation, s)
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// Add returns c shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// Valid reports whether c lies within a single day.
func (c Clock) Valid() bool { return c >= 0 && c <= MinutesPerDay }

// On returns the instant on the given date at this time of day, in UTC.
func (c Clock) On(date time.Time) time.Time {
	return DateOf(date).Add(time.Duration(c) * time.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText encodes the clock as "HH:MM".
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes an "HH:MM" string.
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
