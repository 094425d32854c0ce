package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayWindow is the working window for one weekday.
type DayWindow struct {
	Working bool   `json:"working"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
}

// WeekSchedule holds the working-hours configuration for the whole company.
// Days is indexed by time.Weekday (Sunday = 0).
type WeekSchedule struct {
	Days         [7]DayWindow `json:"days"`
	GraceMinutes int          `json:"grace_minutes"` // late tolerance after Start
	Timezone     string       `json:"timezone"`      // IANA name, e.g. "Europe/Madrid"
}

// Location resolves the schedule timezone, falling back to UTC.
func (s WeekSchedule) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateAnchor returns 00:00 of t's calendar day in the schedule timezone.
// Attendance rows are keyed by this date.
func (s WeekSchedule) DateAnchor(t time.Time) time.Time {
	local := t.In(s.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Location())
}

// WithinWorkingHours reports whether t falls inside the configured window for
// its weekday. Start is inclusive, End exclusive. Holiday checks are the
// caller's concern.
func (s WeekSchedule) WithinWorkingHours(t time.Time) (bool, error) {
	local := t.In(s.Location())
	day := s.Days[local.Weekday()]
	if !day.Working {
		return false, nil
	}
	startMins, err := parseClock(day.Start)
	if err != nil {
		return false, fmt.Errorf("schedule %s start: %w", local.Weekday(), err)
	}
	endMins, err := parseClock(day.End)
	if err != nil {
		return false, fmt.Errorf("schedule %s end: %w", local.Weekday(), err)
	}
	nowMins := local.Hour()*60 + local.Minute()
	return nowMins >= startMins && nowMins < endMins, nil
}

// LateBy returns how many minutes past the window start (plus grace) t is.
// Zero means on time.
func (s WeekSchedule) LateBy(t time.Time) int {
	local := t.In(s.Location())
	day := s.Days[local.Weekday()]
	if !day.Working {
		return 0
	}
	startMins, err := parseClock(day.Start)
	if err != nil {
		return 0
	}
	nowMins := local.Hour()*60 + local.Minute()
	late := nowMins - (startMins + s.GraceMinutes)
	if late < 0 {
		return 0
	}
	return late
}

// DefaultWeekSchedule is Monday-Friday 09:00-18:00 with the given late
// tolerance (5 minutes when non-positive).
func DefaultWeekSchedule(tz string, graceMinutes int) WeekSchedule {
	if graceMinutes <= 0 {
		graceMinutes = 5
	}
	s := WeekSchedule{GraceMinutes: graceMinutes, Timezone: tz}
	for d := time.Monday; d <= time.Friday; d++ {
		s.Days[d] = DayWindow{Working: true, Start: "09:00", End: "18:00"}
	}
	return s
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %q", v)
	}
	return hour*60 + minute, nil
}

// ClockMinutes is the exported form of parseClock for request validation.
func ClockMinutes(v string) (int, error) { return parseClock(v) }
