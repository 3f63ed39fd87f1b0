package persona

import (
	"fmt"
	"time"
)

// Window is one daily quiet band with inclusive minute-precision
// bounds.
type Window struct {
	StartHour, StartMin int
	EndHour, EndMin     int
}

func (w Window) contains(hour, min int) bool {
	after := hour > w.StartHour || (hour == w.StartHour && min >= w.StartMin)
	before := hour < w.EndHour || (hour == w.EndHour && min <= w.EndMin)
	return after && before
}

// ParseWindow parses a "10:00-12:30" band.
func ParseWindow(s string) (Window, error) {
	var w Window
	n, err := fmt.Sscanf(s, "%d:%d-%d:%d", &w.StartHour, &w.StartMin, &w.EndHour, &w.EndMin)
	if err != nil || n != 4 {
		return Window{}, fmt.Errorf("invalid quiet window %q (want HH:MM-HH:MM)", s)
	}
	if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 ||
		w.StartMin < 0 || w.StartMin > 59 || w.EndMin < 0 || w.EndMin > 59 {
		return Window{}, fmt.Errorf("quiet window %q out of range", s)
	}
	return w, nil
}

// Schedule decides whether ordinary replies are suppressed at a given
// instant. Times are evaluated in a fixed UTC offset with no DST
// rules, weekdays only.
type Schedule struct {
	loc     *time.Location
	windows []Window
}

func NewSchedule(utcOffsetHours int, windows []Window) Schedule {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return Schedule{
		loc:     time.FixedZone(name, utcOffsetHours*3600),
		windows: windows,
	}
}

// DefaultWindows are the working-hours bands of the persona:
// 10:00-12:30 and 14:00-17:00.
func DefaultWindows() []Window {
	return []Window{
		{StartHour: 10, StartMin: 0, EndHour: 12, EndMin: 30},
		{StartHour: 14, StartMin: 0, EndHour: 17, EndMin: 0},
	}
}

// Location returns the schedule's fixed-offset location, also used for
// local-day and dose-slot computation.
func (s Schedule) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// IsQuiet reports whether t falls in a quiet band on a weekday.
func (s Schedule) IsQuiet(t time.Time) bool {
	local := t.In(s.Location())
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour, min := local.Hour(), local.Minute()
	for _, w := range s.windows {
		if w.contains(hour, min) {
			return true
		}
	}
	return false
}
