package persona

import (
	"testing"
	"time"
)

// jst builds a JST wall-clock instant. 2025-06-02 is a Monday.
func jst(day string, hour, min int) time.Time {
	loc := time.FixedZone("JST", 9*3600)
	d, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestSchedule_IsQuiet(t *testing.T) {
	s := NewSchedule(9, DefaultWindows())

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"weekday morning band start", jst("2025-06-02", 10, 0), true},
		{"weekday morning band mid", jst("2025-06-02", 11, 15), true},
		{"weekday morning band end inclusive", jst("2025-06-02", 12, 30), true},
		{"weekday just before morning band", jst("2025-06-02", 9, 59), false},
		{"weekday just after morning band", jst("2025-06-02", 12, 31), false},
		{"weekday lunch gap", jst("2025-06-02", 13, 0), false},
		{"weekday afternoon band start", jst("2025-06-02", 14, 0), true},
		{"weekday afternoon band end inclusive", jst("2025-06-02", 17, 0), true},
		{"weekday just after afternoon band", jst("2025-06-02", 17, 1), false},
		{"weekday evening", jst("2025-06-02", 20, 0), false},
		{"weekday midnight", jst("2025-06-02", 0, 0), false},
		{"saturday in band", jst("2025-06-07", 11, 0), false},
		{"sunday in band", jst("2025-06-08", 15, 0), false},
		{"friday afternoon band", jst("2025-06-06", 16, 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsQuiet(tt.at); got != tt.want {
				t.Errorf("IsQuiet(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestSchedule_IsQuiet_ConvertsZones(t *testing.T) {
	s := NewSchedule(9, DefaultWindows())
	// 02:00 UTC Monday == 11:00 JST Monday, inside the morning band.
	utc := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
	if !s.IsQuiet(utc) {
		t.Error("expected quiet for 02:00 UTC (11:00 JST weekday)")
	}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("10:00-12:30")
	if err != nil {
		t.Fatalf("ParseWindow error: %v", err)
	}
	if w.StartHour != 10 || w.StartMin != 0 || w.EndHour != 12 || w.EndMin != 30 {
		t.Errorf("ParseWindow = %+v", w)
	}

	for _, bad := range []string{"", "10:00", "25:00-26:00", "10:61-11:00", "banana"} {
		if _, err := ParseWindow(bad); err == nil {
			t.Errorf("ParseWindow(%q) should fail", bad)
		}
	}
}
