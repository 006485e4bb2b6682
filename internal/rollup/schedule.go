package rollup

import (
	"fmt"
	"time"
)

// Schedule fires once a week at Weekday Hour:Minute in Location.
type Schedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

func (s Schedule) Validate() error {
	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday: %d", s.Weekday)
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("invalid hour: %d", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("invalid minute: %d", s.Minute)
	}
	return nil
}

// Next returns the first firing time strictly after after.
func (s Schedule) Next(after time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc)
	y, m, d := t.Date()
	for i := 0; i <= 7; i++ {
		candidate := time.Date(y, m, d+i, s.Hour, s.Minute, 0, 0, loc)
		if candidate.Weekday() == s.Weekday && candidate.After(t) {
			return candidate
		}
	}
	// unreachable for a valid schedule
	return time.Date(y, m, d+7, s.Hour, s.Minute, 0, 0, loc)
}

func (s Schedule) String() string {
	return fmt.Sprintf("%s %02d:%02d %s", s.Weekday, s.Hour, s.Minute, s.Location)
}
