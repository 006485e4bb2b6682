package calendar

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// WeekWindow returns the Monday 00:00:00 and Sunday 23:59:59 bounding the
// week that contains ref, in ref's location.
func WeekWindow(ref time.Time) (weekStart, weekEnd time.Time) {
	weekStart = StartOfDay(ref).AddDate(0, 0, -mondayIndex(ref.Weekday()))
	y, m, d := weekStart.Date()
	weekEnd = time.Date(y, m, d+6, 23, 59, 59, 0, weekStart.Location())
	return weekStart, weekEnd
}

// WeekStart is WeekWindow without the end.
func WeekStart(ref time.Time) time.Time {
	start, _ := WeekWindow(ref)
	return start
}

// LastWeekStart is the Monday of the week before the one containing now, at
// midnight in loc.
func LastWeekStart(now time.Time, loc *time.Location) time.Time {
	return WeekStartWithOffset(now, loc, 0)
}

// WeekStartWithOffset returns the Monday of the week (offset+1) weeks before the
// current one. Offset 0 is last week, 1 the week before, and so on.
func WeekStartWithOffset(now time.Time, loc *time.Location, offset int) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return WeekStart(now).AddDate(0, 0, -7*(offset+1))
}

// StartOfDay truncates t to 00:00:00 in its own location. time.Truncate works
// on absolute time and would cut at UTC midnight instead.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return StartOfDay(now)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", value, err)
	}
	return d, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// monday = 0 ... sunday = 6
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
