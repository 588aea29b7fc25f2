// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// NextDayWindow returns [tomorrow 00:00, day after 00:00) in t's location.
func NextDayWindow(t time.Time) (time.Time, time.Time) {
	start := BeginningOfDay(t).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 1)
}
