// utils/dates.go
package utils

import "time"

// DisplayLayout matches the pl-PL locale string shown in point histories.
const DisplayLayout = "2.01.2006, 15:04:05"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// FormatDisplay renders t in loc for history entries.
func FormatDisplay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}
