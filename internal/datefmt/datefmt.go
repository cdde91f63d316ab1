// Package datefmt renders event dates and times for listings.
// Day arithmetic is done on UTC calendar days.
package datefmt

import (
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysFromToday counts calendar days from ref to date; negative for past dates
func DaysFromToday(date, ref time.Time) int {
	return int(utcDay(date).Sub(utcDay(ref)) / day)
}

// IsWithinNextWeek reports whether date is 0 to 6 days after ref
func IsWithinNextWeek(date, ref time.Time) bool {
	days := DaysFromToday(date, ref)
	return days >= 0 && days < 7
}

// FormatEventDate gives the weekday for events in the coming week ("Monday"), else "Jan 2"
func FormatEventDate(date, ref time.Time) string {
	if IsWithinNextWeek(date, ref) {
		return date.UTC().Weekday().String()
	}
	return date.UTC().Format("Jan 2")
}

// FormatEventDateDetailed renders "Monday, January 2, 2006"
func FormatEventDateDetailed(date time.Time) string {
	return date.Format("Monday, January 2, 2006")
}

// FormatEventTime renders "7:00 PM"; empty for nil
func FormatEventTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("3:04 PM")
}

// FormatClockTime renders an "HH:MM" or "HH:MM:SS" string as "7:00 PM". Unparsable input yields "".
func FormatClockTime(clock string) string {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return ""
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return ""
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return ""
	}

	t := time.Date(2000, 1, 1, hours, minutes, 0, 0, time.UTC)
	return FormatEventTime(&t)
}

// FormatEventTimeRange renders "7:00 PM - 9:00 PM", only the start when end is nil, and "" without a start
func FormatEventTimeRange(start, end *time.Time) string {
	if start == nil {
		return ""
	}
	if end == nil {
		return FormatEventTime(start)
	}
	return FormatEventTime(start) + " - " + FormatEventTime(end)
}
