package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday
var ref = time.Date(2024, time.March, 13, 22, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatEventDate(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"today", date(2024, time.March, 13), "Wednesday"},
		{"tomorrow", date(2024, time.March, 14), "Thursday"},
		{"six days out", date(2024, time.March, 19), "Tuesday"},
		{"seven days out", date(2024, time.March, 20), "Mar 20"},
		{"yesterday", date(2024, time.March, 12), "Mar 12"},
		{"next year", date(2025, time.January, 5), "Jan 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEventDate(tt.date, ref))
		})
	}
}

func TestDaysFromToday(t *testing.T) {
	assert.Equal(t, 0, DaysFromToday(date(2024, time.March, 13), ref))
	assert.Equal(t, 1, DaysFromToday(date(2024, time.March, 14), ref))
	assert.Equal(t, -1, DaysFromToday(date(2024, time.March, 12), ref))
	assert.Equal(t, 19, DaysFromToday(date(2024, time.April, 1), ref))

	// A late-evening reference in another zone still counts UTC days
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, 0, DaysFromToday(date(2024, time.March, 14), time.Date(2024, time.March, 13, 20, 0, 0, 0, est)))
}

func TestIsWithinNextWeek(t *testing.T) {
	assert.True(t, IsWithinNextWeek(date(2024, time.March, 13), ref))
	assert.True(t, IsWithinNextWeek(date(2024, time.March, 19), ref))
	assert.False(t, IsWithinNextWeek(date(2024, time.March, 20), ref))
	assert.False(t, IsWithinNextWeek(date(2024, time.March, 1), ref))
}

func TestFormatEventDateDetailed(t *testing.T) {
	assert.Equal(t, "Wednesday, March 13, 2024", FormatEventDateDetailed(date(2024, time.March, 13)))
}

func TestFormatEventTime(t *testing.T) {
	evening := time.Date(2024, time.March, 13, 19, 0, 0, 0, time.UTC)
	morning := time.Date(2024, time.March, 13, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "7:00 PM", FormatEventTime(&evening))
	assert.Equal(t, "9:05 AM", FormatEventTime(&morning))
	assert.Equal(t, "", FormatEventTime(nil))
}

func TestFormatClockTime(t *testing.T) {
	tests := map[string]string{
		"19:00:00": "7:00 PM",
		"00:30":    "12:30 AM",
		"12:00":    "12:00 PM",
		"":         "",
		"25:00":    "",
		"noon":     "",
	}

	for input, want := range tests {
		assert.Equal(t, want, FormatClockTime(input), "input %q", input)
	}
}

func TestFormatEventTimeRange(t *testing.T) {
	start := time.Date(2024, time.March, 13, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 13, 21, 0, 0, 0, time.UTC)

	assert.Equal(t, "7:00 PM - 9:00 PM", FormatEventTimeRange(&start, &end))
	assert.Equal(t, "7:00 PM", FormatEventTimeRange(&start, nil))
	assert.Equal(t, "", FormatEventTimeRange(nil, &end))
}
