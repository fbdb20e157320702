package utils

import (
	"fmt"
	"time"

	"github.com/averyross/scorecard/internal/constants"
)

// ParseDate parses a date string in the standard format (YYYY-MM-DD).
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t, nil
}

// FormatDate renders a time as a standard date string (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns the current date string using the given clock.
func Today(now func() time.Time) string {
	return FormatDate(now())
}

// AddDays shifts a date string by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// WeekMonday returns the Monday of the week containing the given date.
// Weeks run Monday through Sunday, so a Sunday maps six days back.
func WeekMonday(dateStr string) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	diff := int(t.Weekday()) - int(time.Monday)
	if t.Weekday() == time.Sunday {
		diff = 6
	}
	return FormatDate(t.AddDate(0, 0, -diff)), nil
}

// WeekSunday returns the Sunday ending the week that starts on the given Monday.
func WeekSunday(mondayStr string) (string, error) {
	return AddDays(mondayStr, 6)
}

// WeekDates enumerates the seven dates of the week starting at the given Monday,
// in ascending order.
func WeekDates(mondayStr string) ([]string, error) {
	t, err := ParseDate(mondayStr)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = FormatDate(t.AddDate(0, 0, i))
	}
	return dates, nil
}

// ValidDate checks if the string matches the standard date format.
func ValidDate(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}

// Timezone returns the IANA name of the local timezone, or "local" when the
// zone has no usable name.
func Timezone() string {
	name, _ := time.Now().Zone()
	if loc := time.Local.String(); loc != "" && loc != "Local" {
		return loc
	}
	if name != "" {
		return name
	}
	return "local"
}
