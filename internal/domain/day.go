package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date")
)

const DayLayout = "2006-01-02"

// Extended and basic ISO-8601 calendar dates. Week and ordinal dates are not accepted.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DayLayout,
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102",
}

// ParseDay accepts an ISO-8601 date or date-time and returns midnight of
// the calendar day it names, expressed in loc. The time of day and offset of
// the input only matter for picking the calendar day.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return StartOfDay(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// StartOfDay keeps the calendar day of t as written and anchors it at 00:00 in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayBounds returns [00:00:00.000, 23:59:59.999] of the day now falls on in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now.In(loc), loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// WeekAgo is the lower bound of the rolling weekly window.
func WeekAgo(now time.Time) time.Time {
	return now.AddDate(0, 0, -7)
}
