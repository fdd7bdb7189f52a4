package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout accepts DD/MM/YYYY with or without leading zeros.
const DateLayout = "2/1/2006"

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a DD/MM/YYYY value as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want DD/MM/YYYY", ErrInvalidDate, s)
	}
	return t, nil
}

// Today truncates now to midnight in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

// ActiveOn reports whether the record's validity window contains day.
// Both bounds are inclusive and either may be absent. Every present bound
// is parsed before comparing, so an unparsable bound always returns an
// ErrInvalidDate error and the record is not active.
func (r RecognitionRecord) ActiveOn(day time.Time) (bool, error) {
	loc := day.Location()
	var start, end time.Time
	if r.HasStartDate() {
		t, err := ParseDate(r.StartDate, loc)
		if err != nil {
			return false, fmt.Errorf("start date: %w", err)
		}
		start = t
	}
	if r.HasEndDate() {
		t, err := ParseDate(r.EndDate, loc)
		if err != nil {
			return false, fmt.Errorf("end date: %w", err)
		}
		end = t
	}
	if !start.IsZero() && start.After(day) {
		return false, nil
	}
	if !end.IsZero() && end.Before(day) {
		return false, nil
	}
	return true, nil
}
