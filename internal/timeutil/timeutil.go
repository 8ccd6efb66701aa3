// Package timeutil normalizes user-supplied timestamps to the canonical
// storage form: UTC, whole seconds, literal "Z" suffix.
package timeutil

import (
	"errors"
	"time"
)

// ErrInvalidTimestamp is returned for values that do not parse as a full
// ISO-8601 timestamp.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

const canonical = "2006-01-02T15:04:05Z"

// Layouts accepted on input. RFC3339 also covers fractional seconds and
// explicit numeric offsets; the offset-free layouts are taken as UTC.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Normalize parses a full ISO-8601 timestamp, with or without an explicit
// zone, and returns it converted to UTC in canonical form. A bare
// YYYY-MM-DD date is rejected; use DateBoundary for range parameters.
func Normalize(value string) (string, error) {
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Format(canonical), nil
		}
	}
	return "", ErrInvalidTimestamp
}

// DateBoundary parses a range boundary that is either a bare date or a full
// timestamp. Bare dates expand to the start of day (date_from) or end of day
// (date_to) before normalization.
func DateBoundary(value string, endOfDay bool) (string, error) {
	if isBareDate(value) {
		if endOfDay {
			value += "T23:59:59Z"
		} else {
			value += "T00:00:00Z"
		}
	}
	return Normalize(value)
}

// Now returns the current UTC time in canonical form.
func Now() string {
	return Format(time.Now())
}

// Format renders a time in canonical form.
func Format(t time.Time) string {
	return t.UTC().Format(canonical)
}

func isBareDate(value string) bool {
	return len(value) == 10 && value[4] == '-' && value[7] == '-'
}
