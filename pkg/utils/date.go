package utils

import (
	"time"
)

// TimestampLayout is the ISO-8601 layout used for persisted timestamps.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
