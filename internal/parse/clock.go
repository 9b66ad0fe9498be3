package parse

import (
	"fmt"
	"time"
)

// Clock validates and normalizes an "HH:MM" time-of-day string.
// Zero-padded HH:MM strings order lexicographically, which is what the
// schedule matching relies on.
func Clock(raw string) (string, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: expected HH:MM", raw)
	}
	return t.Format("15:04"), nil
}

// ClockOf formats a timestamp's time-of-day in the canonical HH:MM form.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}
