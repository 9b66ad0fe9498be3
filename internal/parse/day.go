package parse

import (
	"fmt"
	"strings"
	"time"
)

// dayAliases maps the naming conventions seen in schedule imports
// (full names and three-letter abbreviations, any case) to weekdays.
var dayAliases = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// Day normalizes a single weekday label to a time.Weekday.
func Day(raw string) (time.Weekday, error) {
	d, ok := dayAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unrecognized weekday: %q", raw)
	}
	return d, nil
}

// DayName returns the canonical storage form of a weekday ("monday", ...).
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// DayList normalizes a comma-separated day-set ("Mon, wednesday") into
// canonical names, de-duplicated, in the order first seen. The set must
// be non-empty.
func DayList(raw string) ([]string, error) {
	var days []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := Day(part)
		if err != nil {
			return nil, err
		}
		name := DayName(d)
		if !seen[name] {
			seen[name] = true
			days = append(days, name)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("empty day set: %q", raw)
	}
	return days, nil
}
