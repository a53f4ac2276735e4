// Package slots expands a start time and duration into the hourly slot
// labels the venue uses to identify courts.
package slots

import (
	"fmt"
	"time"
)

// Sequence returns duration consecutive hourly labels starting at start
// ("17:00" for 2 hours gives ["17:00", "18:00"]). Sequences that would run
// past midnight are rejected: slot labels carry no date, so a wrapped label
// would silently land on the wrong day downstream.
func Sequence(start string, duration int) ([]string, error) {
	t, err := time.Parse("15:04", start)
	if err != nil {
		return nil, fmt.Errorf("parse start time %q: %w", start, err)
	}
	if duration < 1 {
		return nil, fmt.Errorf("duration must be at least one hour, got %d", duration)
	}
	if t.Hour()*60+t.Minute()+duration*60 > 24*60 {
		return nil, fmt.Errorf("%d hour(s) starting at %s runs past midnight", duration, start)
	}

	labels := make([]string, duration)
	for i := range labels {
		labels[i] = t.Add(time.Duration(i) * time.Hour).Format("15:04")
	}
	return labels, nil
}
