package booking

import "sort"

// BookedCounts maps a date (YYYY-MM-DD) to the slot labels the caller
// already holds on that date and how many courts each label covers.
// It is rebuilt from the venue's booking page on every run.
type BookedCounts map[string]map[string]int

// Availability maps a date to the free slot labels that matched the
// desired set. A date with nothing free has no entry at all.
type Availability map[string][]string

// Dates returns the booked dates in ascending order.
func (b BookedCounts) Dates() []string {
	dates := make([]string, 0, len(b))
	for date := range b {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Deficit returns the slots on date held by fewer than target courts,
// sorted so submissions and logs come out deterministic.
func (b BookedCounts) Deficit(date string, target int) []string {
	var slots []string
	for slot, held := range b[date] {
		if held < target {
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)
	return slots
}
