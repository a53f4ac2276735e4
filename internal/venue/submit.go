package venue

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"courtbooker/internal/metrics"
)

// Submit books one court's worth of the given slots on date. Same-day
// submissions are refused with a warning: the venue handles them
// unreliably while staff reshuffle the day's courts.
func (c *Client) Submit(ctx context.Context, date string, slots []string) error {
	if date == c.now().Format("2006-01-02") {
		c.logger.Warn().Str("date", date).Msg("skipped booking slots for the same date")
		metrics.IncSameDayRefusal()
		return nil
	}

	c.logger.Info().Str("date", date).Strs("slots", slots).Msg("booking time slots")

	form := url.Values{
		"submitBookings": {""},
		"date":           {strings.ReplaceAll(date, "-", "")},
		"act":            {strconv.Itoa(c.activityID)},
		"act_text":       {c.activityName},
		"noOfLunches":    {"0"},
		"containingDiv":  {c.widgetID},
	}
	for _, slot := range slots {
		form.Set(slot, fmt.Sprintf("%d-%s", c.activityID, slot))
	}

	if _, err := c.postForm(ctx, c.baseURL+c.freeCourtsPath, form); err != nil {
		metrics.IncBookingError()
		return fmt.Errorf("book slots on %s: %w", date, err)
	}

	metrics.IncBookingSubmitted()
	if c.notifier != nil {
		c.notifier.BookingSubmitted(date, slots)
	}
	return nil
}
