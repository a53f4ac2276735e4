package venue

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"courtbooker/internal/booking"
	"courtbooker/internal/metrics"

	"github.com/PuerkitoBio/goquery"
)

// FreeSlots returns the desired slot labels the venue reports free on
// date. Labels are kept exactly as the site names them; the last-free-lane
// marker is logged and counted but never folded into the label, so set
// membership against the desired slots keeps working.
func (c *Client) FreeSlots(ctx context.Context, date string, desired []string) ([]string, error) {
	form := url.Values{
		"containingDiv":   {c.widgetID},
		"activity":        {strconv.Itoa(c.activityID)},
		"date":            {date},
		"searchFreeLanes": {""},
		"psDate":          {""},
		"psActId":         {""},
		"psHour":          {""},
	}

	body, err := c.postForm(ctx, c.baseURL+c.freeCourtsPath, form)
	if err != nil {
		return nil, fmt.Errorf("fetch free courts for %s: %w", date, err)
	}
	doc, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parse free courts for %s: %w", date, err)
	}

	want := make(map[string]struct{}, len(desired))
	for _, slot := range desired {
		want[slot] = struct{}{}
	}

	var free []string
	doc.Find("div.book-item").Each(func(_ int, item *goquery.Selection) {
		label, ok := item.Find("input").First().Attr("name")
		if !ok {
			return
		}
		if _, ok := want[label]; !ok {
			return
		}
		if item.HasClass("last-free-lane") {
			c.logger.Debug().Str("date", date).Str("slot", label).Msg("last free lane")
			metrics.IncLastFreeLane()
		}
		free = append(free, label)
	})
	return free, nil
}

// Availability sweeps the next days starting today and collects the free
// desired slots per date. Weekends are skipped, and dates with nothing
// free get no entry at all.
func (c *Client) Availability(ctx context.Context, desired []string, days int) (booking.Availability, error) {
	c.logger.Info().Int("days", days).Msg("fetching available time slots")

	avail := make(booking.Availability)
	today := c.now()
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		key := date.Format("2006-01-02")
		free, err := c.FreeSlots(ctx, key, desired)
		if err != nil {
			return nil, err
		}
		if len(free) > 0 {
			avail[key] = free
		}
	}

	c.logger.Info().Interface("available", avail).Msg("available slots")
	return avail, nil
}
