package venue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"courtbooker/internal/booking"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// BookedCounts scrapes the caller's booking list and returns, per date,
// how many courts are held for each hourly slot. A two-hour booking of
// one court becomes two slot entries with count one; two bookings over
// the same hour accumulate.
func (c *Client) BookedCounts(ctx context.Context) (booking.BookedCounts, error) {
	c.logger.Info().Msg("fetching booked time slots")

	body, err := c.get(ctx, c.baseURL+c.bookingsPath)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings page: %w", err)
	}
	doc, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parse bookings page: %w", err)
	}

	counts, err := parseBookedCounts(doc, c.now())
	if err != nil {
		return nil, err
	}

	c.logger.Info().Interface("booked", counts).Msg("booked slots")
	return counts, nil
}

// parseBookedCounts walks the booking table rows. Each row's first cell
// holds the date ("Idag" for today, otherwise a weekday line over a
// "DD/MM" line, year implied current), the second the start time over a
// duration like "2 tim".
func parseBookedCounts(doc *goquery.Document, now time.Time) (booking.BookedCounts, error) {
	counts := make(booking.BookedCounts)

	var parseErr error
	doc.Find("tr.values").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")

		date, err := rowDate(cells.Eq(0), now)
		if err != nil {
			parseErr = fmt.Errorf("bookings row %d: %w", i, err)
			return false
		}
		start, hours, err := rowTime(cells.Eq(1))
		if err != nil {
			parseErr = fmt.Errorf("bookings row %d: %w", i, err)
			return false
		}

		if counts[date] == nil {
			counts[date] = make(map[string]int)
		}
		for h := 0; h < hours; h++ {
			label := start.Add(time.Duration(h) * time.Hour).Format("15:04")
			counts[date][label]++
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return counts, nil
}

func rowDate(cell *goquery.Selection, now time.Time) (string, error) {
	texts := textNodes(cell)
	if len(texts) == 0 {
		return "", fmt.Errorf("empty date cell")
	}
	if texts[0] == "Idag" {
		return now.Format("2006-01-02"), nil
	}

	raw := texts[len(texts)-1]
	t, err := time.Parse("2/1", raw)
	if err != nil {
		return "", fmt.Errorf("parse booking date %q: %w", raw, err)
	}
	return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location()).Format("2006-01-02"), nil
}

func rowTime(cell *goquery.Selection) (time.Time, int, error) {
	texts := textNodes(cell)
	if len(texts) < 2 {
		return time.Time{}, 0, fmt.Errorf("time cell has %d text lines, want start time and duration", len(texts))
	}

	start, err := time.Parse("15:04", texts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("parse booking start %q: %w", texts[0], err)
	}
	hours, err := leadingInt(texts[len(texts)-1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("parse booking duration %q: %w", texts[len(texts)-1], err)
	}
	return start, hours, nil
}

// textNodes returns the trimmed, non-empty text children of a cell,
// skipping element nodes like the <br> between the lines.
func textNodes(sel *goquery.Selection) []string {
	var texts []string
	for _, n := range sel.Contents().Nodes {
		if n.Type != html.TextNode {
			continue
		}
		if t := strings.TrimSpace(n.Data); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no leading digits in %q", s)
	}
	return strconv.Atoi(s[:end])
}
