package venue

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtbooker/internal/booking"
	"courtbooker/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVenueConfig(baseURL string) config.Venue {
	return config.Venue{
		BaseURL:           baseURL,
		FreeCourtsPath:    "/free",
		BookingsPath:      "/bookings",
		ActivityID:        2,
		ActivityName:      "Badminton",
		WidgetID:          "reserve_lanes_1",
		UserAgent:         "test-agent",
		RequestsPerSecond: 1000,
		RequestBurst:      100,
	}
}

func newTestClient(t *testing.T, baseURL string, cookies []*http.Cookie) *Client {
	t.Helper()
	logger := zerolog.New(io.Discard)
	client, err := NewClient(testVenueConfig(baseURL), cookies, &logger)
	require.NoError(t, err)
	return client
}

func TestFreeSlots(t *testing.T) {
	fragment := `
<div class="book-group">
  <div class="book-item"><input name="17:00" type="checkbox"></div>
  <div class="book-item last-free-lane"><input name="18:00" type="checkbox"></div>
  <div class="book-item"><input name="20:00" type="checkbox"></div>
</div>`

	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		// The venue returns entity-encoded fragments.
		fmt.Fprint(w, html.EscapeString(fragment))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	free, err := client.FreeSlots(context.Background(), "2024-06-10", []string{"17:00", "18:00", "19:00"})
	require.NoError(t, err)

	// 20:00 is free but not desired; 19:00 is desired but not free.
	// The last-free-lane marker must not alter the 18:00 label.
	assert.Equal(t, []string{"17:00", "18:00"}, free)

	assert.Equal(t, []string{"reserve_lanes_1"}, gotForm["containingDiv"])
	assert.Equal(t, []string{"2"}, gotForm["activity"])
	assert.Equal(t, []string{"2024-06-10"}, gotForm["date"])
	assert.Contains(t, gotForm, "searchFreeLanes")
	assert.Contains(t, gotForm, "psDate")
	assert.Contains(t, gotForm, "psActId")
	assert.Contains(t, gotForm, "psHour")
}

func TestFreeSlotsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.FreeSlots(context.Background(), "2024-06-10", []string{"17:00"})
	assert.ErrorContains(t, err, "http 502")
}

func TestAvailabilitySkipsWeekends(t *testing.T) {
	var dates []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		date := r.PostForm.Get("date")
		dates = append(dates, date)

		if date == "2024-06-05" {
			fmt.Fprint(w, `<div class="book-item"><input name="17:00"></div>`)
			return
		}
		fmt.Fprint(w, `<div class="book-group"></div>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	// Monday.
	client.now = func() time.Time {
		return time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	}

	avail, err := client.Availability(context.Background(), []string{"17:00"}, 7)
	require.NoError(t, err)

	// Mon Jun 3 through Sun Jun 9: Saturday the 8th and Sunday the 9th
	// are never fetched.
	assert.Equal(t, []string{
		"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06", "2024-06-07",
	}, dates)

	// Only the date with a matching free slot gets an entry.
	assert.Equal(t, booking.Availability{"2024-06-05": {"17:00"}}, avail)
}

func TestAvailabilityPropagatesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	client.now = func() time.Time {
		return time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	}

	_, err := client.Availability(context.Background(), []string{"17:00"}, 3)
	assert.Error(t, err)
}
