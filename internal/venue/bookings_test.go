package venue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"courtbooker/internal/booking"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromString(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestParseBookedCounts(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		html     string
		expected booking.BookedCounts
	}{
		{
			name: "today row expands duration into hourly counts",
			html: `<table>
<tr><th>Datum</th><th>Tid</th></tr>
<tr class="values"><td>Idag</td><td>17:00<br>2 tim</td><td>Badminton</td></tr>
</table>`,
			expected: booking.BookedCounts{
				"2024-06-03": {"17:00": 1, "18:00": 1},
			},
		},
		{
			name: "dated rows use the current year and accumulate",
			html: `<table>
<tr class="values"><td>Tor<br>05/09</td><td>17:00<br>2 tim</td><td>Badminton</td></tr>
<tr class="values"><td>Tor<br>05/09</td><td>18:00<br>1 tim</td><td>Badminton</td></tr>
</table>`,
			expected: booking.BookedCounts{
				"2024-09-05": {"17:00": 1, "18:00": 2},
			},
		},
		{
			name: "single digit day and month",
			html: `<table>
<tr class="values"><td>Mån<br>5/8</td><td>09:00<br>1 tim</td><td>Badminton</td></tr>
</table>`,
			expected: booking.BookedCounts{
				"2024-08-05": {"09:00": 1},
			},
		},
		{
			name: "mixed today and dated rows",
			html: `<table>
<tr class="values"><td>Idag</td><td>17:00<br>1 tim</td><td>Badminton</td></tr>
<tr class="values"><td>Fre<br>07/06</td><td>17:00<br>2 tim</td><td>Badminton</td></tr>
</table>`,
			expected: booking.BookedCounts{
				"2024-06-03": {"17:00": 1},
				"2024-06-07": {"17:00": 1, "18:00": 1},
			},
		},
		{
			name:     "no booking rows",
			html:     `<table><tr><td>Inga bokningar</td></tr></table>`,
			expected: booking.BookedCounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts, err := parseBookedCounts(docFromString(t, tt.html), now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, counts)
		})
	}
}

func TestParseBookedCountsErrors(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		html string
	}{
		{
			name: "garbage date",
			html: `<table><tr class="values"><td>Mån<br>inte-ett-datum</td><td>17:00<br>2 tim</td></tr></table>`,
		},
		{
			name: "garbage start time",
			html: `<table><tr class="values"><td>Idag</td><td>sjutton<br>2 tim</td></tr></table>`,
		},
		{
			name: "missing duration line",
			html: `<table><tr class="values"><td>Idag</td><td>17:00</td></tr></table>`,
		},
		{
			name: "duration without digits",
			html: `<table><tr class="values"><td>Idag</td><td>17:00<br>tim</td></tr></table>`,
		},
		{
			name: "empty date cell",
			html: `<table><tr class="values"><td></td><td>17:00<br>2 tim</td></tr></table>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBookedCounts(docFromString(t, tt.html), now)
			assert.Error(t, err)
		})
	}
}

func TestBookedCountsSendsSessionCookies(t *testing.T) {
	page := `<table>
<tr class="values"><td>Idag</td><td>17:00<br>1 tim</td><td>Badminton</td></tr>
</table>`

	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("wordpress_logged_in"); err == nil {
			gotCookie = c.Value
		}
		assert.Equal(t, "test-agent", r.UserAgent())
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	cookies, err := ParseCookies(`{"wordpress_logged_in": "abc123"}`)
	require.NoError(t, err)

	client := newTestClient(t, server.URL, cookies)
	client.now = func() time.Time {
		return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	}

	counts, err := client.BookedCounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "abc123", gotCookie)
	assert.Equal(t, booking.BookedCounts{"2024-06-03": {"17:00": 1}}, counts)
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "2 tim", expected: 2},
		{input: "1 timme", expected: 1},
		{input: "10 tim", expected: 10},
		{input: " 3 tim ", expected: 3},
		{input: "tim", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := leadingInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
