// Package venue talks to the booking site: it scrapes availability and
// the caller's booking list, and submits reservation forms, all through
// the caller's browser session cookies.
package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"courtbooker/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notifier receives a message after a booking submission goes through.
type Notifier interface {
	BookingSubmitted(date string, slots []string)
}

// Client wraps the venue's reservation endpoints. Requests go out one at
// a time, spaced by the limiter; the site is a shared WordPress install
// and hammering it gets sessions dropped.
type Client struct {
	baseURL        string
	freeCourtsPath string
	bookingsPath   string
	activityID     int
	activityName   string
	widgetID       string
	userAgent      string

	httpClient *http.Client
	limiter    *rate.Limiter
	notifier   Notifier
	logger     *zerolog.Logger

	now func() time.Time
}

func NewClient(cfg config.Venue, cookies []*http.Cookie, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse venue base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(base, cookies)

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		freeCourtsPath: cfg.FreeCourtsPath,
		bookingsPath:   cfg.BookingsPath,
		activityID:     cfg.ActivityID,
		activityName:   cfg.ActivityName,
		widgetID:       cfg.WidgetID,
		userAgent:      cfg.UserAgent,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// SetNotifier wires an optional notifier for successful submissions.
func (c *Client) SetNotifier(n Notifier) {
	c.notifier = n
}

// ParseCookies decodes the session cookies from their environment form,
// a JSON object of cookie name to value.
func ParseCookies(raw string) ([]*http.Cookie, error) {
	if raw == "" {
		return nil, fmt.Errorf("no session cookies provided")
	}
	var pairs map[string]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("parse cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(pairs))
	for name, value := range pairs {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	sort.Slice(cookies, func(i, j int) bool { return cookies[i].Name < cookies[j].Name })
	return cookies, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseDocument unescapes the venue's entity-encoded HTML fragments
// before handing them to the parser.
func parseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(string(body))))
}
