package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// newService builds an authenticated Calendar client from an installed-app
// credentials file. The OAuth token is persisted beside the binary so later
// cron runs refresh it silently; only the first run needs a human.
func newService(ctx context.Context, credentialsFile, tokenFile string) (*gcal.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = tokenFromWeb(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	return gcal.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

// tokenFromWeb walks the installed-app consent flow: the user opens the
// printed URL in a browser and pastes the authorization code back here.
func tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the link in your browser, then paste the authorization code here:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("save calendar token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

// googleEvents binds the narrow eventsAPI surface to the real service.
type googleEvents struct {
	svc        *gcal.Service
	calendarID string
}

func (g *googleEvents) list(ctx context.Context, from, to time.Time) ([]*gcal.Event, error) {
	result, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (g *googleEvents) insert(ctx context.Context, event *gcal.Event) (*gcal.Event, error) {
	return g.svc.Events.Insert(g.calendarID, event).SendUpdates("all").Context(ctx).Do()
}

func (g *googleEvents) update(ctx context.Context, id string, event *gcal.Event) (*gcal.Event, error) {
	return g.svc.Events.Update(g.calendarID, id, event).SendUpdates("all").Context(ctx).Do()
}
