// Package calendar mirrors confirmed court bookings into Google Calendar
// as one event per date.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"courtbooker/internal/booking"
	"courtbooker/internal/config"
	"courtbooker/internal/metrics"

	"github.com/rs/zerolog"
	gcal "google.golang.org/api/calendar/v3"
)

// bookingSource re-fetches the authoritative booked counts; the mirror
// never trusts what the run thinks it just booked.
type bookingSource interface {
	BookedCounts(ctx context.Context) (booking.BookedCounts, error)
}

// eventsAPI is the slice of the Calendar API the mirror needs.
type eventsAPI interface {
	list(ctx context.Context, from, to time.Time) ([]*gcal.Event, error)
	insert(ctx context.Context, event *gcal.Event) (*gcal.Event, error)
	update(ctx context.Context, id string, event *gcal.Event) (*gcal.Event, error)
}

// Mirror upserts one calendar event per booked date: a contiguous block
// from the earliest booked slot, annotated with per-slot court counts.
// Events are matched by a keyword in the summary, so reruns update the
// same event instead of stacking duplicates.
type Mirror struct {
	bookings  bookingSource
	events    eventsAPI
	newEvents func(ctx context.Context) (eventsAPI, error)

	keyword         string
	timezone        string
	location        string
	description     string
	reminderMinutes int
	attendees       []string

	loc    *time.Location
	logger *zerolog.Logger
	now    func() time.Time
}

func NewMirror(cfg config.Calendar, bookings bookingSource, attendees []string, logger *zerolog.Logger) (*Mirror, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load calendar timezone: %w", err)
	}
	return &Mirror{
		bookings: bookings,
		newEvents: func(ctx context.Context) (eventsAPI, error) {
			svc, err := newService(ctx, cfg.CredentialsFile, cfg.TokenFile)
			if err != nil {
				return nil, err
			}
			return &googleEvents{svc: svc, calendarID: cfg.CalendarID}, nil
		},
		keyword:         cfg.EventKeyword,
		timezone:        cfg.Timezone,
		location:        cfg.Location,
		description:     cfg.Description,
		reminderMinutes: cfg.ReminderMinutes,
		attendees:       attendees,
		loc:             loc,
		logger:          logger,
		now:             time.Now,
	}, nil
}

// Upsert writes the event for date. Same-day mirroring is refused like
// same-day booking; a date with nothing booked is logged and skipped.
func (m *Mirror) Upsert(ctx context.Context, date string) error {
	if date == m.now().In(m.loc).Format("2006-01-02") {
		m.logger.Warn().Str("date", date).Msg("skipped creating event for the same date")
		metrics.IncSameDayRefusal()
		return nil
	}

	booked, err := m.bookings.BookedCounts(ctx)
	if err != nil {
		return fmt.Errorf("fetch booked slots: %w", err)
	}
	slots := booked[date]
	if len(slots) == 0 {
		m.logger.Error().Str("date", date).Msg("nothing booked on date, skipped creating event")
		return nil
	}

	day, err := time.ParseInLocation("2006-01-02", date, m.loc)
	if err != nil {
		return fmt.Errorf("parse event date %q: %w", date, err)
	}

	labels := make([]string, 0, len(slots))
	for label := range slots {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	first, err := time.Parse("15:04", labels[0])
	if err != nil {
		return fmt.Errorf("parse slot label %q: %w", labels[0], err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), first.Hour(), first.Minute(), 0, 0, m.loc)
	end := start.Add(time.Duration(len(labels)) * time.Hour)

	courts := make([]int, len(labels))
	for i, label := range labels {
		courts[i] = slots[label]
	}

	api, err := m.api(ctx)
	if err != nil {
		return fmt.Errorf("calendar service: %w", err)
	}

	existing, err := api.list(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("list events on %s: %w", date, err)
	}

	event := m.eventBody(start, end, courts)
	for _, ev := range existing {
		if !strings.Contains(ev.Summary, m.keyword) {
			continue
		}
		updated, err := api.update(ctx, ev.Id, event)
		if err != nil {
			return fmt.Errorf("update event on %s: %w", date, err)
		}
		metrics.IncCalendarUpsert("updated")
		m.logger.Info().Str("summary", updated.Summary).
			Str("start", event.Start.DateTime).Str("end", event.End.DateTime).
			Msg("updated event")
		return nil
	}

	created, err := api.insert(ctx, event)
	if err != nil {
		return fmt.Errorf("create event on %s: %w", date, err)
	}
	metrics.IncCalendarUpsert("created")
	m.logger.Info().Str("summary", created.Summary).
		Str("start", event.Start.DateTime).Str("end", event.End.DateTime).
		Strs("attendees", m.attendees).
		Msg("created event")
	return nil
}

func (m *Mirror) api(ctx context.Context) (eventsAPI, error) {
	if m.events == nil {
		events, err := m.newEvents(ctx)
		if err != nil {
			return nil, err
		}
		m.events = events
	}
	return m.events, nil
}

func (m *Mirror) eventBody(start, end time.Time, courts []int) *gcal.Event {
	attendees := make([]*gcal.EventAttendee, len(m.attendees))
	for i, email := range m.attendees {
		attendees[i] = &gcal.EventAttendee{Email: email}
	}

	return &gcal.Event{
		Summary:     fmt.Sprintf("%s %v (A)", m.keyword, courts),
		Description: m.description,
		Location:    m.location,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: m.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: m.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: int64(m.reminderMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		Attendees: attendees,
	}
}
