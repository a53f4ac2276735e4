// Package booking decides which court slots to book, given what the
// caller already holds and what the venue reports as free.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// BookingLister reports the caller's current bookings per date and slot.
type BookingLister interface {
	BookedCounts(ctx context.Context) (BookedCounts, error)
}

// AvailabilityLister reports free slots matching the desired set over a
// lookahead window of days.
type AvailabilityLister interface {
	Availability(ctx context.Context, desired []string, days int) (Availability, error)
}

// Submitter issues one court's worth of booking requests for the given
// slots on a date.
type Submitter interface {
	Submit(ctx context.Context, date string, slots []string) error
}

// Mirror upserts a calendar event summarizing the bookings on a date.
type Mirror interface {
	Upsert(ctx context.Context, date string) error
}

// Rules carries the per-run booking parameters.
type Rules struct {
	// TargetCourts is how many courts per slot the caller wants to hold.
	TargetCourts int
	// LookaheadDays is the availability window scanned by FillGaps.
	LookaheadDays int
	// AheadDays is how far in the future BookAhead places its booking.
	AheadDays int
}

// Reconciler drives one booking run: it compares held bookings against
// venue availability and submits whatever is missing.
type Reconciler struct {
	bookings     BookingLister
	availability AvailabilityLister
	submitter    Submitter
	mirror       Mirror
	rules        Rules
	logger       *zerolog.Logger

	now func() time.Time
}

func NewReconciler(
	bookings BookingLister,
	availability AvailabilityLister,
	submitter Submitter,
	mirror Mirror,
	rules Rules,
	logger *zerolog.Logger,
) *Reconciler {
	if rules.TargetCourts < 1 {
		rules.TargetCourts = 1
	}
	if rules.LookaheadDays < 1 {
		rules.LookaheadDays = 16
	}
	if rules.AheadDays < 1 {
		rules.AheadDays = 14
	}
	return &Reconciler{
		bookings:     bookings,
		availability: availability,
		submitter:    submitter,
		mirror:       mirror,
		rules:        rules,
		logger:       logger,
		now:          time.Now,
	}
}

// FillGaps tops up existing bookings to the target court count. For every
// booked date it computes the deficit slots (held by fewer than the target
// number of courts) and, when the venue reports any of them free, submits
// the full deficit list for that date and mirrors the date to the calendar.
//
// The deficit list is derived from held bookings alone; availability only
// gates the submission. A date missing from availability means nothing is
// free there and is skipped silently. Submission failures are logged and
// the run moves on to the next date; fetch and calendar failures end the
// run.
func (r *Reconciler) FillGaps(ctx context.Context, desired []string) error {
	booked, err := r.bookings.BookedCounts(ctx)
	if err != nil {
		return fmt.Errorf("fetch booked slots: %w", err)
	}
	avail, err := r.availability.Availability(ctx, desired, r.rules.LookaheadDays)
	if err != nil {
		return fmt.Errorf("fetch availability: %w", err)
	}

	r.logger.Info().Msg("checking for bookable slots")
	for _, date := range booked.Dates() {
		deficit := booked.Deficit(date, r.rules.TargetCourts)
		free, ok := avail[date]
		if !ok {
			continue
		}
		if !anyMatch(deficit, free) {
			continue
		}

		if err := r.submitter.Submit(ctx, date, deficit); err != nil {
			r.logger.Error().Err(err).Str("date", date).Strs("slots", deficit).
				Msg("failed to book time slots")
		}
		if err := r.mirror.Upsert(ctx, date); err != nil {
			return fmt.Errorf("mirror %s to calendar: %w", date, err)
		}
	}
	return nil
}

// BookAhead books the desired slots on the date AheadDays from now,
// submitting the whole slot set once per target court, then mirrors that
// date to the calendar. Availability is not consulted: the venue rejects
// whatever is already taken.
func (r *Reconciler) BookAhead(ctx context.Context, desired []string) error {
	date := r.now().AddDate(0, 0, r.rules.AheadDays).Format("2006-01-02")
	r.logger.Info().Str("date", date).Int("courts", r.rules.TargetCourts).
		Strs("slots", desired).Msg("booking ahead")

	for i := 0; i < r.rules.TargetCourts; i++ {
		if err := r.submitter.Submit(ctx, date, desired); err != nil {
			r.logger.Error().Err(err).Str("date", date).Strs("slots", desired).
				Msg("failed to book time slots")
		}
	}
	if err := r.mirror.Upsert(ctx, date); err != nil {
		return fmt.Errorf("mirror %s to calendar: %w", date, err)
	}
	return nil
}

func anyMatch(candidates, free []string) bool {
	freeSet := make(map[string]struct{}, len(free))
	for _, slot := range free {
		freeSet[slot] = struct{}{}
	}
	for _, slot := range candidates {
		if _, ok := freeSet[slot]; ok {
			return true
		}
	}
	return false
}
