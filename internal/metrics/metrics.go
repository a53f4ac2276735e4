package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	once sync.Once

	bookingSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtbooker",
			Name:      "booking_submitted_total",
			Help:      "Count of booking submissions accepted by the venue.",
		},
	)

	bookingErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtbooker",
			Name:      "booking_errors_total",
			Help:      "Count of booking submissions that failed.",
		},
	)

	sameDayRefusals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtbooker",
			Name:      "same_day_refusals_total",
			Help:      "Count of submissions and mirrors refused for same-day dates.",
		},
	)

	lastFreeLane = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtbooker",
			Name:      "last_free_lane_total",
			Help:      "Count of slots seen carrying the venue's last-free-lane marker.",
		},
	)

	calendarUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtbooker",
			Name:      "calendar_upserts_total",
			Help:      "Count of calendar events written by action.",
		},
		[]string{"action"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSubmitted, bookingErrors, sameDayRefusals, lastFreeLane, calendarUpserts)
	})
}

// Push sends everything gathered so far to a Pushgateway. The binary runs
// to completion, so pushing at exit replaces a scrape endpoint.
func Push(ctx context.Context, gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx)
}

func IncBookingSubmitted() {
	bookingSubmitted.Inc()
}

func IncBookingError() {
	bookingErrors.Inc()
}

func IncSameDayRefusal() {
	sameDayRefusals.Inc()
}

func IncLastFreeLane() {
	lastFreeLane.Inc()
}

func IncCalendarUpsert(action string) {
	calendarUpserts.WithLabelValues(action).Inc()
}
