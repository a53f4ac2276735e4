package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"courtbooker/internal/booking"
	"courtbooker/internal/calendar"
	"courtbooker/internal/config"
	"courtbooker/internal/metrics"
	"courtbooker/internal/notify"
	"courtbooker/internal/slots"
	"courtbooker/internal/venue"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	startTime := flag.String("start-time", "17:00", "first slot to book, HH:MM")
	courts := flag.Int("courts", 2, "courts to hold per slot")
	duration := flag.Int("duration", 2, "session length in whole hours")
	bookCourts := flag.Bool("book-courts", false, "book the desired slots on the furthest bookable date")
	fillCourts := flag.Bool("fill-courts", false, "top up already booked dates to the target court count")
	emailList := flag.String("email-list", "", "comma separated attendee emails for calendar events")
	flag.Parse()

	// Console logger first; the file sink is added once config tells us
	// where it lives.
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("COURTBOOKER_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logFile, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open log file")
	}
	defer logFile.Close()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.Log.Level).Msg("bad log level in config")
	}
	logger = zerolog.New(zerolog.MultiLevelWriter(output, logFile)).
		Level(level).
		With().Timestamp().Str("run_id", uuid.NewString()).Logger()

	desired, err := slots.Sequence(*startTime, *duration)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad slot sequence")
	}

	cookies, err := venue.ParseCookies(os.Getenv("COOKIES"))
	if err != nil {
		logger.Fatal().Err(err).Msg("bad COOKIES value")
	}

	client, err := venue.NewClient(cfg.Venue, cookies, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build venue client")
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init telegram notifier")
		}
		client.SetNotifier(notifier)
	}

	mirror, err := calendar.NewMirror(cfg.Calendar, client, splitEmails(*emailList), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build calendar mirror")
	}

	metrics.Register()

	engine := booking.NewReconciler(client, client, client, mirror, booking.Rules{
		TargetCourts:  *courts,
		LookaheadDays: cfg.Booking.LookaheadDays,
		AheadDays:     cfg.Booking.AheadDays,
	}, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*bookCourts && !*fillCourts {
		logger.Info().Msg("nothing to do: pass -book-courts and/or -fill-courts")
	}

	exitCode := 0
	if *bookCourts {
		if err := engine.BookAhead(ctx, desired); err != nil {
			logger.Error().Err(err).Msg("book ahead failed")
			exitCode = 1
		}
	}
	if *fillCourts {
		if err := engine.FillGaps(ctx, desired); err != nil {
			logger.Error().Err(err).Msg("fill gaps failed")
			exitCode = 1
		}
	}

	if cfg.Monitoring.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metrics.Push(pushCtx, cfg.Monitoring.PushgatewayURL, cfg.Monitoring.Job); err != nil {
			logger.Error().Err(err).Msg("failed to push metrics")
		}
		cancel()
	}

	if exitCode != 0 {
		logFile.Close()
		os.Exit(exitCode)
	}
}

func splitEmails(raw string) []string {
	var emails []string
	for _, part := range strings.Split(raw, ",") {
		if email := strings.TrimSpace(part); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}
