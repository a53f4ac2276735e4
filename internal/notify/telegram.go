// Package notify pushes booking confirmations to a Telegram chat.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the slice of the Telegram API the notifier uses. It is
// satisfied by *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends a short message to a fixed chat after every successful
// submission.
type Telegram struct {
	tg     sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegram(token string, chatID int64, logger *zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{tg: api, chatID: chatID, logger: logger}, nil
}

// newWithSender allows injecting a mocked Telegram client for tests.
func newWithSender(tg sender, chatID int64, logger *zerolog.Logger) *Telegram {
	return &Telegram{tg: tg, chatID: chatID, logger: logger}
}

// BookingSubmitted reports a submission for date. Delivery failures are
// logged and swallowed: a missed message must not fail the run.
func (t *Telegram) BookingSubmitted(date string, slots []string) {
	text := fmt.Sprintf("Booked badminton on %s: %s", date, strings.Join(slots, ", "))
	if _, err := t.tg.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.logger.Error().Err(err).Str("date", date).Msg("failed to send telegram message")
	}
}
