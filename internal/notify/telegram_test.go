package notify

import (
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable type")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestBookingSubmitted(t *testing.T) {
	logger := zerolog.New(io.Discard)
	tg := &fakeSender{}

	n := newWithSender(tg, 42, &logger)
	n.BookingSubmitted("2024-06-15", []string{"17:00", "18:00"})

	require.Len(t, tg.sent, 1)
	assert.Equal(t, int64(42), tg.sent[0].ChatID)
	assert.Equal(t, "Booked badminton on 2024-06-15: 17:00, 18:00", tg.sent[0].Text)
}

func TestBookingSubmittedSendError(t *testing.T) {
	logger := zerolog.New(io.Discard)
	tg := &fakeSender{err: errors.New("telegram down")}

	n := newWithSender(tg, 42, &logger)
	n.BookingSubmitted("2024-06-15", []string{"17:00"})

	assert.Empty(t, tg.sent)
}
