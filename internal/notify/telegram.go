// Package notify delivers booking notifications and reports to Telegram chats.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roomadmin/internal/events"
	"roomadmin/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// BotAPI is the part of the Telegram client the notifier uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// TelegramNotifier sends messages to a fixed set of manager chats.
type TelegramNotifier struct {
	bot     BotAPI
	chatIDs []int64
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *zerolog.Logger
}

// NewTelegramNotifier limits sends to 20 per second with a burst of 30.
func NewTelegramNotifier(bot BotAPI, chatIDs []int64, retry RetryConfig, logger *zerolog.Logger) *TelegramNotifier {
	l := logger.With().Str("component", "telegram").Logger()
	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		retry:   retry,
		logger:  &l,
	}
}

// SendText sends text to every chat. Failures for single chats are joined.
func (n *TelegramNotifier) SendText(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if err := n.sendWithRetry(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// SendDocument sends a file to every chat.
func (n *TelegramNotifier) SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var errs []error
	for _, chatID := range n.chatIDs {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: content})
		doc.Caption = caption
		if err := n.sendWithRetry(ctx, doc); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// HandleBookingEvent is an events.EventHandler announcing booking changes.
func (n *TelegramNotifier) HandleBookingEvent(e events.Event) error {
	var b models.Booking
	if err := e.Decode(&b); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return n.SendText(ctx, FormatBookingEvent(e.Type, b))
}

// FormatBookingEvent renders the chat message for a booking change.
func FormatBookingEvent(eventType string, b models.Booking) string {
	var title string
	switch eventType {
	case events.BookingCreated:
		title = "New booking"
	case events.BookingUpdated:
		title = "Booking changed"
	case events.BookingDeleted:
		title = "Booking cancelled"
	default:
		title = eventType
	}
	return fmt.Sprintf("%s %s\nRoom: %s\nUser: %s\nCheck-in: %s\nCheck-out: %s (%d days)",
		title, b.ID, b.RoomID, b.UserID, b.BookingDate, b.EndDate(), b.DaysStayed)
}

func (n *TelegramNotifier) sendWithRetry(ctx context.Context, c tgbotapi.Chattable) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.retry.MaxRetries; attempt++ {
		_, err := n.bot.Send(c)
		if err == nil {
			return nil
		}
		lastErr = err

		var wait time.Duration
		if attempt < len(n.retry.RetryDelays) {
			wait = n.retry.RetryDelays[attempt]
		}

		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) {
			switch tgErr.Code {
			case http.StatusTooManyRequests:
				if tgErr.RetryAfter > 0 {
					wait = time.Duration(tgErr.RetryAfter) * time.Second
				}
				n.logger.Info().Dur("retry_after", wait).Int("attempt", attempt).Msg("Rate limited by Telegram, waiting")
			case http.StatusForbidden, http.StatusBadRequest:
				n.logger.Warn().Err(err).Msg("Telegram rejected message")
				return err
			}
		}

		if attempt == n.retry.MaxRetries {
			break
		}
		n.logger.Info().Int("attempt", attempt+1).Dur("delay", wait).Err(err).Msg("Retrying Telegram send")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n.logger.Error().Err(lastErr).Msg("Max retries exceeded for Telegram send")
	return lastErr
}
