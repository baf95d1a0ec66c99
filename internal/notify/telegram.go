package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNoChat is returned for users without a chat identity.
var ErrNoChat = errors.New("user has no chat id")

// Telegram sends plain-text messages through the Bot API.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram authenticates the token with the Bot API. A bad token fails here,
// before any job is scheduled.
func NewTelegram(token string, timeout time.Duration) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("authenticating telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

// Username returns the bot account name.
func (t *Telegram) Username() string {
	return t.bot.Self.UserName
}

// Send delivers text to chatID. The Bot API client has no context support, so the
// call runs in its own goroutine and ctx only bounds how long the caller waits.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return &DeliveryError{ChatID: chatID, Err: ErrNoChat}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return &DeliveryError{ChatID: chatID, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &DeliveryError{ChatID: chatID, Err: ctx.Err()}
	}
}
