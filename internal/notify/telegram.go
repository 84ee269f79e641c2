package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends alerts to one chat through a bot.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{api: bot, chatID: chatID}, nil
}

// NewTelegramWithClient talks to endpoint, a Bot API URL pattern such as
// tgbotapi.APIEndpoint.
func NewTelegramWithClient(token string, chatID int64, endpoint string, client tgbotapi.HTTPClient) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{api: bot, chatID: chatID}, nil
}

func (t *Telegram) RequestPermission(context.Context) bool {
	return t.chatID != 0
}

func (t *Telegram) Notify(_ context.Context, title, body, _ string) error {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body)))
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
