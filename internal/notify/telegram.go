package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
)

// TelegramNotifier posts one message per posting to a chat or channel.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  string
	limiter *rate.Limiter
}

func NewTelegram(token, chatID string, tc config.Telegram) (*TelegramNotifier, error) {
	bot, err := NewBot(token, DefaultEndpoint)
	if err != nil {
		return nil, err
	}
	return newTelegram(bot, chatID, tc.MessagesPerSecond)
}

// DefaultEndpoint is the public Bot API.
const DefaultEndpoint = tgbotapi.APIEndpoint

// NewBot connects to the Bot API at endpoint, a format string taking the
// token and the method name.
func NewBot(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return bot, nil
}

func newTelegram(bot *tgbotapi.BotAPI, chatID string, perSecond float64) (*TelegramNotifier, error) {
	if _, err := messageFor(chatID, ""); err != nil {
		return nil, err
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, limiter: lim}, nil
}

func (t *TelegramNotifier) Send(ctx context.Context, p domain.Posting) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	msg, err := messageFor(t.chatID, Format(p))
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err = t.bot.Send(msg)
	return err
}

// Chat is a conversation the bot has recently seen.
type Chat struct {
	ID   int64
	Kind string
	Name string
}

// ListChats reports the chats in the bot's pending updates, which is how a
// new deployment discovers its chat id.
func ListChats(bot *tgbotapi.BotAPI) ([]Chat, error) {
	updates, err := bot.GetUpdates(tgbotapi.UpdateConfig{Timeout: 0})
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	var out []Chat
	seen := map[int64]bool{}
	for _, u := range updates {
		var c *tgbotapi.Chat
		switch {
		case u.ChannelPost != nil:
			c = u.ChannelPost.Chat
		case u.Message != nil:
			c = u.Message.Chat
		}
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, Chat{ID: c.ID, Kind: c.Type, Name: chatName(c)})
	}
	return out, nil
}

func chatName(c *tgbotapi.Chat) string {
	switch {
	case c.Title != "":
		return c.Title
	case c.UserName != "":
		return c.UserName
	default:
		return c.FirstName
	}
}
