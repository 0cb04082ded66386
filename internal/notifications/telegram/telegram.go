package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/notifications"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Channel шлёт уведомления в telegram-чат. Если у товара есть картинка,
// уходит фото с подписью, иначе обычное сообщение.
type Channel struct {
	bot    sender
	chatID int64
}

func New(apiKey string, chatID int64) (*Channel, error) {
	bot, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot init")
	}
	return &Channel{bot: bot, chatID: chatID}, nil
}

func newChannelWithSender(bot sender, chatID int64) *Channel {
	return &Channel{bot: bot, chatID: chatID}
}

func (c *Channel) Name() string { return "telegram" }

func (c *Channel) Notify(ctx context.Context, n notifications.Notification) error {
	text := n.Render()

	if n.Item.Image != "" {
		photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileURL(n.Item.Image))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if _, err := c.bot.Send(photo); err != nil {
			return errors.Wrap(err, "telegram send photo")
		}
		return nil
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Send(msg); err != nil {
		return errors.Wrap(err, "telegram send message")
	}
	return nil
}
