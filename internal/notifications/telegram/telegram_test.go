package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/PriceBox/internal/models"
	"github.com/BearBump/PriceBox/internal/notifications"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, s.err
}

func notification(image string) notifications.Notification {
	return notifications.Notification{
		Item: &models.Item{ID: 1, Description: "Nendoroid Example", Image: image},
		Price: &models.Price{
			ConvertedAmount:   80,
			ConvertedCurrency: "EUR",
			Amount:            12800,
			Currency:          "JPY",
			Condition:         models.ItemConditionNew,
		},
		Condition: &models.Condition{Type: models.ConditionBelowPrice, ItemCondition: models.ItemConditionAll, Value: 100},
	}
}

func TestChannel_Notify_TextMessage(t *testing.T) {
	fs := &fakeSender{}
	c := newChannelWithSender(fs, 42)

	require.NoError(t, c.Notify(context.Background(), notification("")))
	require.Len(t, fs.sent, 1)

	msg, ok := fs.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), msg.ChatID)
	require.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	require.Contains(t, msg.Text, "Nendoroid Example")
}

func TestChannel_Notify_PhotoWhenImagePresent(t *testing.T) {
	fs := &fakeSender{}
	c := newChannelWithSender(fs, 42)

	require.NoError(t, c.Notify(context.Background(), notification("https://img.example/1.jpg")))
	require.Len(t, fs.sent, 1)

	photo, ok := fs.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	require.Contains(t, photo.Caption, "Nendoroid Example")
}

func TestChannel_Notify_SendError(t *testing.T) {
	fs := &fakeSender{err: errors.New("telegram down")}
	c := newChannelWithSender(fs, 42)

	err := c.Notify(context.Background(), notification(""))
	require.Error(t, err)
	require.Contains(t, err.Error(), "telegram send message")
}
