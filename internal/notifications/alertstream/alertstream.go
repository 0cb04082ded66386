package alertstream

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/broker/messages"
	"github.com/BearBump/PriceBox/internal/notifications"
)

type producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Channel публикует сработавшие условия в kafka для внешних подписчиков.
// Ключ сообщения — item_id, чтобы алерты по одному товару шли в одну партицию.
type Channel struct {
	p     producer
	topic string
}

func New(p producer, topic string) *Channel {
	return &Channel{p: p, topic: topic}
}

func (c *Channel) Name() string { return "alertstream" }

func (c *Channel) Notify(ctx context.Context, n notifications.Notification) error {
	msg := messages.AlertFired{
		ItemID:      n.Item.ID,
		JAN:         n.Item.JAN,
		Description: n.Item.Description,

		ConditionID:   n.Condition.ID,
		ConditionType: string(n.Condition.Type),
		Value:         n.Condition.Value,

		Module:    n.Price.Module,
		Condition: string(n.Price.Condition),

		Amount:            n.Price.Amount,
		Currency:          n.Price.Currency,
		ConvertedAmount:   n.Price.ConvertedAmount,
		ConvertedCurrency: n.Price.ConvertedCurrency,

		URL:        n.Price.URL,
		ObservedAt: n.Price.ObservedAt,
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal alert")
	}

	key := []byte(strconv.FormatUint(n.Item.ID, 10))
	return c.p.Publish(ctx, c.topic, key, b)
}
