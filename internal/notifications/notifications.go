package notifications

import (
	"context"
	"fmt"

	"github.com/BearBump/PriceBox/internal/models"
)

// Notification — одно сработавшее условие вместе с товаром и ценой,
// на которой оно сработало.
type Notification struct {
	Item      *models.Item
	Price     *models.Price
	Condition *models.Condition
}

// Channel доставляет уведомление одним конкретным способом (telegram,
// kafka-топик и т.д.). Ошибка одного канала не должна мешать остальным.
type Channel interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Render собирает текст уведомления. HTML-разметку понимает telegram,
// остальные каналы отдают её как есть.
func (n Notification) Render() string {
	p := n.Price
	c := n.Condition
	return fmt.Sprintf(
		"met search notification on item:\n"+
			"<b>%s</b>\n"+
			"\n"+
			"price: <b>%.2f %s</b>\n"+
			"price with taxes: <b>%.2f %s</b>\n"+
			"price with shipping and taxes: <b>%.2f %s</b>\n"+
			"raw price: <b>%.2f %s</b>\n"+
			"\n"+
			"item condition: <b>%s</b>\n"+
			"\n"+
			"notification type: <b>%s</b>\n"+
			"requested item condition: <b>%s</b>\n"+
			"value: <b>%.2f</b>\n"+
			"\n"+
			"link: %s",
		n.Item.Description,
		p.ConvertedAmount, p.ConvertedCurrency,
		p.ConvertedTaxed(), p.ConvertedCurrency,
		p.ConvertedTotal(), p.ConvertedCurrency,
		p.Amount, p.Currency,
		p.Condition,
		c.Type,
		c.ItemCondition,
		c.Value,
		p.URL,
	)
}
