package alerts

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/BearBump/PriceBox/internal/notifications"
)

// Dispatcher рассылает сработавшие условия по всем каналам.
// Каждое уведомление уходит в своей горутине; Wait обязателен перед
// завершением процесса, иначе часть уведомлений потеряется.
type Dispatcher struct {
	channels []notifications.Channel

	wg sync.WaitGroup

	dispatched atomic.Int64
	failed     atomic.Int64
}

func NewDispatcher(channels []notifications.Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Dispatch запускает доставку и сразу возвращает управление.
// Ошибка одного канала не мешает остальным: каждый канал пробуем всегда.
func (d *Dispatcher) Dispatch(ctx context.Context, n notifications.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		for _, ch := range d.channels {
			if err := ch.Notify(ctx, n); err != nil {
				d.failed.Add(1)
				slog.Error("notification failed",
					"channel", ch.Name(),
					"item_id", n.Item.ID,
					"condition_id", n.Condition.ID,
					"error", err.Error())
				continue
			}
			d.dispatched.Add(1)
		}
	}()
}

// Wait блокируется, пока не завершатся все запущенные доставки.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Dispatched() int64 { return d.dispatched.Load() }
func (d *Dispatcher) Failed() int64    { return d.failed.Load() }
