package scanner

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/broker/messages"
	"github.com/BearBump/PriceBox/internal/models"
	"github.com/BearBump/PriceBox/internal/notifications"
)

type Repository interface {
	ListActiveItems(ctx context.Context) ([]*models.Item, error)
	UpdateItemDetails(ctx context.Context, item *models.Item) error
	AddPrice(ctx context.Context, p *models.Price) error
	ListEnabledConditions(ctx context.Context, itemID uint64) ([]*models.Condition, error)
}

type Checker interface {
	CheckItem(ctx context.Context, item *models.Item) []*models.Price
	UpdateItemInfo(ctx context.Context, item *models.Item) bool
}

type Evaluator interface {
	Matches(ctx context.Context, price *models.Price, cond *models.Condition) bool
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n notifications.Notification)
	Wait()
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Scanner гоняет полный цикл: обход товаров, сбор цен, проверка условий,
// рассылка уведомлений. Цикл завершается только после того, как все
// запущенные доставки дождались своего Wait.
type Scanner struct {
	repo       Repository
	checker    Checker
	evaluator  Evaluator
	dispatcher Dispatcher
	producer   Producer

	topic string

	scanInterval time.Duration

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalScanned        atomic.Int64
	totalPrices         atomic.Int64
	totalMatches        atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, checker Checker, evaluator Evaluator, dispatcher Dispatcher, producer Producer, topic string) *Scanner {
	return &Scanner{
		repo:       repo,
		checker:    checker,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		producer:   producer,
		topic:      topic,

		scanInterval:      time.Hour,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (s *Scanner) WithScanInterval(d time.Duration) *Scanner {
	if d > 0 {
		s.scanInterval = d
	}
	return s
}

// Trigger forces an immediate scan cycle (best-effort, non-blocking).
func (s *Scanner) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalScanned  int64      `json:"totalScanned"`
	TotalPrices   int64      `json:"totalPrices"`
	TotalMatches  int64      `json:"totalMatches"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (s *Scanner) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalScanned: s.totalScanned.Load(),
		TotalPrices:  s.totalPrices.Load(),
		TotalMatches: s.totalMatches.Load(),
		TotalErrors:  s.totalErrors.Load(),
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Scanner) Run(ctx context.Context) error {
	t := time.NewTicker(s.scanInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.RunOnce(ctx)
		case <-s.triggerCh:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce — один полный проход по всем активным товарам.
func (s *Scanner) RunOnce(ctx context.Context) {
	s.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())

	items, err := s.repo.ListActiveItems(ctx)
	if err != nil {
		s.recordError(err)
		slog.Error("list active items", "error", err.Error())
		return
	}

	for _, item := range items {
		s.scanItem(ctx, item)
		s.totalScanned.Add(1)
	}

	// все уведомления цикла должны доехать до своих каналов
	s.dispatcher.Wait()
}

func (s *Scanner) scanItem(ctx context.Context, item *models.Item) {
	if item.Description == "" {
		if s.checker.UpdateItemInfo(ctx, item) {
			if err := s.repo.UpdateItemDetails(ctx, item); err != nil {
				s.recordError(err)
				slog.Error("update item details", "item_id", item.ID, "error", err.Error())
			}
		}
	}

	conds, err := s.repo.ListEnabledConditions(ctx, item.ID)
	if err != nil {
		s.recordError(err)
		slog.Error("list conditions", "item_id", item.ID, "error", err.Error())
		return
	}

	prices := s.checker.CheckItem(ctx, item)
	for _, p := range prices {
		// условия проверяются до записи цены, чтобы новое наблюдение
		// не конкурировало само с собой в исторических запросах
		var matched []*models.Condition
		for _, c := range conds {
			if s.evaluator.Matches(ctx, p, c) {
				matched = append(matched, c)
			}
		}

		if err := s.repo.AddPrice(ctx, p); err != nil {
			s.recordError(err)
			slog.Error("add price", "item_id", item.ID, "module", p.Module, "error", err.Error())
			continue
		}
		s.totalPrices.Add(1)

		if err := s.publishObserved(ctx, item, p); err != nil {
			s.recordError(err)
			slog.Error("publish price observed", "item_id", item.ID, "error", err.Error())
		}

		for _, c := range matched {
			s.totalMatches.Add(1)
			s.dispatcher.Dispatch(ctx, notifications.Notification{Item: item, Price: p, Condition: c})
		}
	}
}

func (s *Scanner) publishObserved(ctx context.Context, item *models.Item, p *models.Price) error {
	if s.producer == nil {
		return nil
	}

	msg := messages.PriceObserved{
		ItemID:            item.ID,
		JAN:               item.JAN,
		Module:            p.Module,
		Condition:         string(p.Condition),
		Amount:            p.Amount,
		Currency:          p.Currency,
		ConvertedAmount:   p.ConvertedAmount,
		ConvertedCurrency: p.ConvertedCurrency,
		URL:               p.URL,
		ObservedAt:        p.ObservedAt,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}

	key := []byte(strconv.FormatUint(item.ID, 10))
	return s.producer.Publish(ctx, s.topic, key, b)
}

func (s *Scanner) recordError(err error) {
	s.totalErrors.Add(1)
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}
