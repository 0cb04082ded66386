package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/PriceBox/internal/currency"
	"github.com/BearBump/PriceBox/internal/integrations/source"
	"github.com/BearBump/PriceBox/internal/models"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Checker опрашивает все подключённые магазины по одному товару.
// Каждый модуль работает в своей горутине; упавший модуль теряет только
// свои цены, остальные результаты доезжают до вызывающего.
type Checker struct {
	sources []source.Client
	infos   []source.InfoClient

	guesser *currency.Guesser
	rates   *currency.Table
	rl      RateLimiter

	targetCurrency currency.Code
	taxRates       map[string]float64
	shippingCosts  map[string]float64

	rateLimitPerMinute  int64
	rateLimitsPerModule map[string]int64
}

func New(sources []source.Client, rates *currency.Table, target currency.Code) *Checker {
	if target == "" {
		target = currency.Baseline
	}
	return &Checker{
		sources:            sources,
		guesser:            currency.NewGuesser(),
		rates:              rates,
		targetCurrency:     target,
		rateLimitPerMinute: 60,
	}
}

func (c *Checker) WithInfoSources(infos []source.InfoClient) *Checker {
	c.infos = infos
	return c
}

func (c *Checker) WithCostTables(taxRates, shippingCosts map[string]float64) *Checker {
	c.taxRates = taxRates
	c.shippingCosts = shippingCosts
	return c
}

func (c *Checker) WithRateLimiter(rl RateLimiter, perMinute int64, perModule map[string]int64) *Checker {
	c.rl = rl
	if perMinute > 0 {
		c.rateLimitPerMinute = perMinute
	}
	c.rateLimitsPerModule = perModule
	return c
}

// CheckItem собирает минимальные цены товара со всех модулей.
// Возвращает только успешно обогащённые цены: листинги с неопознанной
// валютой или без курса в снапшоте отбрасываются с warning-ом.
func (c *Checker) CheckItem(ctx context.Context, item *models.Item) []*models.Price {
	var (
		mu     sync.Mutex
		prices []*models.Price
		wg     sync.WaitGroup
	)

	for _, src := range c.sources {
		wg.Add(1)
		go func(src source.Client) {
			defer wg.Done()

			c.throttle(ctx, src.ModuleKey())

			listings, err := src.LowestPrices(ctx, item)
			if err != nil {
				slog.Error("module check failed", "module", src.ModuleKey(), "item_id", item.ID, "error", err.Error())
				return
			}

			now := time.Now().UTC()
			var found []*models.Price
			for _, l := range []*source.Listing{listings.New, listings.Used} {
				if l == nil {
					continue
				}
				if p := c.enrich(item, src.ModuleKey(), l, now); p != nil {
					found = append(found, p)
				}
			}

			mu.Lock()
			prices = append(prices, found...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return prices
}

// enrich переводит сырой листинг в цену в целевой валюте.
// Налог и доставка берутся по исходной валюте листинга.
func (c *Checker) enrich(item *models.Item, module string, l *source.Listing, now time.Time) *models.Price {
	code, ok := c.guesser.Guess(l.Currency)
	if !ok {
		slog.Warn("unrecognized currency, price dropped",
			"module", module, "item_id", item.ID, "value", l.Currency)
		return nil
	}

	converted, err := c.rates.Convert(l.Amount, code, c.targetCurrency)
	if err != nil {
		slog.Warn("conversion failed, price dropped",
			"module", module, "item_id", item.ID, "currency", string(code), "error", err.Error())
		return nil
	}

	return &models.Price{
		ItemID:            item.ID,
		Amount:            l.Amount,
		Currency:          string(code),
		ConvertedAmount:   converted,
		ConvertedCurrency: string(c.targetCurrency),
		TaxRate:           c.taxRates[string(code)],
		Shipping:          c.shippingCosts[string(code)],
		URL:               l.URL,
		Module:            module,
		Condition:         l.Condition,
		ObservedAt:        now,
	}
}

// UpdateItemInfo дозаполняет описание/термины/картинку товара.
// Модули опрашиваются по порядку регистрации, ошибки не прерывают обход.
func (c *Checker) UpdateItemInfo(ctx context.Context, item *models.Item) bool {
	updated := false
	for _, info := range c.infos {
		if err := info.UpdateItemDetails(ctx, item); err != nil {
			slog.Warn("item info update failed", "module", info.ModuleKey(), "item_id", item.ID, "error", err.Error())
			continue
		}
		updated = true
		if item.Description != "" && item.Image != "" {
			break
		}
	}
	return updated
}

func (c *Checker) throttle(ctx context.Context, module string) {
	if c.rl == nil {
		return
	}

	limit := c.rateLimitPerMinute
	if l, ok := c.rateLimitsPerModule[module]; ok && l > 0 {
		limit = l
	}

	minuteKey := fmt.Sprintf("rl:source:%s:%s", module, time.Now().UTC().Format("200601021504"))
	allowed, n, err := c.rl.Allow(ctx, minuteKey, limit, 70*time.Second)
	if err != nil {
		slog.Warn("rate limiter unavailable", "module", module, "error", err.Error())
		return
	}
	if !allowed {
		// Слишком много запросов в минуту: подождём немного, чтобы разгрузить магазин.
		slog.Warn("rate limit exceeded", "module", module, "count", n)
		time.Sleep(500 * time.Millisecond)
	}
}
