package main

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/PriceBox/config"
	"github.com/BearBump/PriceBox/internal/broker/kafka"
	"github.com/BearBump/PriceBox/internal/cache/rediscache"
	"github.com/BearBump/PriceBox/internal/conditions"
	"github.com/BearBump/PriceBox/internal/currency"
	"github.com/BearBump/PriceBox/internal/integrations/source"
	"github.com/BearBump/PriceBox/internal/integrations/source/fake"
	"github.com/BearBump/PriceBox/internal/integrations/source/shopemu"
	"github.com/BearBump/PriceBox/internal/notifications"
	"github.com/BearBump/PriceBox/internal/notifications/alertstream"
	"github.com/BearBump/PriceBox/internal/notifications/telegram"
	"github.com/BearBump/PriceBox/internal/services/alerts"
	"github.com/BearBump/PriceBox/internal/services/checker"
	"github.com/BearBump/PriceBox/internal/services/scanner"
	"github.com/BearBump/PriceBox/internal/storage/pgitems"
)

// workerRepository — всё, что воркеру нужно от хранилища.
type workerRepository interface {
	scanner.Repository
	conditions.History
}

type workerFactories struct {
	newStorage     func(cfg *config.Config) (repo workerRepository, closeFn func(), err error)
	newProducer    func(cfg *config.Config) scanner.Producer
	newRateLimiter func(cfg *config.Config) checker.RateLimiter
	newRates       func(ctx context.Context, cfg *config.Config) (*currency.Table, error)
	newSources     func(cfg *config.Config) []source.Client
	newInfoSources func(cfg *config.Config) []source.InfoClient
	newChannels    func(cfg *config.Config, producer scanner.Producer) ([]notifications.Channel, error)
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (workerRepository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgitems.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) scanner.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newRateLimiter: func(cfg *config.Config) checker.RateLimiter {
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			return rediscache.NewRateLimiter(redisAddr)
		},
		newRates: func(ctx context.Context, cfg *config.Config) (*currency.Table, error) {
			feedURL := cfg.PriceBox.ExchangeFeedURL
			if feedURL == "" {
				feedURL = currency.DefaultFeedURL
			}
			return currency.FetchTable(ctx, feedURL)
		},
		newSources: func(cfg *config.Config) []source.Client {
			// По умолчанию ходим в python shop-emulator, если задан base_url.
			// Иначе — fallback на локальный fake.
			if cfg.PriceBox.ShopEmulatorBaseURL != "" && len(cfg.PriceBox.ShopEmulatorModules) > 0 {
				out := make([]source.Client, 0, len(cfg.PriceBox.ShopEmulatorModules))
				for _, m := range cfg.PriceBox.ShopEmulatorModules {
					out = append(out, shopemu.New(cfg.PriceBox.ShopEmulatorBaseURL, cfg.PriceBox.ShopEmulatorAPIKey, m))
				}
				return out
			}
			return []source.Client{fake.New("")}
		},
		newInfoSources: func(cfg *config.Config) []source.InfoClient {
			if cfg.PriceBox.ShopEmulatorBaseURL != "" && len(cfg.PriceBox.ShopEmulatorModules) > 0 {
				out := make([]source.InfoClient, 0, len(cfg.PriceBox.ShopEmulatorModules))
				for _, m := range cfg.PriceBox.ShopEmulatorModules {
					out = append(out, shopemu.New(cfg.PriceBox.ShopEmulatorBaseURL, cfg.PriceBox.ShopEmulatorAPIKey, m))
				}
				return out
			}
			return []source.InfoClient{fake.New("")}
		},
		newChannels: func(cfg *config.Config, producer scanner.Producer) ([]notifications.Channel, error) {
			var out []notifications.Channel
			if cfg.PriceBox.TelegramEnabled {
				tg, err := telegram.New(cfg.PriceBox.TelegramAPIKey, cfg.PriceBox.TelegramChatID)
				if err != nil {
					return nil, err
				}
				out = append(out, tg)
			}
			if cfg.PriceBox.AlertStreamEnabled {
				topic := cfg.Kafka.PriceAlertTopicName
				if topic == "" {
					topic = "price.alert"
				}
				out = append(out, alertstream.New(producer, topic))
			}
			return out, nil
		},
	}
}

func buildPriceWorker(ctx context.Context, cfg *config.Config, f workerFactories) (*scanner.Scanner, func(), error) {
	topic := cfg.Kafka.PriceObservedTopicName
	if topic == "" {
		topic = "price.observed"
	}

	scanInterval := time.Duration(cfg.PriceBox.WorkerScanIntervalSeconds) * time.Second
	if scanInterval <= 0 {
		scanInterval = time.Hour
	}
	rlPerMin := int64(cfg.PriceBox.WorkerRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 60
	}
	perModule := make(map[string]int64, len(cfg.PriceBox.WorkerRateLimitsPerMinute))
	for k, v := range cfg.PriceBox.WorkerRateLimitsPerMinute {
		perModule[k] = int64(v)
	}

	// Курсы забираются один раз на старте: без снапшота воркер бесполезен.
	rates, err := f.newRates(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	producer := f.newProducer(cfg)

	channels, err := f.newChannels(cfg, producer)
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, nil, err
	}

	target, _ := currency.NewGuesser().MatchCode(cfg.PriceBox.TargetCurrency, true)

	chk := checker.New(f.newSources(cfg), rates, target).
		WithInfoSources(f.newInfoSources(cfg)).
		WithCostTables(cfg.PriceBox.TaxRates, cfg.PriceBox.ShippingCosts).
		WithRateLimiter(f.newRateLimiter(cfg), rlPerMin, perModule)

	sc := scanner.New(
		repo,
		chk,
		conditions.NewEvaluator(repo),
		alerts.NewDispatcher(channels),
		producer,
		topic,
	).WithScanInterval(scanInterval)

	return sc, closeFn, nil
}

func RunPriceWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	sc, closeFn, err := buildPriceWorker(ctx, cfg, f)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return sc.Run(ctx)
}
