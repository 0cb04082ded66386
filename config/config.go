package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	PriceBox PriceBoxConfig `yaml:"pricebox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	PriceObservedTopicName string `yaml:"price_observed_topic_name"`
	PriceAlertTopicName    string `yaml:"price_alert_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PriceBoxConfig struct {
	HTTPAddr              string `yaml:"http_addr"`
	KafkaConsumerGroup    string `yaml:"kafka_consumer_group"`
	LowestPriceTTLSeconds int    `yaml:"lowest_price_ttl_seconds"`

	// Currency settings. Empty target_currency means EUR (the ECB reference baseline).
	TargetCurrency  string             `yaml:"target_currency"`
	TaxRates        map[string]float64 `yaml:"tax_rates"`
	ShippingCosts   map[string]float64 `yaml:"shipping_costs"`
	ExchangeFeedURL string             `yaml:"exchange_feed_url"`

	WorkerScanIntervalSeconds int `yaml:"worker_scan_interval_seconds"`
	WorkerRateLimitPerMinute  int `yaml:"worker_rate_limit_per_minute"`
	// Optional per-marketplace overrides keyed by module key.
	WorkerRateLimitsPerMinute map[string]int `yaml:"worker_rate_limits_per_minute"`

	WorkerHTTPAddr string `yaml:"worker_http_addr"`

	ShopEmulatorBaseURL string   `yaml:"shop_emulator_base_url"`
	ShopEmulatorAPIKey  string   `yaml:"shop_emulator_api_key"`
	ShopEmulatorModules []string `yaml:"shop_emulator_modules"`

	TelegramEnabled bool   `yaml:"telegram_enabled"`
	TelegramAPIKey  string `yaml:"telegram_api_key"`
	TelegramChatID  int64  `yaml:"telegram_chat_id"`

	AlertStreamEnabled bool `yaml:"alert_stream_enabled"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
