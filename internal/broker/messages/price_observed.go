package messages

import "time"

// PriceObserved публикуется worker-ом после записи новой цены в базу.
// API-процесс по нему обновляет кеш минимальной цены.
type PriceObserved struct {
	ItemID uint64 `json:"item_id"`
	JAN    int64  `json:"jan"`

	Module    string `json:"module"`
	Condition string `json:"condition"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	ConvertedAmount   float64 `json:"converted_amount"`
	ConvertedCurrency string  `json:"converted_currency"`

	URL        string    `json:"url,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// AlertFired — сработавшее условие отслеживания; уходит в отдельный топик
// для внешних подписчиков.
type AlertFired struct {
	ItemID      uint64 `json:"item_id"`
	JAN         int64  `json:"jan"`
	Description string `json:"description,omitempty"`

	ConditionID   uint64  `json:"condition_id"`
	ConditionType string  `json:"condition_type"`
	Value         float64 `json:"value"`

	Module    string `json:"module"`
	Condition string `json:"condition"`

	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	ConvertedAmount   float64 `json:"converted_amount"`
	ConvertedCurrency string  `json:"converted_currency"`

	URL        string    `json:"url,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}
