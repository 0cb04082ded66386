package fake

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/BearBump/PriceBox/internal/integrations/source"
	"github.com/BearBump/PriceBox/internal/models"
)

// FakeClient — временная заглушка магазина (пока shop emulator не готов).
// Цены детерминированы по (module, jan), чтобы тесты были воспроизводимы.
type FakeClient struct {
	key string
}

func New(key string) *FakeClient {
	if key == "" {
		key = "fakeshop"
	}
	return &FakeClient{key: key}
}

func (f *FakeClient) ModuleKey() string { return f.key }

func (f *FakeClient) LowestPrices(ctx context.Context, item *models.Item) (source.Listings, error) {
	v := f.hash(item.JAN)

	newAmount := 2000.0 + float64(v%9000)
	listings := source.Listings{
		New: &source.Listing{
			Amount:    newAmount,
			Currency:  "¥",
			URL:       fmt.Sprintf("https://%s.example/item/%d", f.key, item.JAN),
			Condition: models.ItemConditionNew,
		},
	}

	// примерно у двух третей товаров есть и б/у предложение, чуть дешевле
	if v%3 != 0 {
		listings.Used = &source.Listing{
			Amount:    newAmount * 0.8,
			Currency:  "¥",
			URL:       fmt.Sprintf("https://%s.example/item/%d?cond=used", f.key, item.JAN),
			Condition: models.ItemConditionUsed,
		}
	}

	return listings, nil
}

func (f *FakeClient) UpdateItemDetails(ctx context.Context, item *models.Item) error {
	item.Description = fmt.Sprintf("Figure %d", item.JAN)
	item.TermEN = fmt.Sprintf("figure %d", item.JAN)
	item.TermJP = fmt.Sprintf("フィギュア %d", item.JAN)
	return nil
}

func (f *FakeClient) hash(jan int64) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(f.key))
	_, _ = h.Write([]byte("|"))
	_, _ = h.Write([]byte(fmt.Sprintf("%d", jan)))
	return h.Sum32()
}
