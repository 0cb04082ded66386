package conditions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BearBump/PriceBox/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	lowest   *models.Price
	previous *models.Price
	err      error
}

func (h *fakeHistory) LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error) {
	return h.lowest, h.err
}

func (h *fakeHistory) LowestPriceBefore(ctx context.Context, itemID uint64, before time.Time) (*models.Price, error) {
	return h.previous, h.err
}

func price(converted float64) *models.Price {
	return &models.Price{
		ItemID:            1,
		Amount:            converted,
		Currency:          "EUR",
		ConvertedAmount:   converted,
		ConvertedCurrency: "EUR",
		TaxRate:           0.1,
		Shipping:          5.0,
		Condition:         models.ItemConditionNew,
		ObservedAt:        time.Now().UTC(),
	}
}

func TestMatches_BelowPrice(t *testing.T) {
	e := NewEvaluator(&fakeHistory{})
	cond := &models.Condition{Type: models.ConditionBelowPrice, ItemCondition: models.ItemConditionAll, Value: 100}

	require.True(t, e.Matches(context.Background(), price(99.99), cond))
	require.False(t, e.Matches(context.Background(), price(100), cond))
}

func TestMatches_BelowPriceTaxed(t *testing.T) {
	e := NewEvaluator(&fakeHistory{})
	cond := &models.Condition{Type: models.ConditionBelowPriceTaxed, ItemCondition: models.ItemConditionAll, Value: 110}

	// 99 * 1.1 = 108.9 < 110
	require.True(t, e.Matches(context.Background(), price(99), cond))
	// 100 * 1.1 = 110
	require.False(t, e.Matches(context.Background(), price(100), cond))
}

func TestMatches_BelowPriceFull(t *testing.T) {
	e := NewEvaluator(&fakeHistory{})
	cond := &models.Condition{Type: models.ConditionBelowPriceFull, ItemCondition: models.ItemConditionAll, Value: 110}

	// (94 + 5) * 1.1 = 108.9 < 110
	require.True(t, e.Matches(context.Background(), price(94), cond))
	// (95 + 5) * 1.1 = 110
	require.False(t, e.Matches(context.Background(), price(95), cond))
}

func TestMatches_LowestPrice(t *testing.T) {
	cond := &models.Condition{Type: models.ConditionLowestPrice, ItemCondition: models.ItemConditionAll, Value: 5}

	// no prior price: the first observation is always a new low
	e := NewEvaluator(&fakeHistory{})
	require.True(t, e.Matches(context.Background(), price(9999), cond))

	e = NewEvaluator(&fakeHistory{lowest: price(100)})
	// 96 + 5 = 101, not below 100
	require.False(t, e.Matches(context.Background(), price(96), cond))
	// 90 + 5 = 95 < 100
	require.True(t, e.Matches(context.Background(), price(90), cond))
}

func TestMatches_PriceDrop(t *testing.T) {
	cond := &models.Condition{Type: models.ConditionPriceDrop, ItemCondition: models.ItemConditionAll, Value: 0.1}

	// no earlier price: nothing to compare against
	e := NewEvaluator(&fakeHistory{})
	require.False(t, e.Matches(context.Background(), price(1), cond))

	e = NewEvaluator(&fakeHistory{previous: price(100)})
	// 100 * 0.9 = 90 > 85
	require.True(t, e.Matches(context.Background(), price(85), cond))
	// 90 is not > 95
	require.False(t, e.Matches(context.Background(), price(95), cond))
}

func TestMatches_ItemConditionFilter(t *testing.T) {
	e := NewEvaluator(&fakeHistory{})
	cond := &models.Condition{Type: models.ConditionBelowPrice, ItemCondition: models.ItemConditionUsed, Value: 100}

	p := price(50)
	p.Condition = models.ItemConditionNew
	require.False(t, e.Matches(context.Background(), p, cond))

	p.Condition = models.ItemConditionUsed
	require.True(t, e.Matches(context.Background(), p, cond))
}

func TestMatches_HistoryErrorIsNoMatch(t *testing.T) {
	e := NewEvaluator(&fakeHistory{err: errors.New("db down")})

	lowest := &models.Condition{Type: models.ConditionLowestPrice, ItemCondition: models.ItemConditionAll, Value: 5}
	require.False(t, e.Matches(context.Background(), price(1), lowest))

	drop := &models.Condition{Type: models.ConditionPriceDrop, ItemCondition: models.ItemConditionAll, Value: 0.5}
	require.False(t, e.Matches(context.Background(), price(1), drop))
}
