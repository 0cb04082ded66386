package conditions

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/PriceBox/internal/models"
)

// History is the slice of the persistence layer the evaluator needs.
// Both queries return nil (not an error) when no matching price exists.
type History interface {
	LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error)
	LowestPriceBefore(ctx context.Context, itemID uint64, before time.Time) (*models.Price, error)
}

type Evaluator struct {
	history History
}

func NewEvaluator(history History) *Evaluator {
	return &Evaluator{history: history}
}

// Matches decides whether an observed price satisfies a stored condition.
//
// below_price       -> converted amount below the value
// below_price_taxed -> taxed converted amount below the value
// below_price_full  -> taxed converted amount with shipping below the value
// lowest_price      -> at least value below the lowest price ever recorded;
//                      the very first observation always matches
// price_drop        -> dropped by the value (fraction) against the lowest
//                      price recorded before this observation; never matches
//                      without an earlier price
//
// A history lookup failure suppresses only this evaluation: the condition
// reports no match and the check cycle carries on.
func (e *Evaluator) Matches(ctx context.Context, price *models.Price, cond *models.Condition) bool {
	if cond.ItemCondition != "" && cond.ItemCondition != models.ItemConditionAll &&
		cond.ItemCondition != price.Condition {
		return false
	}

	switch cond.Type {
	case models.ConditionBelowPrice:
		return price.ConvertedAmount < cond.Value
	case models.ConditionBelowPriceTaxed:
		return price.ConvertedTaxed() < cond.Value
	case models.ConditionBelowPriceFull:
		return price.ConvertedTotal() < cond.Value
	case models.ConditionLowestPrice:
		lowest, err := e.history.LowestPrice(ctx, price.ItemID)
		if err != nil {
			slog.Warn("lowest price lookup failed", "item_id", price.ItemID, "error", err.Error())
			return false
		}
		if lowest == nil {
			return true
		}
		return price.ConvertedAmount+cond.Value < lowest.ConvertedAmount
	case models.ConditionPriceDrop:
		previous, err := e.history.LowestPriceBefore(ctx, price.ItemID, price.ObservedAt)
		if err != nil {
			slog.Warn("previous price lookup failed", "item_id", price.ItemID, "error", err.Error())
			return false
		}
		if previous == nil {
			return false
		}
		return previous.ConvertedAmount*(1.0-cond.Value) > price.ConvertedAmount
	default:
		return false
	}
}
