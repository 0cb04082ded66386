package models

import (
	"fmt"
	"time"
)

// ConditionType selects how a trigger condition interprets its value:
// an absolute amount for the three below_price kinds, an absolute delta
// for lowest_price and a fraction (0..1) for price_drop.
type ConditionType string

const (
	ConditionBelowPrice      ConditionType = "below_price"
	ConditionBelowPriceTaxed ConditionType = "below_price_taxed"
	ConditionBelowPriceFull  ConditionType = "below_price_full"
	ConditionLowestPrice     ConditionType = "lowest_price"
	ConditionPriceDrop       ConditionType = "price_drop"
)

func ParseConditionType(s string) (ConditionType, error) {
	switch ConditionType(s) {
	case ConditionBelowPrice, ConditionBelowPriceTaxed, ConditionBelowPriceFull,
		ConditionLowestPrice, ConditionPriceDrop:
		return ConditionType(s), nil
	default:
		return "", fmt.Errorf("%q is not a valid condition type", s)
	}
}

// Condition is a user trigger on an item. Mutated only via enable/disable.
type Condition struct {
	ID            uint64
	ItemID        uint64
	Type          ConditionType
	ItemCondition ItemCondition
	Value         float64
	Disabled      bool
	CreatedAt     time.Time
}
