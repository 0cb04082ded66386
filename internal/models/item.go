package models

import (
	"fmt"
	"time"
)

// Item is a tracked collectible identified by its JAN/EAN catalog code.
// Items are never deleted, only disabled.
type Item struct {
	ID          uint64
	JAN         int64
	TermEN      string
	TermJP      string
	Description string
	Image       string
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ItemCreateInput struct {
	JAN int64
}

// ItemCondition is the physical condition a listing is offered in.
type ItemCondition string

const (
	ItemConditionNew  ItemCondition = "new"
	ItemConditionUsed ItemCondition = "used"
	// ItemConditionAll matches any listing condition (no filter).
	ItemConditionAll ItemCondition = "all"
)

func ParseItemCondition(s string) (ItemCondition, error) {
	switch ItemCondition(s) {
	case ItemConditionNew, ItemConditionUsed, ItemConditionAll:
		return ItemCondition(s), nil
	default:
		return "", fmt.Errorf("%q is not a valid item condition", s)
	}
}
