package source

import (
	"context"

	"github.com/BearBump/PriceBox/internal/models"
)

// Listing is one candidate price as reported by a marketplace module:
// raw numeric amount, free-text currency token and the listing URL.
type Listing struct {
	Amount    float64
	Currency  string
	URL       string
	Condition models.ItemCondition
}

// Listings carries the lowest offers a module found, one per item
// condition. Either entry may be nil.
type Listings struct {
	New  *Listing
	Used *Listing
}

// Client is one marketplace module. Implementations must be safe for
// concurrent use: the checker drives every registered client from its
// own goroutine.
type Client interface {
	ModuleKey() string
	LowestPrices(ctx context.Context, item *models.Item) (Listings, error)
}

// InfoClient is a module that can additionally fill in item details
// (description, search terms, image) from its marketplace catalog.
type InfoClient interface {
	ModuleKey() string
	UpdateItemDetails(ctx context.Context, item *models.Item) error
}
