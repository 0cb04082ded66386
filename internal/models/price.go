package models

import "time"

// Price is one observed listing price from one marketplace module.
// Immutable once persisted; raw and converted representations are always
// both present, even when the conversion was a no-op.
type Price struct {
	ID     uint64
	ItemID uint64

	// Raw amount and currency token exactly as reported by the module.
	Amount   float64
	Currency string

	// Amount converted into the configured target currency.
	ConvertedAmount   float64
	ConvertedCurrency string

	// Tax rate (fraction, e.g. 0.19) and shipping cost applied for the
	// raw currency's region.
	TaxRate  float64
	Shipping float64

	URL        string
	Module     string
	Condition  ItemCondition
	ObservedAt time.Time
	CreatedAt  time.Time
}

// ConvertedTaxed is the converted amount with taxes, without shipping.
func (p *Price) ConvertedTaxed() float64 {
	return p.ConvertedAmount * (1.0 + p.TaxRate)
}

// ConvertedTotal is the converted amount with shipping and taxes.
// Shipping costs are normally taxed as well.
func (p *Price) ConvertedTotal() float64 {
	return (p.ConvertedAmount + p.Shipping) * (1.0 + p.TaxRate)
}
