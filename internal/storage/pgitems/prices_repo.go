package pgitems

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/models"
)

const priceColumns = `
  id, item_id, amount, currency, converted_amount, converted_currency,
  tax_rate, shipping, url, module, condition, observed_at, created_at`

// AddPrice пишет наблюдение. Повторная запись того же наблюдения
// (item, module, condition, observed_at) молча игнорируется.
func (s *Storage) AddPrice(ctx context.Context, p *models.Price) error {
	now := time.Now().UTC()
	err := s.db.QueryRow(ctx, `
INSERT INTO prices (
  item_id, amount, currency, converted_amount, converted_currency,
  tax_rate, shipping, url, module, condition, observed_at, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (item_id, module, condition, observed_at) DO NOTHING
RETURNING id
`, p.ItemID, p.Amount, p.Currency, p.ConvertedAmount, p.ConvertedCurrency,
		p.TaxRate, p.Shipping, p.URL, p.Module, p.Condition, p.ObservedAt, now,
	).Scan(&p.ID)
	if err == pgx.ErrNoRows {
		// дубликат наблюдения
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "insert price")
	}
	p.CreatedAt = now
	return nil
}

// LowestPrice возвращает самую низкую цену товара за всю историю,
// nil — если наблюдений ещё не было.
func (s *Storage) LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error) {
	var p models.Price
	err := s.db.QueryRow(ctx, `
SELECT`+priceColumns+`
FROM prices
WHERE item_id = $1
ORDER BY converted_amount ASC, observed_at ASC
LIMIT 1
`, itemID).Scan(
		&p.ID, &p.ItemID, &p.Amount, &p.Currency, &p.ConvertedAmount, &p.ConvertedCurrency,
		&p.TaxRate, &p.Shipping, &p.URL, &p.Module, &p.Condition, &p.ObservedAt, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select lowest price")
	}
	return &p, nil
}

// LowestPriceBefore — самая низкая цена, наблюдавшаяся строго раньше
// указанного момента; nil, если таких наблюдений нет.
func (s *Storage) LowestPriceBefore(ctx context.Context, itemID uint64, before time.Time) (*models.Price, error) {
	var p models.Price
	err := s.db.QueryRow(ctx, `
SELECT`+priceColumns+`
FROM prices
WHERE item_id = $1 AND observed_at < $2
ORDER BY converted_amount ASC, observed_at ASC
LIMIT 1
`, itemID, before.UTC()).Scan(
		&p.ID, &p.ItemID, &p.Amount, &p.Currency, &p.ConvertedAmount, &p.ConvertedCurrency,
		&p.TaxRate, &p.Shipping, &p.URL, &p.Module, &p.Condition, &p.ObservedAt, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select lowest price before")
	}
	return &p, nil
}

func (s *Storage) ListPrices(ctx context.Context, itemID uint64, limit, offset int) ([]*models.Price, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+priceColumns+`
FROM prices
WHERE item_id = $1
ORDER BY observed_at DESC
LIMIT $2 OFFSET $3
`, itemID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select prices")
	}
	defer rows.Close()

	out := make([]*models.Price, 0, limit)
	for rows.Next() {
		var p models.Price
		if err := rows.Scan(
			&p.ID, &p.ItemID, &p.Amount, &p.Currency, &p.ConvertedAmount, &p.ConvertedCurrency,
			&p.TaxRate, &p.Shipping, &p.URL, &p.Module, &p.Condition, &p.ObservedAt, &p.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan price")
		}
		out = append(out, &p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
