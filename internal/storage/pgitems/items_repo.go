package pgitems

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/models"
)

const itemColumns = `
  id, jan, term_en, term_jp, description, image, disabled, created_at, updated_at`

func (s *Storage) CreateOrGetItems(ctx context.Context, inputs []models.ItemCreateInput) ([]*models.Item, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]uint64, 0, len(inputs))
	for _, in := range inputs {
		var id uint64
		err := tx.QueryRow(ctx, `
INSERT INTO tracked_items (jan, created_at, updated_at)
VALUES ($1,$2,$2)
ON CONFLICT (jan)
DO UPDATE SET updated_at = tracked_items.updated_at
RETURNING id
`, in.JAN, now).Scan(&id)
		if err != nil {
			return nil, errors.Wrap(err, "insert item")
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.GetItemsByIDs(ctx, ids)
}

func (s *Storage) GetItemsByIDs(ctx context.Context, ids []uint64) ([]*models.Item, error) {
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}

	rows, err := s.db.Query(ctx, `
SELECT`+itemColumns+`
FROM tracked_items
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "select items")
	}
	defer rows.Close()

	return scanItems(rows, len(ids))
}

// GetItemByJAN возвращает nil без ошибки, если товара с таким JAN нет.
func (s *Storage) GetItemByJAN(ctx context.Context, jan int64) (*models.Item, error) {
	var it models.Item
	err := s.db.QueryRow(ctx, `
SELECT`+itemColumns+`
FROM tracked_items
WHERE jan = $1
`, jan).Scan(
		&it.ID, &it.JAN, &it.TermEN, &it.TermJP, &it.Description, &it.Image,
		&it.Disabled, &it.CreatedAt, &it.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select item by jan")
	}
	return &it, nil
}

func (s *Storage) ListActiveItems(ctx context.Context) ([]*models.Item, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+itemColumns+`
FROM tracked_items
WHERE NOT disabled
ORDER BY id ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "select active items")
	}
	defer rows.Close()

	return scanItems(rows, 0)
}

// UpdateItemDetails сохраняет дозаполненные описания/термины/картинку.
func (s *Storage) UpdateItemDetails(ctx context.Context, it *models.Item) error {
	_, err := s.db.Exec(ctx, `
UPDATE tracked_items
SET term_en = $2, term_jp = $3, description = $4, image = $5, updated_at = now()
WHERE id = $1
`, it.ID, it.TermEN, it.TermJP, it.Description, it.Image)
	return errors.Wrap(err, "update item details")
}

func (s *Storage) SetItemDisabled(ctx context.Context, itemID uint64, disabled bool) error {
	_, err := s.db.Exec(ctx, `
UPDATE tracked_items SET disabled = $2, updated_at = now() WHERE id = $1
`, itemID, disabled)
	return errors.Wrap(err, "set item disabled")
}

func scanItems(rows pgx.Rows, sizeHint int) ([]*models.Item, error) {
	out := make([]*models.Item, 0, sizeHint)
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(
			&it.ID, &it.JAN, &it.TermEN, &it.TermJP, &it.Description, &it.Image,
			&it.Disabled, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		out = append(out, &it)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
