package pgitems

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/models"
)

func (s *Storage) AddCondition(ctx context.Context, c *models.Condition) error {
	now := time.Now().UTC()
	err := s.db.QueryRow(ctx, `
INSERT INTO conditions (item_id, condition_type, item_condition, value, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`, c.ItemID, c.Type, c.ItemCondition, c.Value, now).Scan(&c.ID)
	if err != nil {
		return errors.Wrap(err, "insert condition")
	}
	c.CreatedAt = now
	return nil
}

func (s *Storage) ListEnabledConditions(ctx context.Context, itemID uint64) ([]*models.Condition, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, item_id, condition_type, item_condition, value, disabled, created_at
FROM conditions
WHERE item_id = $1 AND NOT disabled
ORDER BY id ASC
`, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "select conditions")
	}
	defer rows.Close()

	var out []*models.Condition
	for rows.Next() {
		var c models.Condition
		if err := rows.Scan(&c.ID, &c.ItemID, &c.Type, &c.ItemCondition, &c.Value, &c.Disabled, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan condition")
		}
		out = append(out, &c)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) SetConditionDisabled(ctx context.Context, conditionID uint64, disabled bool) error {
	_, err := s.db.Exec(ctx, `UPDATE conditions SET disabled = $2 WHERE id = $1`, conditionID, disabled)
	return errors.Wrap(err, "set condition disabled")
}
