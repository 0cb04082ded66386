package pgitems

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS tracked_items (
  id BIGSERIAL PRIMARY KEY,
  jan BIGINT NOT NULL,
  term_en TEXT NOT NULL DEFAULT '',
  term_jp TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  disabled BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (jan)
)`,
		`
CREATE TABLE IF NOT EXISTS prices (
  id BIGSERIAL PRIMARY KEY,
  item_id BIGINT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
  amount DOUBLE PRECISION NOT NULL,
  currency TEXT NOT NULL,
  converted_amount DOUBLE PRECISION NOT NULL,
  converted_currency TEXT NOT NULL,
  tax_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
  shipping DOUBLE PRECISION NOT NULL DEFAULT 0,
  url TEXT NOT NULL DEFAULT '',
  module TEXT NOT NULL,
  condition TEXT NOT NULL,
  observed_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_item_id_observed_at ON prices(item_id, observed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_item_id_converted_amount ON prices(item_id, converted_amount ASC)`,
		// Повторное наблюдение той же цены в тот же момент не создаёт дубль.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_prices_dedup ON prices(item_id, module, condition, observed_at)`,
		`
CREATE TABLE IF NOT EXISTS conditions (
  id BIGSERIAL PRIMARY KEY,
  item_id BIGINT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
  condition_type TEXT NOT NULL,
  item_condition TEXT NOT NULL DEFAULT 'all',
  value DOUBLE PRECISION NOT NULL,
  disabled BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_conditions_item_id ON conditions(item_id)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
