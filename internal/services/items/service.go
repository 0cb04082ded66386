package items

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/PriceBox/internal/broker/messages"
	"github.com/BearBump/PriceBox/internal/cache"
	"github.com/BearBump/PriceBox/internal/models"
)

type Repository interface {
	CreateOrGetItems(ctx context.Context, inputs []models.ItemCreateInput) ([]*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []uint64) ([]*models.Item, error)
	GetItemByJAN(ctx context.Context, jan int64) (*models.Item, error)
	ListActiveItems(ctx context.Context) ([]*models.Item, error)
	SetItemDisabled(ctx context.Context, itemID uint64, disabled bool) error
	AddCondition(ctx context.Context, c *models.Condition) error
	ListEnabledConditions(ctx context.Context, itemID uint64) ([]*models.Condition, error)
	SetConditionDisabled(ctx context.Context, conditionID uint64, disabled bool) error
	LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error)
	ListPrices(ctx context.Context, itemID uint64, limit, offset int) ([]*models.Price, error)
}

type Service struct {
	repo      Repository
	cache     cache.BytesCache
	lowestTTL time.Duration
}

func New(repo Repository, c cache.BytesCache, lowestTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, lowestTTL: lowestTTL}
}

func (s *Service) CreateItems(ctx context.Context, inputs []models.ItemCreateInput) ([]*models.Item, error) {
	if len(inputs) == 0 {
		return nil, errors.New("items is empty")
	}
	if len(inputs) > 10_000 {
		return nil, errors.New("too many items (max 10000)")
	}

	clean := make([]models.ItemCreateInput, 0, len(inputs))
	seen := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		if in.JAN <= 0 {
			return nil, errors.New("jan is required")
		}
		if _, ok := seen[in.JAN]; ok {
			continue
		}
		seen[in.JAN] = struct{}{}
		clean = append(clean, in)
	}

	return s.repo.CreateOrGetItems(ctx, clean)
}

func (s *Service) ListActiveItems(ctx context.Context) ([]*models.Item, error) {
	return s.repo.ListActiveItems(ctx)
}

func (s *Service) GetItemsByIDs(ctx context.Context, ids []uint64) ([]*models.Item, error) {
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}
	return s.repo.GetItemsByIDs(ctx, ids)
}

func (s *Service) GetItemByJAN(ctx context.Context, jan int64) (*models.Item, error) {
	if jan <= 0 {
		return nil, errors.New("jan is required")
	}
	return s.repo.GetItemByJAN(ctx, jan)
}

func (s *Service) SetItemDisabled(ctx context.Context, itemID uint64, disabled bool) error {
	if itemID == 0 {
		return errors.New("itemId is required")
	}
	return s.repo.SetItemDisabled(ctx, itemID, disabled)
}

func (s *Service) AddCondition(ctx context.Context, c *models.Condition) error {
	if c.ItemID == 0 {
		return errors.New("itemId is required")
	}
	if _, err := models.ParseConditionType(string(c.Type)); err != nil {
		return err
	}
	if c.ItemCondition == "" {
		c.ItemCondition = models.ItemConditionAll
	}
	if _, err := models.ParseItemCondition(string(c.ItemCondition)); err != nil {
		return err
	}
	return s.repo.AddCondition(ctx, c)
}

func (s *Service) ListConditions(ctx context.Context, itemID uint64) ([]*models.Condition, error) {
	return s.repo.ListEnabledConditions(ctx, itemID)
}

func (s *Service) SetConditionDisabled(ctx context.Context, conditionID uint64, disabled bool) error {
	if conditionID == 0 {
		return errors.New("conditionId is required")
	}
	return s.repo.SetConditionDisabled(ctx, conditionID, disabled)
}

func (s *Service) ListPrices(ctx context.Context, itemID uint64, limit, offset int) ([]*models.Price, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPrices(ctx, itemID, limit, offset)
}

// LowestPrice отдаёт минимальную цену товара, с кешом поверх БД.
// Кеш — "лучшее усилие": его недоступность не ломает ответ.
func (s *Service) LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error) {
	if s.cache != nil && s.lowestTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, lowestKey(itemID)); err == nil && ok {
			var p models.Price
			if json.Unmarshal(b, &p) == nil {
				return &p, nil
			}
		}
	}

	p, err := s.repo.LowestPrice(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if p != nil && s.cache != nil && s.lowestTTL > 0 {
		b, _ := json.Marshal(p)
		_ = s.cache.Set(ctx, lowestKey(itemID), b, s.lowestTTL)
	}
	return p, nil
}

// ApplyPriceObserved обрабатывает сообщение воркера: свежее наблюдение
// делает кешированную минимальную цену подозрительной, поэтому сбрасываем её.
func (s *Service) ApplyPriceObserved(ctx context.Context, msg messages.PriceObserved) error {
	if msg.ItemID == 0 {
		return errors.New("item_id is required")
	}

	if s.cache != nil && s.lowestTTL > 0 {
		if err := s.cache.Delete(ctx, lowestKey(msg.ItemID)); err != nil {
			return err
		}
	}
	return nil
}

func lowestKey(id uint64) string {
	return fmt.Sprintf("item:%d:lowest", id)
}
