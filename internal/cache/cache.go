package cache

import (
	"context"
	"time"
)

// BytesCache — минимальный контракт кеша для сервисного слоя.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Limiter отвечает на вопрос "можно ли сделать ещё один запрос в этом окне".
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}
