package cache

import (
	"context"
	"fmt"

	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"
)

// Store 字串鍵值快取。找不到或已過期時 Get 回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// StatsProvider 可回報統計資訊的快取
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Backend {
	case "", config.CacheBackendMemory:
		return NewManager(cfg), nil
	case config.CacheBackendRedis:
		store, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
