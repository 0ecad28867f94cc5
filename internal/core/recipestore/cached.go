package recipestore

import (
	"context"
	"errors"

	"weekly-eats/internal/core/cache"
	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/pkg/common"

	"go.uber.org/zap"
)

// CachedFetcher 先查快取，未命中時才呼叫下游並寫回
type CachedFetcher struct {
	next  shopping.RecipeFetcher
	store cache.Store
}

// NewCachedFetcher store 為 nil 時直接回傳 next
func NewCachedFetcher(next shopping.RecipeFetcher, store cache.Store) shopping.RecipeFetcher {
	if store == nil {
		return next
	}
	return &CachedFetcher{
		next:  next,
		store: store,
	}
}

func cacheKey(id string) string {
	return "recipe:" + id
}

// FetchRecipe 取得食譜；快取錯誤只記錄不影響結果
func (f *CachedFetcher) FetchRecipe(ctx context.Context, id string) (*shopping.Recipe, error) {
	key := cacheKey(id)

	if raw, err := f.store.Get(ctx, key); err == nil {
		var r shopping.Recipe
		if err := common.ParseJSON(raw, &r); err == nil {
			return &r, nil
		}
		common.LogWarn("Discarding unreadable cached recipe", zap.String("recipe_id", id))
	} else if !errors.Is(err, common.ErrCacheMiss) {
		common.LogWarn("Recipe cache lookup failed", zap.String("recipe_id", id), zap.Error(err))
	}

	r, err := f.next.FetchRecipe(ctx, id)
	if err != nil || r == nil {
		return r, err
	}

	raw, err := common.ToJSON(r)
	if err != nil {
		return r, nil
	}
	if err := f.store.Set(ctx, key, raw); err != nil {
		common.LogWarn("Failed to cache recipe", zap.String("recipe_id", id), zap.Error(err))
	}

	return r, nil
}
