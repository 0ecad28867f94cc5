package shopping

import (
	"context"

	"weekly-eats/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 購物清單服務，供 HTTP 處理器使用
type Service struct {
	extractor *Extractor
}

// NewService 創建新的購物清單服務
func NewService(extractor *Extractor) *Service {
	return &Service{
		extractor: extractor,
	}
}

// Extract 展開餐食計畫
func (s *Service) Extract(ctx context.Context, mealPlans []MealPlan) []ExtractedItem {
	return s.extractor.ExtractFoodItemsFromMealPlans(ctx, mealPlans)
}

// Generate 展開餐食計畫並與既有清單一起合併
func (s *Service) Generate(ctx context.Context, mealPlans []MealPlan, existing []ShoppingListItem) CombineResult {
	items := ExtractedFromShoppingList(existing)
	items = append(items, s.Extract(ctx, mealPlans)...)

	result := CombineExtractedItems(items)
	common.LogInfo("Generated shopping list",
		zap.Int("meal_plans", len(mealPlans)),
		zap.Int("existing_items", len(existing)),
		zap.Int("combined_items", len(result.CombinedItems)),
		zap.Int("conflicts", len(result.Conflicts)),
	)
	return result
}

// Combine 合併需求
func (s *Service) Combine(items []ExtractedItem) CombineResult {
	return CombineExtractedItems(items)
}

// Merge 併入既有清單
func (s *Service) Merge(existing []ShoppingListItem, extracted []ExtractedItem, meta map[string]FoodItemMeta) MergeResult {
	result := MergeWithShoppingList(existing, extracted, meta)
	if len(result.Conflicts) > 0 {
		common.LogDebug("Merge produced unit conflicts", zap.Int("conflicts", len(result.Conflicts)))
	}
	return result
}

// Resolve 套用使用者的衝突解決方案
func (s *Service) Resolve(items []ShoppingListItem, resolutions []Resolution, meta map[string]FoodItemMeta) []ShoppingListItem {
	return ApplyResolutions(items, resolutions, meta)
}
