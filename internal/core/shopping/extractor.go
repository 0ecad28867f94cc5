package shopping

import (
	"context"

	"weekly-eats/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultMaxDepth 食譜巢狀展開的預設最大深度
const DefaultMaxDepth = 50

// Extractor 將餐食計畫與巢狀食譜展開成扁平的食材需求
type Extractor struct {
	fetcher  RecipeFetcher
	maxDepth int
}

// NewExtractor 創建展開器，maxDepth <= 0 時使用 DefaultMaxDepth
func NewExtractor(fetcher RecipeFetcher, maxDepth int) *Extractor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Extractor{
		fetcher:  fetcher,
		maxDepth: maxDepth,
	}
}

// ExtractFoodItemsFromMealPlans 深度優先展開所有餐食計畫。
// 單一分支的取得失敗、循環引用或超過深度只會截斷該分支並記錄警告。
func (e *Extractor) ExtractFoodItemsFromMealPlans(ctx context.Context, mealPlans []MealPlan) []ExtractedItem {
	w := &walk{
		extractor: e,
		recipes:   make(map[string]*Recipe),
	}

	items := []ExtractedItem{}
	for _, plan := range mealPlans {
		for _, item := range plan.Items {
			items = w.mealPlanItem(ctx, item, items)
		}
	}

	common.LogDebug("Extracted food items from meal plans",
		zap.Int("meal_plans", len(mealPlans)),
		zap.Int("items", len(items)),
		zap.Int("recipes_fetched", len(w.recipes)),
	)

	return items
}

// ExtractFoodItemsFromRecipe 展開單一食譜，servings 為份量倍數（<= 0 視為 1）
func (e *Extractor) ExtractFoodItemsFromRecipe(ctx context.Context, recipeID string, servings float64) []ExtractedItem {
	if servings <= 0 {
		servings = 1
	}
	w := &walk{
		extractor: e,
		recipes:   make(map[string]*Recipe),
	}
	return w.recipe(ctx, recipeID, servings, map[string]struct{}{}, 1, []ExtractedItem{})
}

// walk 單次展開的狀態；recipes 快取本次已取得的食譜（失敗記為 nil）
type walk struct {
	extractor *Extractor
	recipes   map[string]*Recipe
}

func (w *walk) mealPlanItem(ctx context.Context, item MealPlanItem, out []ExtractedItem) []ExtractedItem {
	switch item.Type {
	case ItemTypeFoodItem:
		return append(out, ExtractedItem{
			FoodItemID: item.ID,
			Quantity:   nonNegative(valueOr(item.Quantity, 0)),
			Unit:       item.Unit,
		})
	case ItemTypeRecipe:
		return w.recipe(ctx, item.ID, valueOr(item.Quantity, 1), map[string]struct{}{}, 1, out)
	case ItemTypeIngredientGroup:
		return w.groups(ctx, item.Ingredients, 1, map[string]struct{}{}, 0, out)
	default:
		common.LogWarn("Skipping meal plan item of unknown type",
			zap.String("type", string(item.Type)),
			zap.String("id", item.ID),
		)
		return out
	}
}

// recipe 展開一份食譜。visited 只屬於目前分支，往下傳遞時複製
func (w *walk) recipe(ctx context.Context, id string, multiplier float64, visited map[string]struct{}, depth int, out []ExtractedItem) []ExtractedItem {
	if multiplier <= 0 {
		common.LogWarn("Non-positive recipe multiplier, skipping branch",
			zap.String("recipe_id", id),
			zap.Float64("multiplier", multiplier),
		)
		return out
	}
	if depth > w.extractor.maxDepth {
		common.LogWarn("Recipe nesting exceeds max depth, truncating branch",
			zap.String("recipe_id", id),
			zap.Int("depth", depth),
			zap.Int("max_depth", w.extractor.maxDepth),
		)
		return out
	}
	if _, seen := visited[id]; seen {
		common.LogWarn("Circular recipe reference detected, skipping branch",
			zap.String("recipe_id", id),
			zap.Int("depth", depth),
		)
		return out
	}

	r := w.fetch(ctx, id)
	if r == nil {
		return out
	}

	branch := make(map[string]struct{}, len(visited)+1)
	for k := range visited {
		branch[k] = struct{}{}
	}
	branch[id] = struct{}{}

	return w.groups(ctx, r.Ingredients, multiplier, branch, depth, out)
}

func (w *walk) groups(ctx context.Context, groups []RecipeIngredientList, multiplier float64, visited map[string]struct{}, depth int, out []ExtractedItem) []ExtractedItem {
	for _, group := range groups {
		for _, ing := range group.Ingredients {
			switch ing.Type {
			case ItemTypeFoodItem:
				out = append(out, ExtractedItem{
					FoodItemID: ing.ID,
					Quantity:   nonNegative(valueOr(ing.Quantity, 0)) * multiplier,
					Unit:       ing.Unit,
				})
			case ItemTypeRecipe:
				out = w.recipe(ctx, ing.ID, multiplier*valueOr(ing.Quantity, 1), visited, depth+1, out)
			default:
				common.LogWarn("Skipping ingredient of unknown type",
					zap.String("type", string(ing.Type)),
					zap.String("id", ing.ID),
				)
			}
		}
	}
	return out
}

func (w *walk) fetch(ctx context.Context, id string) *Recipe {
	if r, ok := w.recipes[id]; ok {
		return r
	}

	r, err := w.extractor.fetcher.FetchRecipe(ctx, id)
	if err != nil {
		common.LogWarn("Failed to fetch recipe, branch contributes no items",
			zap.String("recipe_id", id),
			zap.Error(err),
		)
		r = nil
	}
	w.recipes[id] = r
	return r
}
