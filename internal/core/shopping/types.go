package shopping

import "context"

// ItemType 餐食計畫項目或食譜食材的種類
type ItemType string

const (
	ItemTypeFoodItem        ItemType = "foodItem"
	ItemTypeRecipe          ItemType = "recipe"
	ItemTypeIngredientGroup ItemType = "ingredientGroup"
)

// ExtractedItem 展開過程中發現的一筆食材需求
type ExtractedItem struct {
	FoodItemID string  `json:"food_item_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"gte=0"`
	Unit       string  `json:"unit" binding:"unitname"`
}

// RecipeIngredient 食譜中的一個食材，可能是食材本身或另一份食譜
type RecipeIngredient struct {
	Type     ItemType `json:"type"`
	ID       string   `json:"id"`
	Quantity *float64 `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	Unit     string   `json:"unit,omitempty" binding:"unitname"`
}

// RecipeIngredientList 食譜的一組食材
type RecipeIngredientList struct {
	Title       string             `json:"title,omitempty"`
	Ingredients []RecipeIngredient `json:"ingredients" binding:"dive"`
}

// Recipe 食譜
type Recipe struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title,omitempty"`
	Ingredients []RecipeIngredientList `json:"ingredients"`
}

// MealPlanItem 餐食計畫中的一個項目。
// foodItem 使用 Quantity/Unit；recipe 的 Quantity 為份量倍數（預設 1）；
// ingredientGroup 直接內嵌 Ingredients。
type MealPlanItem struct {
	Type        ItemType               `json:"type" binding:"required,oneof=foodItem recipe ingredientGroup"`
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Quantity    *float64               `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	Unit        string                 `json:"unit,omitempty" binding:"unitname"`
	Ingredients []RecipeIngredientList `json:"ingredients,omitempty" binding:"omitempty,dive"`
}

// MealPlan 餐食計畫
type MealPlan struct {
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Items []MealPlanItem `json:"items" binding:"dive"`
}

// RecipeFetcher 依 ID 取得食譜的外部協作者
type RecipeFetcher interface {
	FetchRecipe(ctx context.Context, id string) (*Recipe, error)
}

// RecipeFetcherFunc 讓普通函式實作 RecipeFetcher
type RecipeFetcherFunc func(ctx context.Context, id string) (*Recipe, error)

func (f RecipeFetcherFunc) FetchRecipe(ctx context.Context, id string) (*Recipe, error) {
	return f(ctx, id)
}

// ShoppingListItem 購物清單上的項目
type ShoppingListItem struct {
	FoodItemID string  `json:"food_item_id" binding:"required"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity" binding:"gte=0"`
	Unit       string  `json:"unit"`
	Checked    bool    `json:"checked"`
}

// FoodItemMeta 食材的顯示資訊
type FoodItemMeta struct {
	SingularName string `json:"singular_name"`
	PluralName   string `json:"plural_name"`
	Unit         string `json:"unit,omitempty"`
}

// UnitQuantity 某個單位的合計數量
type UnitQuantity struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// nonNegative 負數數量視為 0
func nonNegative(q float64) float64 {
	if q < 0 {
		return 0
	}
	return q
}
