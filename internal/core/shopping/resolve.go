package shopping

import (
	"fmt"
	"strings"
)

// Resolution 使用者為某個食材選定的數量與單位
type Resolution struct {
	FoodItemID string  `json:"food_item_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"gte=0"`
	Unit       string  `json:"unit" binding:"unitname"`
}

// UnresolvedError 仍有 pending 項目沒有對應的解決方案
type UnresolvedError struct {
	FoodItemIDs []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved conflicts for food items: %s", strings.Join(e.FoodItemIDs, ", "))
}

// ApplyResolution 套用一個衝突的解決方案。
// 數量、單位、名稱一併更新，checked 重設為 false；清單上沒有該食材時新增一筆。
// 回傳新的切片，items 不會被修改。
func ApplyResolution(items []ShoppingListItem, foodItemID string, r Resolution, meta map[string]FoodItemMeta) []ShoppingListItem {
	out := make([]ShoppingListItem, len(items), len(items)+1)
	copy(out, items)

	updated := ShoppingListItem{
		FoodItemID: foodItemID,
		Name:       DisplayName(meta, foodItemID, r.Quantity),
		Quantity:   r.Quantity,
		Unit:       r.Unit,
		Checked:    false,
	}

	for i := range out {
		if out[i].FoodItemID != foodItemID {
			continue
		}
		if _, known := meta[foodItemID]; !known && out[i].Name != "" {
			updated.Name = out[i].Name
		}
		out[i] = updated
		return out
	}
	return append(out, updated)
}

// ApplyResolutions 依序套用多個解決方案
func ApplyResolutions(items []ShoppingListItem, resolutions []Resolution, meta map[string]FoodItemMeta) []ShoppingListItem {
	out := items
	for _, r := range resolutions {
		out = ApplyResolution(out, r.FoodItemID, r, meta)
	}
	if out == nil {
		out = []ShoppingListItem{}
	}
	return out
}

// ResolvePreMerge 把 pending 項目換成使用者選定的數量與單位。
// 已 resolved 的項目若也有對應的解決方案則一併覆寫。
// 任何 pending 項目缺少解決方案時回傳 *UnresolvedError。
func ResolvePreMerge(combined []CombinedItem, resolutions []Resolution) ([]ExtractedItem, error) {
	byID := make(map[string]Resolution, len(resolutions))
	for _, r := range resolutions {
		byID[r.FoodItemID] = r
	}

	out := make([]ExtractedItem, 0, len(combined))
	var missing []string
	for _, c := range combined {
		r, ok := byID[c.FoodItemID]
		switch {
		case ok:
			out = append(out, ExtractedItem{FoodItemID: c.FoodItemID, Quantity: r.Quantity, Unit: r.Unit})
		case c.Pending():
			missing = append(missing, c.FoodItemID)
		default:
			out = append(out, c.ExtractedItem)
		}
	}

	if len(missing) > 0 {
		return nil, &UnresolvedError{FoodItemIDs: missing}
	}
	return out, nil
}

// Resolve 以解決方案完成這次合併
func (r CombineResult) Resolve(resolutions []Resolution) ([]ExtractedItem, error) {
	return ResolvePreMerge(r.CombinedItems, resolutions)
}

// ExtractedFromShoppingList 把既有清單轉成需求，方便與新需求一起合併
func ExtractedFromShoppingList(items []ShoppingListItem) []ExtractedItem {
	out := make([]ExtractedItem, 0, len(items))
	for _, item := range items {
		out = append(out, ExtractedItem{
			FoodItemID: item.FoodItemID,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
		})
	}
	return out
}
