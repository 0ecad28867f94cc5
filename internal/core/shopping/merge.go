package shopping

import "weekly-eats/internal/core/units"

// UnitConflict 清單上既有項目與新需求單位不同。
// 每個食材最多一筆；ExistingQuantity 為合併完成後清單項目的數量，
// UnitBreakdown 依單位列出既有數量與所有不同單位的新需求合計。
type UnitConflict struct {
	FoodItemID        string         `json:"food_item_id"`
	FoodItemName      string         `json:"food_item_name"`
	ExistingQuantity  float64        `json:"existing_quantity"`
	ExistingUnit      string         `json:"existing_unit"`
	NewQuantity       float64        `json:"new_quantity"`
	NewUnit           string         `json:"new_unit"`
	IsAutoConverted   bool           `json:"is_auto_converted"`
	SuggestedQuantity *float64       `json:"suggested_quantity,omitempty"`
	SuggestedUnit     string         `json:"suggested_unit,omitempty"`
	UnitBreakdown     []UnitQuantity `json:"unit_breakdown,omitempty"`
}

// MergeResult MergeWithShoppingList 的結果
type MergeResult struct {
	MergedItems []ShoppingListItem `json:"merged_items"`
	Conflicts   []UnitConflict     `json:"conflicts"`
}

// MergeWithShoppingList 把新需求併入既有清單。
// 新食材直接加入、同單位原地加總；單位不同的需求依食材收集成一筆衝突，
// 既有項目的單位保持原狀等待呼叫端解決。existing 不會被修改。
func MergeWithShoppingList(existing []ShoppingListItem, extracted []ExtractedItem, meta map[string]FoodItemMeta) MergeResult {
	merged := make([]ShoppingListItem, len(existing), len(existing)+len(extracted))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, item := range merged {
		if _, ok := index[item.FoodItemID]; !ok {
			index[item.FoodItemID] = i
		}
	}

	// 不同單位的新需求，依食材首次衝突的順序
	var conflictOrder []string
	incoming := make(map[string][]ExtractedItem)

	for _, e := range extracted {
		i, ok := index[e.FoodItemID]
		if !ok {
			index[e.FoodItemID] = len(merged)
			merged = append(merged, ShoppingListItem{
				FoodItemID: e.FoodItemID,
				Name:       DisplayName(meta, e.FoodItemID, e.Quantity),
				Quantity:   e.Quantity,
				Unit:       e.Unit,
				Checked:    false,
			})
			continue
		}

		current := &merged[i]
		if current.Unit == e.Unit {
			current.Quantity += e.Quantity
			if _, known := meta[e.FoodItemID]; known {
				current.Name = DisplayName(meta, e.FoodItemID, current.Quantity)
			}
			continue
		}

		if _, ok := incoming[e.FoodItemID]; !ok {
			conflictOrder = append(conflictOrder, e.FoodItemID)
		}
		incoming[e.FoodItemID] = append(incoming[e.FoodItemID], e)
	}

	result := MergeResult{
		MergedItems: merged,
		Conflicts:   make([]UnitConflict, 0, len(conflictOrder)),
	}
	for _, id := range conflictOrder {
		result.Conflicts = append(result.Conflicts, unitConflict(merged[index[id]], incoming[id]))
	}
	return result
}

// unitConflict current 為合併後的清單項目，incoming 為所有單位不同的新需求
func unitConflict(current ShoppingListItem, incoming []ExtractedItem) UnitConflict {
	others := sumByUnit(incoming)
	breakdown := make([]UnitQuantity, 0, len(others)+1)
	breakdown = append(breakdown, UnitQuantity{Quantity: current.Quantity, Unit: current.Unit})
	breakdown = append(breakdown, others...)

	conflict := UnitConflict{
		FoodItemID:       current.FoodItemID,
		FoodItemName:     current.Name,
		ExistingQuantity: current.Quantity,
		ExistingUnit:     current.Unit,
		NewQuantity:      others[0].Quantity,
		NewUnit:          others[0].Unit,
		UnitBreakdown:    breakdown,
	}

	if q, u, ok := autoConvert(breakdown); ok {
		rounded := units.RoundQuantity(q)
		conflict.IsAutoConverted = true
		conflict.SuggestedQuantity = &rounded
		conflict.SuggestedUnit = u
	}
	return conflict
}

// DisplayName 數量為 1 用單數名稱，其他用複數；缺少時互相替代，最後退回食材 ID
func DisplayName(meta map[string]FoodItemMeta, foodItemID string, quantity float64) string {
	m, ok := meta[foodItemID]
	if !ok {
		return foodItemID
	}
	singular, plural := m.SingularName, m.PluralName
	if singular == "" {
		singular = plural
	}
	if plural == "" {
		plural = singular
	}
	name := plural
	if quantity == 1 {
		name = singular
	}
	if name == "" {
		return foodItemID
	}
	return name
}
