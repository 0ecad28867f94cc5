package shopping

import "weekly-eats/internal/core/units"

// CombinedStatus 合併後項目的狀態
type CombinedStatus string

const (
	// StatusResolved 數量與單位已確定
	StatusResolved CombinedStatus = "resolved"
	// StatusPending 有單位衝突，數量與單位只是暫時的佔位值
	StatusPending CombinedStatus = "pending"
)

// CombinedItem 每個食材一筆。Pending 時 ExtractedItem 為第一筆原始需求，
// 在衝突解決前不可當作最終數量使用
type CombinedItem struct {
	ExtractedItem
	Status CombinedStatus `json:"status"`
}

// Pending 是否仍等待衝突解決
func (c CombinedItem) Pending() bool {
	return c.Status == StatusPending
}

// PreMergeConflict 同一食材出現多個不同單位
type PreMergeConflict struct {
	FoodItemID        string          `json:"food_item_id"`
	Items             []ExtractedItem `json:"items"`
	UnitBreakdown     []UnitQuantity  `json:"unit_breakdown"`
	IsAutoConverted   bool            `json:"is_auto_converted"`
	SuggestedQuantity *float64        `json:"suggested_quantity,omitempty"`
	SuggestedUnit     string          `json:"suggested_unit,omitempty"`
}

// CombineResult CombineExtractedItems 的結果
type CombineResult struct {
	CombinedItems []CombinedItem     `json:"combined_items"`
	Conflicts     []PreMergeConflict `json:"conflicts"`
}

// CombineExtractedItems 依食材分組並加總同單位數量。
// 同一食材只要出現兩個以上不同單位就一定產生衝突，不論能否換算。
func CombineExtractedItems(items []ExtractedItem) CombineResult {
	var order []string
	groups := make(map[string][]ExtractedItem)
	for _, item := range items {
		if _, ok := groups[item.FoodItemID]; !ok {
			order = append(order, item.FoodItemID)
		}
		groups[item.FoodItemID] = append(groups[item.FoodItemID], item)
	}

	result := CombineResult{
		CombinedItems: make([]CombinedItem, 0, len(order)),
		Conflicts:     []PreMergeConflict{},
	}

	for _, id := range order {
		group := groups[id]
		if len(group) == 1 {
			result.CombinedItems = append(result.CombinedItems, CombinedItem{ExtractedItem: group[0], Status: StatusResolved})
			continue
		}

		breakdown := sumByUnit(group)
		if len(breakdown) == 1 {
			result.CombinedItems = append(result.CombinedItems, CombinedItem{
				ExtractedItem: ExtractedItem{FoodItemID: id, Quantity: breakdown[0].Quantity, Unit: breakdown[0].Unit},
				Status:        StatusResolved,
			})
			continue
		}

		result.CombinedItems = append(result.CombinedItems, CombinedItem{ExtractedItem: group[0], Status: StatusPending})

		conflict := PreMergeConflict{
			FoodItemID:    id,
			Items:         group,
			UnitBreakdown: breakdown,
		}
		if q, u, ok := autoConvert(breakdown); ok {
			rounded := units.RoundQuantity(q)
			conflict.IsAutoConverted = true
			conflict.SuggestedQuantity = &rounded
			conflict.SuggestedUnit = u
		}
		result.Conflicts = append(result.Conflicts, conflict)
	}

	return result
}

// sumByUnit 依首次出現順序回傳每個單位的合計
func sumByUnit(group []ExtractedItem) []UnitQuantity {
	var breakdown []UnitQuantity
	index := make(map[string]int)
	for _, item := range group {
		if i, ok := index[item.Unit]; ok {
			breakdown[i].Quantity += item.Quantity
			continue
		}
		index[item.Unit] = len(breakdown)
		breakdown = append(breakdown, UnitQuantity{Quantity: item.Quantity, Unit: item.Unit})
	}
	return breakdown
}

// autoConvert 所有單位與第一個單位同類時，換算到第一個單位加總後挑選最佳單位
func autoConvert(breakdown []UnitQuantity) (float64, string, bool) {
	target := breakdown[0].Unit
	for _, b := range breakdown[1:] {
		if !units.AreSameFamily(target, b.Unit) {
			return 0, "", false
		}
	}

	total := 0.0
	for _, b := range breakdown {
		converted, ok := units.TryConvert(b.Quantity, b.Unit, target)
		if !ok {
			return 0, "", false
		}
		total += converted
	}

	q, u := units.PickBestUnit(total, target)
	return q, u, true
}
