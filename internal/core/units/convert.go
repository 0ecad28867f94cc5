package units

import "math"

// bestUnitEpsilon 選擇最佳單位時容忍的浮點誤差
const bestUnitEpsilon = 1e-9

// preferredUnits 由小到大排列的建議單位（偏英美制）
var preferredUnits = map[Kind][]PhysicalUnit{
	KindVolume: {Teaspoon, Tablespoon, Cup, Pint, Quart, Gallon},
	KindWeight: {Ounce, Pound},
}

// sameName 名稱正規化後相同，視為同一單位
func sameName(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// AreSameFamily 兩個單位是否同屬體積或同屬重量。
// 相同單位（含計數單位）永遠回傳 true。
func AreSameFamily(unitA, unitB string) bool {
	if sameName(unitA, unitB) {
		return true
	}
	a, okA := ToPhysicalUnit(unitA)
	b, okB := ToPhysicalUnit(unitB)
	if !okA || !okB {
		return false
	}
	return a.Kind() == b.Kind()
}

// TryConvert 將數量從 fromUnit 換算到 toUnit。
// 不可換算或跨類別時回傳 false；相同單位原樣回傳。
func TryConvert(quantity float64, fromUnit, toUnit string) (float64, bool) {
	if sameName(fromUnit, toUnit) {
		return quantity, true
	}
	from, okFrom := ToPhysicalUnit(fromUnit)
	to, okTo := ToPhysicalUnit(toUnit)
	if !okFrom || !okTo || from.Kind() != to.Kind() {
		return 0, false
	}
	if quantity == 0 {
		return 0, true
	}
	return convert(quantity, from, to), true
}

func convert(quantity float64, from, to PhysicalUnit) float64 {
	if from == to {
		return quantity
	}
	return quantity * physicalTable[from].toBase / physicalTable[to].toBase
}

// PickBestUnit 為數量挑選最易讀的同類單位：
// 換算後數值 >= 1 的最大建議單位；皆小於 1 時用最小的建議單位。
// 不可換算單位、數量 <= 0 或結果仍是原單位時原樣回傳。
func PickBestUnit(quantity float64, unit string) (float64, string) {
	if quantity <= 0 {
		return quantity, unit
	}
	from, ok := ToPhysicalUnit(unit)
	if !ok {
		return quantity, unit
	}
	candidates := preferredUnits[from.Kind()]
	if len(candidates) == 0 {
		return quantity, unit
	}

	best := candidates[0]
	for _, candidate := range candidates {
		if convert(quantity, from, candidate) >= 1-bestUnitEpsilon {
			best = candidate
		}
	}

	if best == from {
		return quantity, unit
	}
	return convert(quantity, from, best), best.Name()
}

// RoundQuantity 四捨五入到小數兩位，只用於呈現給使用者的建議值
func RoundQuantity(quantity float64) float64 {
	return math.Round(quantity*100) / 100
}
