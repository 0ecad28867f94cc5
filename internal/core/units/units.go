// Package units 將食譜與購物清單使用的單位名稱對應到物理量，
// 並提供同類單位之間的換算。
package units

import (
	"sort"
	"strings"
)

// Kind 單位類別
type Kind int

const (
	KindUnknown Kind = iota
	KindVolume
	KindWeight
	KindCountable
)

func (k Kind) String() string {
	switch k {
	case KindVolume:
		return "volume"
	case KindWeight:
		return "weight"
	case KindCountable:
		return "countable"
	default:
		return "unknown"
	}
}

// MarshalText 讓 Kind 以字串形式輸出 JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PhysicalUnit 可換算的物理單位。零值 PhysicalNone 表示不可換算
type PhysicalUnit int

const (
	PhysicalNone PhysicalUnit = iota
	Teaspoon
	Tablespoon
	FluidOunce
	Cup
	Pint
	Quart
	Gallon
	Milliliter
	Liter
	Milligram
	Gram
	Kilogram
	Ounce
	Pound
)

type physicalDef struct {
	id     string  // 內部代號
	name   string  // 正規化後的單位名稱
	kind   Kind    // 體積或重量
	toBase float64 // 換算到 ml 或 g 的係數
}

var physicalTable = map[PhysicalUnit]physicalDef{
	// volume (base = ml)
	Teaspoon:   {id: "tsp", name: "teaspoon", kind: KindVolume, toBase: 4.92892159375},
	Tablespoon: {id: "Tbs", name: "tablespoon", kind: KindVolume, toBase: 14.78676478125},
	FluidOunce: {id: "fl-oz", name: "fluid ounce", kind: KindVolume, toBase: 29.5735295625},
	Cup:        {id: "cup", name: "cup", kind: KindVolume, toBase: 236.5882365},
	Pint:       {id: "pnt", name: "pint", kind: KindVolume, toBase: 473.176473},
	Quart:      {id: "qt", name: "quart", kind: KindVolume, toBase: 946.352946},
	Gallon:     {id: "gal", name: "gallon", kind: KindVolume, toBase: 3785.411784},
	Milliliter: {id: "ml", name: "milliliter", kind: KindVolume, toBase: 1},
	Liter:      {id: "l", name: "liter", kind: KindVolume, toBase: 1000},

	// weight (base = g)
	Milligram: {id: "mg", name: "milligram", kind: KindWeight, toBase: 0.001},
	Gram:      {id: "g", name: "gram", kind: KindWeight, toBase: 1},
	Kilogram:  {id: "kg", name: "kilogram", kind: KindWeight, toBase: 1000},
	Ounce:     {id: "oz", name: "ounce", kind: KindWeight, toBase: 28.349523125},
	Pound:     {id: "lb", name: "pound", kind: KindWeight, toBase: 453.59237},
}

// String 回傳內部代號，例如 cup、Tbs、lb
func (p PhysicalUnit) String() string {
	if def, ok := physicalTable[p]; ok {
		return def.id
	}
	return ""
}

// Name 回傳對應的單位名稱
func (p PhysicalUnit) Name() string {
	return physicalTable[p].name
}

// Kind 回傳物理單位的類別
func (p PhysicalUnit) Kind() Kind {
	if def, ok := physicalTable[p]; ok {
		return def.kind
	}
	return KindUnknown
}

// byName 正規化名稱 -> 物理單位
var byName = func() map[string]PhysicalUnit {
	m := make(map[string]PhysicalUnit, len(physicalTable))
	for p, def := range physicalTable {
		m[def.name] = p
	}
	return m
}()

// countableUnits 計數或容器單位，永遠不可換算
var countableUnits = map[string]bool{
	"piece":     true,
	"each":      true,
	"count":     true,
	"can":       true,
	"bag":       true,
	"box":       true,
	"bunch":     true,
	"bottle":    true,
	"clove":     true,
	"container": true,
	"dash":      true,
	"dozen":     true,
	"drop":      true,
	"handful":   true,
	"head":      true,
	"jar":       true,
	"loaf":      true,
	"pack":      true,
	"package":   true,
	"pinch":     true,
	"slice":     true,
	"sprig":     true,
	"stalk":     true,
	"stick":     true,
	"sheet":     true,
	"batch":     true,
}

// aliases 縮寫與複數形式
var aliases = map[string]string{
	// volume
	"tsp":          "teaspoon",
	"tsps":         "teaspoon",
	"tbsp":         "tablespoon",
	"tbsps":        "tablespoon",
	"tbs":          "tablespoon",
	"fl oz":        "fluid ounce",
	"fl-oz":        "fluid ounce",
	"floz":         "fluid ounce",
	"fluid ounces": "fluid ounce",
	"cups":         "cup",
	"pt":           "pint",
	"pnt":          "pint",
	"qt":           "quart",
	"gal":          "gallon",
	"ml":           "milliliter",
	"millilitre":   "milliliter",
	"l":            "liter",
	"litre":        "liter",
	"litres":       "liter",

	// weight
	"mg":     "milligram",
	"g":      "gram",
	"gramme": "gram",
	"kg":     "kilogram",
	"oz":     "ounce",
	"lb":     "pound",
	"lbs":    "pound",

	// countable
	"pc":      "piece",
	"pcs":     "piece",
	"ea":      "each",
	"ct":      "count",
	"pk":      "pack",
	"pkg":     "package",
	"boxes":   "box",
	"bunches": "bunch",
	"dashes":  "dash",
	"pinches": "pinch",
	"loaves":  "loaf",
}

// Normalize 轉小寫、去空白，並把縮寫與複數折疊為標準名稱。
// 未知單位原樣（小寫）回傳。
func Normalize(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if canonical, ok := aliases[n]; ok {
		return canonical
	}
	if isKnown(n) {
		return n
	}
	if trimmed := strings.TrimSuffix(n, "s"); trimmed != n && isKnown(trimmed) {
		return trimmed
	}
	return n
}

func isKnown(n string) bool {
	if _, ok := byName[n]; ok {
		return true
	}
	return countableUnits[n]
}

// Classification 單位分類結果
type Classification struct {
	Name     string       `json:"name"`
	Kind     Kind         `json:"kind"`
	Physical PhysicalUnit `json:"-"`
}

// Convertible 是否可參與物理換算
func (c Classification) Convertible() bool {
	return c.Physical != PhysicalNone
}

// Classify 分類單位名稱
func Classify(name string) Classification {
	n := Normalize(name)
	if p, ok := byName[n]; ok {
		return Classification{Name: n, Kind: p.Kind(), Physical: p}
	}
	if countableUnits[n] {
		return Classification{Name: n, Kind: KindCountable}
	}
	return Classification{Name: n, Kind: KindUnknown}
}

// ToPhysicalUnit 將單位名稱對應到物理單位；計數、容器或未知單位回傳 false
func ToPhysicalUnit(name string) (PhysicalUnit, bool) {
	c := Classify(name)
	return c.Physical, c.Convertible()
}

// UnitInfo 已知單位清單項目
type UnitInfo struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// Units 回傳所有已知單位，依類別再依名稱排序
func Units() []UnitInfo {
	list := make([]UnitInfo, 0, len(physicalTable)+len(countableUnits))
	for p, def := range physicalTable {
		list = append(list, UnitInfo{Name: def.name, Kind: def.kind, ID: p.String()})
	}
	for n := range countableUnits {
		list = append(list, UnitInfo{Name: n, Kind: KindCountable})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Kind != list[j].Kind {
			return list[i].Kind < list[j].Kind
		}
		return list[i].Name < list[j].Name
	})
	return list
}
