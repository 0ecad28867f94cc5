package shopping

import (
	"context"
	"errors"
	"testing"

	"weekly-eats/internal/core/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = map[string]FoodItemMeta{
	"egg":   {SingularName: "egg", PluralName: "eggs"},
	"milk":  {SingularName: "milk", PluralName: "milk"},
	"flour": {SingularName: "flour", PluralName: "flour"},
	"leek":  {PluralName: "leeks"},
}

func TestMergeWithShoppingList_AddsNewItems(t *testing.T) {
	result := MergeWithShoppingList(nil, []ExtractedItem{
		{FoodItemID: "egg", Quantity: 1, Unit: "piece"},
		{FoodItemID: "unknown", Quantity: 2, Unit: "bag"},
	}, testMeta)

	assert.Equal(t, []ShoppingListItem{
		{FoodItemID: "egg", Name: "egg", Quantity: 1, Unit: "piece"},
		{FoodItemID: "unknown", Name: "unknown", Quantity: 2, Unit: "bag"},
	}, result.MergedItems)
	assert.Empty(t, result.Conflicts)
}

func TestMergeWithShoppingList_SameUnitSumsInPlace(t *testing.T) {
	existing := []ShoppingListItem{
		{FoodItemID: "egg", Name: "egg", Quantity: 1, Unit: "piece", Checked: true},
	}

	result := MergeWithShoppingList(existing, []ExtractedItem{
		{FoodItemID: "egg", Quantity: 5, Unit: "piece"},
	}, testMeta)

	require.Len(t, result.MergedItems, 1)
	assert.Equal(t, ShoppingListItem{FoodItemID: "egg", Name: "eggs", Quantity: 6, Unit: "piece", Checked: true}, result.MergedItems[0])
	assert.Equal(t, float64(1), existing[0].Quantity)
}

func TestMergeWithShoppingList_SameFamilyAutoConverted(t *testing.T) {
	existing := []ShoppingListItem{
		{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "pint", Checked: true},
	}

	result := MergeWithShoppingList(existing, []ExtractedItem{
		{FoodItemID: "milk", Quantity: 2, Unit: "cup"},
	}, testMeta)

	assert.Equal(t, existing, result.MergedItems)
	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, "milk", c.FoodItemName)
	assert.Equal(t, float64(1), c.ExistingQuantity)
	assert.Equal(t, "pint", c.ExistingUnit)
	assert.Equal(t, float64(2), c.NewQuantity)
	assert.Equal(t, "cup", c.NewUnit)
	assert.True(t, c.IsAutoConverted)
	require.NotNil(t, c.SuggestedQuantity)
	assert.InDelta(t, 1, *c.SuggestedQuantity, 0.01)
	assert.Equal(t, "quart", c.SuggestedUnit)
}

func TestMergeWithShoppingList_CrossFamilyManual(t *testing.T) {
	existing := []ShoppingListItem{
		{FoodItemID: "flour", Name: "flour", Quantity: 2, Unit: "cup"},
	}

	result := MergeWithShoppingList(existing, []ExtractedItem{
		{FoodItemID: "flour", Quantity: 1, Unit: "pound"},
	}, testMeta)

	assert.Equal(t, existing, result.MergedItems)
	require.Len(t, result.Conflicts, 1)
	assert.False(t, result.Conflicts[0].IsAutoConverted)
	assert.Nil(t, result.Conflicts[0].SuggestedQuantity)
	assert.Len(t, result.Conflicts[0].UnitBreakdown, 2)
}

func TestMergeWithShoppingList_OneConflictPerFoodItem(t *testing.T) {
	existing := []ShoppingListItem{
		{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "cup"},
	}

	result := MergeWithShoppingList(existing, []ExtractedItem{
		{FoodItemID: "milk", Quantity: 1, Unit: "pint"},
		{FoodItemID: "milk", Quantity: 1, Unit: "pint"},
	}, testMeta)

	require.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, float64(1), c.ExistingQuantity)
	assert.Equal(t, float64(2), c.NewQuantity)
	assert.Equal(t, "pint", c.NewUnit)
	assert.Equal(t, []UnitQuantity{{Quantity: 1, Unit: "cup"}, {Quantity: 2, Unit: "pint"}}, c.UnitBreakdown)
	require.NotNil(t, c.SuggestedQuantity)
	// 1 cup + 2 pint = 5 cup = 1.25 quart
	assert.InDelta(t, 1.25, *c.SuggestedQuantity, 0.001)
	assert.Equal(t, "quart", c.SuggestedUnit)

	out := ApplyResolution(result.MergedItems, "milk", Resolution{Quantity: *c.SuggestedQuantity, Unit: c.SuggestedUnit}, testMeta)
	total, ok := units.TryConvert(out[0].Quantity, out[0].Unit, "pint")
	require.True(t, ok)
	assert.InDelta(t, 2.5, total, 0.001)
}

func TestMergeWithShoppingList_ConflictSeesLaterSameUnitItems(t *testing.T) {
	existing := []ShoppingListItem{
		{FoodItemID: "flour", Name: "flour", Quantity: 1, Unit: "cup"},
		{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "cup"},
	}

	result := MergeWithShoppingList(existing, []ExtractedItem{
		{FoodItemID: "flour", Quantity: 1, Unit: "pound"},
		{FoodItemID: "milk", Quantity: 1, Unit: "pint"},
		{FoodItemID: "flour", Quantity: 1, Unit: "cup"},
		{FoodItemID: "milk", Quantity: 1, Unit: "cup"},
	}, testMeta)

	assert.Equal(t, float64(2), result.MergedItems[0].Quantity)
	assert.Equal(t, float64(2), result.MergedItems[1].Quantity)

	require.Len(t, result.Conflicts, 2)
	flour := result.Conflicts[0]
	assert.Equal(t, "flour", flour.FoodItemID)
	assert.Equal(t, float64(2), flour.ExistingQuantity)
	assert.Equal(t, []UnitQuantity{{Quantity: 2, Unit: "cup"}, {Quantity: 1, Unit: "pound"}}, flour.UnitBreakdown)
	assert.False(t, flour.IsAutoConverted)

	milk := result.Conflicts[1]
	assert.Equal(t, "milk", milk.FoodItemID)
	assert.Equal(t, float64(2), milk.ExistingQuantity)
	require.NotNil(t, milk.SuggestedQuantity)
	// 2 cup + 1 pint = 1 quart
	assert.InDelta(t, 1, *milk.SuggestedQuantity, 0.001)
	assert.Equal(t, "quart", milk.SuggestedUnit)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "egg", DisplayName(testMeta, "egg", 1))
	assert.Equal(t, "eggs", DisplayName(testMeta, "egg", 2))
	assert.Equal(t, "eggs", DisplayName(testMeta, "egg", 0.5))
	assert.Equal(t, "leeks", DisplayName(testMeta, "leek", 1))
	assert.Equal(t, "tofu", DisplayName(testMeta, "tofu", 1))
	assert.Equal(t, "tofu", DisplayName(nil, "tofu", 3))
}

func TestApplyResolution(t *testing.T) {
	items := []ShoppingListItem{
		{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "pint", Checked: true},
		{FoodItemID: "egg", Name: "egg", Quantity: 1, Unit: "piece", Checked: true},
	}

	out := ApplyResolution(items, "milk", Resolution{FoodItemID: "milk", Quantity: 1, Unit: "quart"}, testMeta)

	assert.Equal(t, ShoppingListItem{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "quart", Checked: false}, out[0])
	assert.True(t, out[1].Checked)
	assert.True(t, items[0].Checked)

	out = ApplyResolution(out, "oil", Resolution{Quantity: 2, Unit: "tablespoon"}, testMeta)
	require.Len(t, out, 3)
	assert.Equal(t, "oil", out[2].Name)
}

func TestApplyResolutions_KeepsNameWithoutMeta(t *testing.T) {
	items := []ShoppingListItem{{FoodItemID: "x1", Name: "Olive oil", Quantity: 1, Unit: "bottle", Checked: true}}

	out := ApplyResolutions(items, []Resolution{{FoodItemID: "x1", Quantity: 500, Unit: "milliliter"}}, nil)

	assert.Equal(t, []ShoppingListItem{{FoodItemID: "x1", Name: "Olive oil", Quantity: 500, Unit: "milliliter"}}, out)
	assert.NotNil(t, ApplyResolutions(nil, nil, nil))
}

func TestResolvePreMerge(t *testing.T) {
	combined := CombineExtractedItems([]ExtractedItem{
		{FoodItemID: "milk", Quantity: 1, Unit: "pint"},
		{FoodItemID: "milk", Quantity: 1, Unit: "cup"},
		{FoodItemID: "egg", Quantity: 2, Unit: "piece"},
	})

	_, err := combined.Resolve(nil)
	var unresolved *UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"milk"}, unresolved.FoodItemIDs)

	suggestion := combined.Conflicts[0]
	items, err := combined.Resolve([]Resolution{
		{FoodItemID: "milk", Quantity: *suggestion.SuggestedQuantity, Unit: suggestion.SuggestedUnit},
	})
	require.NoError(t, err)
	assert.Equal(t, []ExtractedItem{
		{FoodItemID: "milk", Quantity: 1.5, Unit: "pint"},
		{FoodItemID: "egg", Quantity: 2, Unit: "piece"},
	}, items)
}

func TestServiceGenerateIncludesExistingList(t *testing.T) {
	f := newFakeFetcher(recipe("omelette", food("egg", 3, "piece"), food("milk", 0.5, "cup")))
	svc := NewService(NewExtractor(f, 0))

	result := svc.Generate(context.Background(), plan(
		MealPlanItem{Type: ItemTypeRecipe, ID: "omelette", Quantity: qty(2)},
	), []ShoppingListItem{
		{FoodItemID: "egg", Name: "eggs", Quantity: 6, Unit: "piece"},
	})

	require.Len(t, result.CombinedItems, 2)
	assert.Equal(t, ExtractedItem{FoodItemID: "egg", Quantity: 12, Unit: "piece"}, result.CombinedItems[0].ExtractedItem)
	assert.Equal(t, ExtractedItem{FoodItemID: "milk", Quantity: 1, Unit: "cup"}, result.CombinedItems[1].ExtractedItem)
	assert.Empty(t, result.Conflicts)
}
