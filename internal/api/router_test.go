package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weekly-eats/internal/core/queue"
	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Version: "test"},
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Extraction: config.ExtractionConfig{MaxDepth: 10, Workers: 1, MaxQueueSize: 4},
	}
}

func testFetcher() shopping.RecipeFetcher {
	five := 5.0
	return shopping.RecipeFetcherFunc(func(_ context.Context, id string) (*shopping.Recipe, error) {
		return &shopping.Recipe{ID: id, Ingredients: []shopping.RecipeIngredientList{{
			Ingredients: []shopping.RecipeIngredient{{Type: shopping.ItemTypeFoodItem, ID: "rice", Quantity: &five, Unit: "ounce"}},
		}}}, nil
	})
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := shopping.NewService(shopping.NewExtractor(testFetcher(), cfg.Extraction.MaxDepth))
	q := queue.NewManager(cfg.Extraction)
	q.Start(svc.Extract)
	t.Cleanup(q.Close)

	router, err := SetupRouter(cfg, Dependencies{Service: svc, Queue: q})
	require.NoError(t, err)
	return router
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := doJSON(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "queue")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/live", nil).Code)

	w = doJSON(router, http.MethodGet, "/api/v1/recipes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errResp common.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, common.ErrCodeNotFound, errResp.Code)
}

func TestUnitsEndpoints(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := doJSON(router, http.MethodGet, "/api/v1/units", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"volume"`)

	w = doJSON(router, http.MethodGet, "/api/v1/units/convert?quantity=2&from=cup&to=tablespoon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var converted struct {
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}
	decode(t, w, &converted)
	assert.InDelta(t, 32, converted.Quantity, 1e-9)
	assert.Equal(t, "tablespoon", converted.Unit)

	w = doJSON(router, http.MethodGet, "/api/v1/units/convert?quantity=2&from=cup&to=pound", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp common.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, common.ErrCodeUnprocessable, errResp.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/units/convert?quantity=abc&from=cup&to=pint", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/units/best?quantity=2000&unit=gram", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &converted)
	assert.InDelta(t, 4.41, converted.Quantity, 0.001)
	assert.Equal(t, "pound", converted.Unit)
}

func TestShoppingExtractThroughQueue(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := doJSON(router, http.MethodPost, "/api/v1/shopping/extract", map[string]interface{}{
		"meal_plans": []map[string]interface{}{{
			"items": []map[string]interface{}{
				{"type": "recipe", "id": "r1", "quantity": 2},
				{"type": "foodItem", "id": "egg", "quantity": 3, "unit": "piece"},
			},
		}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Items []shopping.ExtractedItem `json:"items"`
	}
	decode(t, w, &resp)
	assert.Equal(t, []shopping.ExtractedItem{
		{FoodItemID: "rice", Quantity: 10, Unit: "ounce"},
		{FoodItemID: "egg", Quantity: 3, Unit: "piece"},
	}, resp.Items)
}

func TestShoppingGenerateWithExistingList(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := doJSON(router, http.MethodPost, "/api/v1/shopping/generate", map[string]interface{}{
		"meal_plans": []map[string]interface{}{{
			"items": []map[string]interface{}{{"type": "recipe", "id": "r1"}},
		}},
		"existing_items": []map[string]interface{}{
			{"food_item_id": "rice", "name": "rice", "quantity": 1, "unit": "pound"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result shopping.CombineResult
	decode(t, w, &result)
	require.Len(t, result.CombinedItems, 1)
	assert.Equal(t, shopping.StatusPending, result.CombinedItems[0].Status)
	require.Len(t, result.Conflicts, 1)
	assert.True(t, result.Conflicts[0].IsAutoConverted)
	require.NotNil(t, result.Conflicts[0].SuggestedQuantity)
	// 1 lb + 5 oz = 1.3125 lb
	assert.InDelta(t, 1.31, *result.Conflicts[0].SuggestedQuantity, 0.001)
	assert.Equal(t, "pound", result.Conflicts[0].SuggestedUnit)
}

func TestShoppingCombineMergeResolve(t *testing.T) {
	router := newTestRouter(t, testConfig())

	w := doJSON(router, http.MethodPost, "/api/v1/shopping/combine", map[string]interface{}{
		"items": []map[string]interface{}{
			{"food_item_id": "f1", "quantity": 2, "unit": "cup"},
			{"food_item_id": "f1", "quantity": 1, "unit": "pound"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var combined shopping.CombineResult
	decode(t, w, &combined)
	require.Len(t, combined.Conflicts, 1)
	assert.False(t, combined.Conflicts[0].IsAutoConverted)
	assert.NotContains(t, w.Body.String(), "suggested_quantity")

	w = doJSON(router, http.MethodPost, "/api/v1/shopping/merge", map[string]interface{}{
		"existing_items": []map[string]interface{}{
			{"food_item_id": "egg", "name": "egg", "quantity": 1, "unit": "piece", "checked": true},
		},
		"extracted_items": []map[string]interface{}{
			{"food_item_id": "egg", "quantity": 2, "unit": "piece"},
			{"food_item_id": "milk", "quantity": 1, "unit": "cup"},
		},
		"food_items": map[string]interface{}{
			"egg":  map[string]string{"singular_name": "egg", "plural_name": "eggs"},
			"milk": map[string]string{"singular_name": "milk", "plural_name": "milk"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var merged shopping.MergeResult
	decode(t, w, &merged)
	assert.Equal(t, []shopping.ShoppingListItem{
		{FoodItemID: "egg", Name: "eggs", Quantity: 3, Unit: "piece", Checked: true},
		{FoodItemID: "milk", Name: "milk", Quantity: 1, Unit: "cup"},
	}, merged.MergedItems)
	assert.Empty(t, merged.Conflicts)

	w = doJSON(router, http.MethodPost, "/api/v1/shopping/resolve", map[string]interface{}{
		"items": merged.MergedItems,
		"resolutions": []map[string]interface{}{
			{"food_item_id": "egg", "quantity": 1, "unit": "dozen"},
		},
		"food_items": map[string]interface{}{
			"egg": map[string]string{"singular_name": "egg", "plural_name": "eggs"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resolved struct {
		Items []shopping.ShoppingListItem `json:"items"`
	}
	decode(t, w, &resolved)
	assert.Equal(t, shopping.ShoppingListItem{FoodItemID: "egg", Name: "egg", Quantity: 1, Unit: "dozen"}, resolved.Items[0])
}

func TestShoppingValidation(t *testing.T) {
	router := newTestRouter(t, testConfig())

	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{"malformed json", "/api/v1/shopping/combine", `{"items": [`},
		{"missing items", "/api/v1/shopping/combine", map[string]interface{}{}},
		{"missing food item id", "/api/v1/shopping/combine", map[string]interface{}{
			"items": []map[string]interface{}{{"quantity": 1, "unit": "cup"}},
		}},
		{"negative quantity", "/api/v1/shopping/combine", map[string]interface{}{
			"items": []map[string]interface{}{{"food_item_id": "f1", "quantity": -1}},
		}},
		{"bad unit name", "/api/v1/shopping/combine", map[string]interface{}{
			"items": []map[string]interface{}{{"food_item_id": "f1", "quantity": 1, "unit": "cup\nx"}},
		}},
		{"unknown meal plan item type", "/api/v1/shopping/extract", map[string]interface{}{
			"meal_plans": []map[string]interface{}{{"items": []map[string]interface{}{{"type": "note"}}}},
		}},
		{"negative recipe multiplier", "/api/v1/shopping/extract", map[string]interface{}{
			"meal_plans": []map[string]interface{}{{"items": []map[string]interface{}{{"type": "recipe", "id": "r1", "quantity": -2}}}},
		}},
		{"zero recipe multiplier", "/api/v1/shopping/generate", map[string]interface{}{
			"meal_plans": []map[string]interface{}{{"items": []map[string]interface{}{{"type": "recipe", "id": "r1", "quantity": 0}}}},
		}},
		{"negative ingredient group quantity", "/api/v1/shopping/extract", map[string]interface{}{
			"meal_plans": []map[string]interface{}{{"items": []map[string]interface{}{{
				"type": "ingredientGroup",
				"ingredients": []map[string]interface{}{{
					"ingredients": []map[string]interface{}{{"type": "foodItem", "id": "egg", "quantity": -1, "unit": "piece"}},
				}},
			}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var errResp common.ErrorResponse
			decode(t, w, &errResp)
			assert.Equal(t, common.ErrCodeInvalidRequest, errResp.Code)
		})
	}
}

func TestDeduplicationAndBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	cfg.Server.MaxBodyBytes = 256
	router := newTestRouter(t, cfg)

	body := map[string]interface{}{
		"items": []map[string]interface{}{{"food_item_id": "f1", "quantity": 1, "unit": "cup"}},
	}
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/v1/shopping/combine", body).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/v1/shopping/combine", body).Code)

	extract := map[string]interface{}{
		"meal_plans": []map[string]interface{}{{
			"items": []map[string]interface{}{{"type": "foodItem", "id": "egg", "quantity": 3, "unit": "piece"}},
		}},
	}
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/v1/shopping/extract", extract).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(router, http.MethodPost, "/api/v1/shopping/extract", extract).Code)

	large := `{"items": [{"food_item_id": "` + strings.Repeat("x", 512) + `", "quantity": 1}]}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, doJSON(router, http.MethodPost, "/api/v1/shopping/combine", large).Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	router := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/live", nil).Code)
	w := doJSON(router, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
