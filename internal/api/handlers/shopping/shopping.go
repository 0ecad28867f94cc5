package shopping

import (
	"errors"
	"net/http"

	"weekly-eats/internal/core/queue"
	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExtractRequest 展開餐食計畫
type ExtractRequest struct {
	MealPlans []shopping.MealPlan `json:"meal_plans" binding:"required,dive"`
}

// ExtractResponse 展開結果
type ExtractResponse struct {
	Items []shopping.ExtractedItem `json:"items"`
}

// GenerateRequest 展開並與既有清單合併
type GenerateRequest struct {
	MealPlans     []shopping.MealPlan         `json:"meal_plans" binding:"required,dive"`
	ExistingItems []shopping.ShoppingListItem `json:"existing_items" binding:"omitempty,dive"`
}

// CombineRequest 合併需求
type CombineRequest struct {
	Items []shopping.ExtractedItem `json:"items" binding:"required,dive"`
}

// MergeRequest 併入既有清單
type MergeRequest struct {
	ExistingItems  []shopping.ShoppingListItem      `json:"existing_items" binding:"omitempty,dive"`
	ExtractedItems []shopping.ExtractedItem         `json:"extracted_items" binding:"required,dive"`
	FoodItems      map[string]shopping.FoodItemMeta `json:"food_items"`
}

// ResolveRequest 套用衝突解決方案
type ResolveRequest struct {
	Items       []shopping.ShoppingListItem      `json:"items" binding:"omitempty,dive"`
	Resolutions []shopping.Resolution            `json:"resolutions" binding:"required,dive"`
	FoodItems   map[string]shopping.FoodItemMeta `json:"food_items"`
}

// ResolveResponse 套用後的清單
type ResolveResponse struct {
	Items []shopping.ShoppingListItem `json:"items"`
}

// Handler 購物清單處理器
type Handler struct {
	service *shopping.Service
	queue   *queue.Manager
}

// NewHandler 創建購物清單處理器；q 為 nil 時展開直接在請求中執行
func NewHandler(service *shopping.Service, q *queue.Manager) *Handler {
	return &Handler{
		service: service,
		queue:   q,
	}
}

// HandleExtract POST /api/v1/shopping/extract
func (h *Handler) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if !bind(c, &req) {
		return
	}

	items, err := h.extract(c, req.MealPlans)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{Items: items})
}

func (h *Handler) extract(c *gin.Context, plans []shopping.MealPlan) ([]shopping.ExtractedItem, error) {
	ctx := c.Request.Context()
	if h.queue == nil {
		return h.service.Extract(ctx, plans), nil
	}

	ch, err := h.queue.Enqueue(ctx, plans)
	if err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return nil, common.ErrServiceUnavailable.Wrap(err)
		}
		return nil, timeoutOr(err)
	}

	select {
	case res := <-ch:
		if res.Error != nil {
			return nil, timeoutOr(res.Error)
		}
		return res.Items, nil
	case <-ctx.Done():
		return nil, common.ErrGatewayTimeout.Wrap(ctx.Err())
	}
}

// HandleGenerate POST /api/v1/shopping/generate
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if !bind(c, &req) {
		return
	}

	result := h.service.Generate(c.Request.Context(), req.MealPlans, req.ExistingItems)

	common.LogInfo("Shopping list generated",
		zap.String("request_id", common.RequestID(c)),
		zap.Int("combined_items", len(result.CombinedItems)),
		zap.Int("conflicts", len(result.Conflicts)),
	)

	c.JSON(http.StatusOK, result)
}

// HandleCombine POST /api/v1/shopping/combine
func (h *Handler) HandleCombine(c *gin.Context) {
	var req CombineRequest
	if !bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.service.Combine(req.Items))
}

// HandleMerge POST /api/v1/shopping/merge
func (h *Handler) HandleMerge(c *gin.Context) {
	var req MergeRequest
	if !bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.service.Merge(req.ExistingItems, req.ExtractedItems, req.FoodItems))
}

// HandleResolve POST /api/v1/shopping/resolve
func (h *Handler) HandleResolve(c *gin.Context) {
	var req ResolveRequest
	if !bind(c, &req) {
		return
	}

	items := h.service.Resolve(req.Items, req.Resolutions, req.FoodItems)
	c.JSON(http.StatusOK, ResolveResponse{Items: items})
}

// bind 解析並驗證 JSON，失敗時已寫出錯誤響應
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		common.LogWarn("Invalid request body",
			zap.String("request_id", common.RequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, common.ErrTooLarge.Wrap(err))
			return false
		}
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}

func timeoutOr(err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return common.ErrGatewayTimeout.Wrap(err)
}
