// Package recipestore 從食譜文件庫取得食譜，並可選擇性地透過快取。
package recipestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrRecipeNotFound 文件庫中沒有該食譜
var ErrRecipeNotFound = errors.New("recipe not found")

// StatusError 文件庫回傳非預期的狀態碼
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recipe store returned status %d: %s", e.StatusCode, e.Body)
}

// recipeDocument 文件庫中的食譜格式
type recipeDocument struct {
	ObjectID    string                          `json:"_id"`
	ID          string                          `json:"id"`
	Title       string                          `json:"title"`
	Ingredients []shopping.RecipeIngredientList `json:"ingredients"`
}

func (d *recipeDocument) toRecipe(requestedID string) *shopping.Recipe {
	id := d.ObjectID
	if id == "" {
		id = d.ID
	}
	if id == "" {
		id = requestedID
	}
	return &shopping.Recipe{
		ID:          id,
		Title:       d.Title,
		Ingredients: d.Ingredients,
	}
}

// HTTPClient 透過 HTTP 讀取食譜文件庫
type HTTPClient struct {
	client *resty.Client
}

// NewHTTPClient 創建文件庫客戶端；5xx 與連線錯誤會依 RetryCount 重試
func NewHTTPClient(cfg config.RecipeStoreConfig) *HTTPClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	common.LogInfo("Recipe store client configured",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("authenticated", cfg.AuthToken != ""),
		zap.Int("retry_count", cfg.RetryCount),
	)

	return &HTTPClient{client: client}
}

// FetchRecipe 取得一份食譜
func (c *HTTPClient) FetchRecipe(ctx context.Context, id string) (*shopping.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrRecipeNotFound
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/api/recipes/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe %s: %w", id, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	case resp.StatusCode() != http.StatusOK:
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var doc recipeDocument
	if err := common.ParseJSONBytes(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe %s: %w", id, err)
	}

	return doc.toRecipe(id), nil
}
