package api

import (
	"fmt"
	"time"

	"weekly-eats/internal/api/handlers/health"
	shoppingHandler "weekly-eats/internal/api/handlers/shopping"
	unitsHandler "weekly-eats/internal/api/handlers/units"
	"weekly-eats/internal/api/middleware"
	"weekly-eats/internal/core/cache"
	"weekly-eats/internal/core/queue"
	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務；Queue 與 Cache 可為 nil
type Dependencies struct {
	Service *shopping.Service
	Queue   *queue.Manager
	Cache   cache.Store
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("shopping service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, deps.Queue, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	api := router.Group("/api/v1")
	{
		unitGroup := api.Group("/units")
		{
			unitGroup.GET("", unitsHandler.ListUnits)
			unitGroup.GET("/convert", unitsHandler.Convert)
			unitGroup.GET("/best", unitsHandler.BestUnit)
		}

		h := shoppingHandler.NewHandler(deps.Service, deps.Queue)
		// 去重只套用在佔用佇列的展開請求，其餘端點是可重試的純計算
		extractChain := []gin.HandlerFunc{h.HandleExtract}
		if cfg.DedupWindow > 0 {
			extractChain = append([]gin.HandlerFunc{middleware.NewDeduplicator(cfg.DedupWindow).Middleware()}, extractChain...)
		}

		shoppingGroup := api.Group("/shopping")
		{
			shoppingGroup.POST("/extract", extractChain...)
			shoppingGroup.POST("/generate", h.HandleGenerate)
			shoppingGroup.POST("/combine", h.HandleCombine)
			shoppingGroup.POST("/merge", h.HandleMerge)
			shoppingGroup.POST("/resolve", h.HandleResolve)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		common.RespondError(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("queue_enabled", deps.Queue != nil),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
