package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weekly-eats/internal/api"
	"weekly-eats/internal/core/cache"
	"weekly-eats/internal/core/queue"
	"weekly-eats/internal/core/recipestore"
	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 LoadConfig 處理）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// run 返回後所有 defer 的資源都已釋放，才決定結束碼
	err = run(cfg)
	if err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
	}
	common.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	common.LogInfo("Configuration loaded",
		zap.String("recipe_store_url", cfg.RecipeStore.BaseURL),
		zap.String("recipe_store_auth", config.MaskSecret(cfg.RecipeStore.AuthToken)),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("max_depth", cfg.Extraction.MaxDepth),
	)

	// 初始化快取
	store, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	// 食譜來源與展開服務
	fetcher := recipestore.NewCachedFetcher(recipestore.NewHTTPClient(cfg.RecipeStore), store)
	service := shopping.NewService(shopping.NewExtractor(fetcher, cfg.Extraction.MaxDepth))

	queueManager := queue.NewManager(cfg.Extraction)
	queueManager.Start(service.Extract)
	defer queueManager.Close()

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Service: service,
		Queue:   queueManager,
		Cache:   store,
	})
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號或伺服器啟動失敗
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
	return nil
}
