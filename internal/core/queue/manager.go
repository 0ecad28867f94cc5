package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Handler 實際執行展開的函式
type Handler func(ctx context.Context, mealPlans []shopping.MealPlan) []shopping.ExtractedItem

// Request 隊列請求
type Request struct {
	Context   context.Context
	MealPlans []shopping.MealPlan
	Result    chan Result
}

// Result 處理結果
type Result struct {
	Items []shopping.ExtractedItem
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int  `json:"queue_length"`
	ProcessedCount int  `json:"processed_count"`
	MaxQueueSize   int  `json:"max_queue_size"`
	Workers        int  `json:"workers"`
	Running        bool `json:"running"`
}

// Manager 展開工作的隊列管理器，固定數量的 worker 依序處理
type Manager struct {
	config    config.ExtractionConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	running   int32
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.ExtractionConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 1
	}
	return &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxQueueSize),
		done:   make(chan struct{}),
	}
}

// Start 啟動 worker，只有第一次呼叫有效
func (m *Manager) Start(handler Handler) {
	m.startOnce.Do(func() {
		atomic.StoreInt32(&m.running, 1)
		for i := 0; i < m.config.Workers; i++ {
			m.wg.Add(1)
			go m.worker(i, handler)
		}
		common.LogInfo("Extraction queue started",
			zap.Int("workers", m.config.Workers),
			zap.Int("max_queue_size", m.config.MaxQueueSize),
		)
	})
}

func (m *Manager) worker(id int, handler Handler) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			if err := req.Context.Err(); err != nil {
				req.Result <- Result{Error: err}
				continue
			}
			items := handler(req.Context, req.MealPlans)
			atomic.AddInt64(&m.processed, 1)
			req.Result <- Result{Items: items}

			common.LogDebug("Extraction job processed",
				zap.Int("worker", id),
				zap.Int("items", len(items)),
			)
		}
	}
}

// Enqueue 將請求加入隊列，已滿時立即回傳 common.ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, mealPlans []shopping.MealPlan) (<-chan Result, error) {
	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	req := &Request{
		Context:   ctx,
		MealPlans: mealPlans,
		Result:    make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxQueueSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		common.LogWarn("Extraction queue full", zap.Int("max_queue_size", m.config.MaxQueueSize))
		return nil, common.ErrQueueFull
	}
}

// Status 獲取隊列狀態
func (m *Manager) Status() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxQueueSize,
		Workers:        m.config.Workers,
		Running:        atomic.LoadInt32(&m.running) == 1,
	}
}

// Close 停止 worker 並等待進行中的工作結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		atomic.StoreInt32(&m.running, 0)
		common.LogInfo("Extraction queue closed",
			zap.Int64("processed", atomic.LoadInt64(&m.processed)),
		)
	})
}
