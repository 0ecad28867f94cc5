package queue

import (
	"context"
	"testing"
	"time"

	"weekly-eats/internal/core/shopping"
	"weekly-eats/internal/infrastructure/config"
	"weekly-eats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, plans []shopping.MealPlan) []shopping.ExtractedItem {
	items := []shopping.ExtractedItem{}
	for _, p := range plans {
		for _, it := range p.Items {
			items = append(items, shopping.ExtractedItem{FoodItemID: it.ID, Unit: it.Unit})
		}
	}
	return items
}

func TestManagerProcessesJobs(t *testing.T) {
	m := NewManager(config.ExtractionConfig{Workers: 2, MaxQueueSize: 4})
	m.Start(echoHandler)
	defer m.Close()

	ch, err := m.Enqueue(context.Background(), []shopping.MealPlan{
		{Items: []shopping.MealPlanItem{{Type: shopping.ItemTypeFoodItem, ID: "egg", Unit: "piece"}}},
	})
	require.NoError(t, err)

	select {
	case res := <-ch:
		require.NoError(t, res.Error)
		assert.Equal(t, []shopping.ExtractedItem{{FoodItemID: "egg", Unit: "piece"}}, res.Items)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}

	status := m.Status()
	assert.Equal(t, 1, status.ProcessedCount)
	assert.Equal(t, 2, status.Workers)
	assert.True(t, status.Running)
}

func TestManagerQueueFull(t *testing.T) {
	m := NewManager(config.ExtractionConfig{Workers: 1, MaxQueueSize: 1})
	defer m.Close()

	_, err := m.Enqueue(context.Background(), nil)
	require.NoError(t, err)

	_, err = m.Enqueue(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrQueueFull)
	assert.Equal(t, 1, m.Status().QueueLength)
}

func TestManagerCanceledRequest(t *testing.T) {
	m := NewManager(config.ExtractionConfig{Workers: 1, MaxQueueSize: 2})
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := m.Enqueue(ctx, nil)
	require.NoError(t, err)
	cancel()

	m.Start(echoHandler)
	defer m.Close()

	res := <-ch
	assert.ErrorIs(t, res.Error, context.Canceled)
}

func TestManagerClosed(t *testing.T) {
	m := NewManager(config.ExtractionConfig{Workers: 1, MaxQueueSize: 1})
	m.Start(echoHandler)
	m.Close()
	m.Close()

	_, err := m.Enqueue(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, m.Status().Running)
}
