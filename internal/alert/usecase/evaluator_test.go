package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/classmart/inventory-service/internal/alert"
	alertrepo "github.com/classmart/inventory-service/internal/alert/repository"
	alertusecase "github.com/classmart/inventory-service/internal/alert/usecase"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []alert.Event
	err    error
}

func (n *captureNotifier) Notify(_ context.Context, event *alert.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, *event)
	return nil
}

func (n *captureNotifier) captured() []alert.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]alert.Event, len(n.events))
	copy(out, n.events)
	return out
}

func newAlert(alertType string, threshold float64) *model.StockAlert {
	now := time.Now()
	return &model.StockAlert{
		BaseModel:         model.BaseModel{ID: "alert-" + alertType, CreatedAt: now, UpdatedAt: now},
		TenantID:          "tenant-1",
		ProductID:         "prod-1",
		WarehouseID:       "wh-1",
		AlertType:         alertType,
		ThresholdQuantity: threshold,
		IsActive:          true,
	}
}

func level(qty float64) *model.StockLevel {
	return &model.StockLevel{
		ID:          "lvl-1",
		TenantID:    "tenant-1",
		ProductID:   "prod-1",
		WarehouseID: "wh-1",
		Quantity:    qty,
	}
}

func TestLowStockTriggersAndResolves(t *testing.T) {
	ctx := context.Background()
	repo := alertrepo.NewMemRepository()
	notifier := &captureNotifier{}
	evaluator := alertusecase.NewAlertEvaluator(repo, notifier, logger.NewNop())

	a := newAlert(model.AlertLowStock, 5)
	require.NoError(t, repo.Create(ctx, a))

	// Drops to the threshold: triggers once.
	require.NoError(t, evaluator.Evaluate(ctx, level(5)))
	stored, ok := repo.Get(a.ID)
	require.True(t, ok)
	assert.True(t, stored.IsTriggered())

	// Still low: no second notification.
	require.NoError(t, evaluator.Evaluate(ctx, level(3)))
	require.Len(t, notifier.captured(), 1)
	assert.Equal(t, alert.StateTriggered, notifier.captured()[0].State)

	// Restocked above the threshold: resolves.
	time.Sleep(time.Millisecond)
	require.NoError(t, evaluator.Evaluate(ctx, level(12)))
	stored, _ = repo.Get(a.ID)
	assert.False(t, stored.IsTriggered())

	events := notifier.captured()
	require.Len(t, events, 2)
	assert.Equal(t, alert.StateResolved, events[1].State)
	assert.Equal(t, 12.0, events[1].Quantity)
}

func TestOutOfStockTriggersAtZeroNotLow(t *testing.T) {
	ctx := context.Background()
	repo := alertrepo.NewMemRepository()
	notifier := &captureNotifier{}
	evaluator := alertusecase.NewAlertEvaluator(repo, notifier, logger.NewNop())

	a := newAlert(model.AlertOutOfStock, 0)
	require.NoError(t, repo.Create(ctx, a))

	// Low but positive stock is not out of stock.
	require.NoError(t, evaluator.Evaluate(ctx, level(1)))
	stored, _ := repo.Get(a.ID)
	assert.False(t, stored.IsTriggered())

	require.NoError(t, evaluator.Evaluate(ctx, level(0)))
	stored, _ = repo.Get(a.ID)
	assert.True(t, stored.IsTriggered())
}

func TestOverstockTriggersAtThreshold(t *testing.T) {
	ctx := context.Background()
	repo := alertrepo.NewMemRepository()
	notifier := &captureNotifier{}
	evaluator := alertusecase.NewAlertEvaluator(repo, notifier, logger.NewNop())

	a := newAlert(model.AlertOverstock, 100)
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, evaluator.Evaluate(ctx, level(99)))
	stored, _ := repo.Get(a.ID)
	assert.False(t, stored.IsTriggered())

	require.NoError(t, evaluator.Evaluate(ctx, level(100)))
	stored, _ = repo.Get(a.ID)
	assert.True(t, stored.IsTriggered())
}

func TestInactiveAlertIsSkipped(t *testing.T) {
	ctx := context.Background()
	repo := alertrepo.NewMemRepository()
	notifier := &captureNotifier{}
	evaluator := alertusecase.NewAlertEvaluator(repo, notifier, logger.NewNop())

	a := newAlert(model.AlertOutOfStock, 0)
	a.IsActive = false
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, evaluator.Evaluate(ctx, level(0)))
	stored, _ := repo.Get(a.ID)
	assert.False(t, stored.IsTriggered())
	assert.Empty(t, notifier.captured())
}

func TestNotifierFailureDoesNotBlockTransition(t *testing.T) {
	ctx := context.Background()
	repo := alertrepo.NewMemRepository()
	notifier := &captureNotifier{err: errors.New("broker unreachable")}
	evaluator := alertusecase.NewAlertEvaluator(repo, notifier, logger.NewNop())

	a := newAlert(model.AlertOutOfStock, 0)
	require.NoError(t, repo.Create(ctx, a))

	// The transition stamp lands even when the event cannot be delivered.
	require.NoError(t, evaluator.Evaluate(ctx, level(0)))
	stored, _ := repo.Get(a.ID)
	assert.True(t, stored.IsTriggered())
}
