package usecase

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/alert"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type alertEvaluator struct {
	repo     alert.Repository
	notifier alert.Notifier
	logger   logger.ZapLogger
}

func NewAlertEvaluator(repo alert.Repository, notifier alert.Notifier, log logger.ZapLogger) alert.Evaluator {
	return &alertEvaluator{
		repo:     repo,
		notifier: notifier,
		logger:   log,
	}
}

// Evaluate walks every active alert bound to the level's key and stamps
// trigger/resolve transitions. Evaluation runs outside the balance-mutation
// critical section: a missed notification is acceptable, a wrong balance is not.
func (e *alertEvaluator) Evaluate(ctx context.Context, level *model.StockLevel) error {
	key := model.StockKey{
		TenantID:    level.TenantID,
		ProductID:   level.ProductID,
		VariantID:   level.VariantID,
		WarehouseID: level.WarehouseID,
	}

	alerts, err := e.repo.ListForKey(ctx, key)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range alerts {
		a := &alerts[i]
		if !a.IsActive {
			continue
		}

		should := a.ShouldTrigger(level.Quantity)
		switch {
		case should && !a.IsTriggered():
			if err := e.repo.MarkTriggered(ctx, a.ID, now); err != nil {
				return err
			}
			e.notify(ctx, a, level, alert.StateTriggered, now)
		case !should && a.IsTriggered():
			if err := e.repo.MarkResolved(ctx, a.ID, now); err != nil {
				return err
			}
			e.notify(ctx, a, level, alert.StateResolved, now)
		}
	}
	return nil
}

func (e *alertEvaluator) notify(ctx context.Context, a *model.StockAlert, level *model.StockLevel, state string, at time.Time) {
	if e.notifier == nil {
		return
	}

	event := &alert.Event{
		EventID:     uuid.New().String(),
		TenantID:    a.TenantID,
		AlertID:     a.ID,
		AlertType:   a.AlertType,
		ProductID:   a.ProductID,
		VariantID:   a.VariantID,
		WarehouseID: a.WarehouseID,
		Quantity:    level.Quantity,
		Threshold:   a.ThresholdQuantity,
		State:       state,
		OccurredAt:  at,
	}

	if err := e.notifier.Notify(ctx, event); err != nil {
		// Notification delivery is best effort; the transition stamp is the
		// source of truth.
		e.logger.Error("failed to publish stock alert event",
			zap.String("alert_id", a.ID),
			zap.String("state", state),
			zap.Error(err),
		)
	}
}
