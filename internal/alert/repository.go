package alert

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, alert *model.StockAlert) error
	ListForKey(ctx context.Context, key model.StockKey) ([]model.StockAlert, error)
	MarkTriggered(ctx context.Context, id string, at time.Time) error
	MarkResolved(ctx context.Context, id string, at time.Time) error
}
