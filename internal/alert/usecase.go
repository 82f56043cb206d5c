package alert

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/model"
)

// Evaluator recomputes alert states after a stock level changed. It only
// stamps trigger/resolve transitions and hands events to the notifier; it
// never sends anything itself.
type Evaluator interface {
	Evaluate(ctx context.Context, level *model.StockLevel) error
}

// Event state values.
const (
	StateTriggered = "triggered"
	StateResolved  = "resolved"
)

type Event struct {
	EventID     string    `json:"event_id"`
	TenantID    string    `json:"tenant_id"`
	AlertID     string    `json:"alert_id"`
	AlertType   string    `json:"alert_type"`
	ProductID   string    `json:"product_id"`
	VariantID   *string   `json:"variant_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    float64   `json:"quantity"`
	Threshold   float64   `json:"threshold"`
	State       string    `json:"state"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier enqueues alert transitions for the notification service.
type Notifier interface {
	Notify(ctx context.Context, event *Event) error
}
