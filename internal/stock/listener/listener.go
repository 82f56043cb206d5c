package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/classmart/inventory-service/internal/fulfillment"
	"github.com/classmart/inventory-service/internal/fulfillment/dto"
	"github.com/classmart/inventory-service/pkg/broker"
	"github.com/classmart/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// Event types consumed from the order stream.
const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCompleted = "OrderCompleted"
	EventOrderCancelled = "OrderCancelled"
)

type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       fulfillment.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc fulfillment.UseCase, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("starting order event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID       string          `json:"id"`
	TenantID string          `json:"tenant_id"`
	Items    []OrderItemLine `json:"items"`
}

type OrderItemLine struct {
	LineID      string   `json:"line_id"`
	ProductID   string   `json:"product_id"`
	VariantID   *string  `json:"variant_id"`
	WarehouseID string   `json:"warehouse_id"`
	Quantity    float64  `json:"quantity"`
	UnitCost    *float64 `json:"unit_cost"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	input := &dto.OrderInput{
		TenantID: event.Payload.TenantID,
		OrderID:  event.Payload.ID,
		Lines:    make([]dto.Line, 0, len(event.Payload.Items)),
	}
	for _, item := range event.Payload.Items {
		input.Lines = append(input.Lines, dto.Line{
			ReferenceID: item.LineID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
		})
	}

	var err error
	switch event.EventType {
	case EventOrderPlaced:
		err = l.uc.PlaceOrder(ctx, input)
	case EventOrderCompleted:
		err = l.uc.FulfillOrder(ctx, input)
	case EventOrderCancelled:
		err = l.uc.CancelOrder(ctx, input)
	default:
		return
	}

	if err != nil {
		// Replays are safe: every mutation is idempotent by line reference.
		l.logger.Error("failed to apply order event",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.Payload.ID),
			zap.Error(err),
		)
		return
	}

	l.logger.Info("applied order event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.Payload.ID),
		zap.Int("lines", len(input.Lines)),
	)
}
