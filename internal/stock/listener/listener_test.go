package listener

import (
	"context"
	"testing"

	"github.com/classmart/inventory-service/internal/fulfillment/dto"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUseCase struct {
	placed    []*dto.OrderInput
	fulfilled []*dto.OrderInput
	cancelled []*dto.OrderInput
}

func (r *recordingUseCase) SellPackage(context.Context, *dto.PackageSaleInput) error { return nil }
func (r *recordingUseCase) ReserveShipment(context.Context, *dto.ShipmentInput) error {
	return nil
}
func (r *recordingUseCase) DispatchShipment(context.Context, *dto.ShipmentInput) error {
	return nil
}
func (r *recordingUseCase) CancelShipment(context.Context, *dto.ShipmentInput) error { return nil }
func (r *recordingUseCase) RecordPOSSale(context.Context, *dto.POSSaleInput) error   { return nil }

func (r *recordingUseCase) PlaceOrder(_ context.Context, input *dto.OrderInput) error {
	r.placed = append(r.placed, input)
	return nil
}

func (r *recordingUseCase) FulfillOrder(_ context.Context, input *dto.OrderInput) error {
	r.fulfilled = append(r.fulfilled, input)
	return nil
}

func (r *recordingUseCase) CancelOrder(_ context.Context, input *dto.OrderInput) error {
	r.cancelled = append(r.cancelled, input)
	return nil
}

const orderPlacedEvent = `{
	"event_id": "evt-1",
	"event_type": "OrderPlaced",
	"payload": {
		"id": "ord-1",
		"tenant_id": "tenant-1",
		"items": [
			{
				"line_id": "ord-1-line-1",
				"product_id": "prod-1",
				"warehouse_id": "wh-1",
				"quantity": 2,
				"unit_cost": 4.5
			}
		]
	}
}`

func TestProcessMessageDispatchesByEventType(t *testing.T) {
	uc := &recordingUseCase{}
	l := NewOrderListener(nil, uc, logger.NewNop())
	ctx := context.Background()

	l.processMessage(ctx, []byte(orderPlacedEvent))
	require.Len(t, uc.placed, 1)

	placed := uc.placed[0]
	assert.Equal(t, "tenant-1", placed.TenantID)
	assert.Equal(t, "ord-1", placed.OrderID)
	require.Len(t, placed.Lines, 1)
	assert.Equal(t, "ord-1-line-1", placed.Lines[0].ReferenceID)
	assert.Equal(t, "prod-1", placed.Lines[0].ProductID)
	assert.Equal(t, 2.0, placed.Lines[0].Quantity)
	require.NotNil(t, placed.Lines[0].UnitCost)
	assert.Equal(t, 4.5, *placed.Lines[0].UnitCost)

	l.processMessage(ctx, []byte(`{"event_type":"OrderCompleted","payload":{"id":"ord-1","tenant_id":"tenant-1"}}`))
	assert.Len(t, uc.fulfilled, 1)

	l.processMessage(ctx, []byte(`{"event_type":"OrderCancelled","payload":{"id":"ord-1","tenant_id":"tenant-1"}}`))
	assert.Len(t, uc.cancelled, 1)
}

func TestProcessMessageIgnoresUnknownAndMalformedEvents(t *testing.T) {
	uc := &recordingUseCase{}
	l := NewOrderListener(nil, uc, logger.NewNop())
	ctx := context.Background()

	l.processMessage(ctx, []byte(`{"event_type":"OrderShipped","payload":{"id":"ord-1"}}`))
	l.processMessage(ctx, []byte(`not json`))

	assert.Empty(t, uc.placed)
	assert.Empty(t, uc.fulfilled)
	assert.Empty(t, uc.cancelled)
}
