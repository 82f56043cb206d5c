package fulfillment

import (
	"context"

	"github.com/classmart/inventory-service/internal/fulfillment/dto"
)

// UseCase adapts the business aggregates (package bundles, class-document
// shipments, POS checkouts, product orders) onto the reservation engine. Every
// multi-line operation is all-or-nothing: a failure partway through rolls back
// the lines already applied in that call.
type UseCase interface {
	// SellPackage deducts every line of a bundle sale, compensating already
	// deducted lines when one fails.
	SellPackage(ctx context.Context, input *dto.PackageSaleInput) error

	// ReserveShipment holds stock for a shipment batch being assembled.
	ReserveShipment(ctx context.Context, input *dto.ShipmentInput) error
	// DispatchShipment finalizes the batch: holds become deductions.
	DispatchShipment(ctx context.Context, input *dto.ShipmentInput) error
	// CancelShipment drops the holds of an abandoned batch.
	CancelShipment(ctx context.Context, input *dto.ShipmentInput) error

	// RecordPOSSale deducts immediately, no hold phase.
	RecordPOSSale(ctx context.Context, input *dto.POSSaleInput) error

	PlaceOrder(ctx context.Context, input *dto.OrderInput) error
	FulfillOrder(ctx context.Context, input *dto.OrderInput) error
	CancelOrder(ctx context.Context, input *dto.OrderInput) error
}
