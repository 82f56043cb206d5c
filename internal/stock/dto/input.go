package dto

import (
	"time"

	"github.com/classmart/inventory-service/internal/model"
)

type ReserveInput struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
	// TTL overrides the engine default when positive.
	TTL time.Duration
}

type DeductInput struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
	UnitCost  *float64
	Notes     string
	Metadata  *string
	CreatedBy *string
}

type ReleaseInput struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
}

type AdjustInput struct {
	Key model.StockKey
	// QuantityChange is signed: positive receives stock, negative removes it.
	QuantityChange float64
	// MovementType defaults to "adjustment" when empty.
	MovementType string
	Reference    model.Reference
	UnitCost     *float64
	Reason       string
	CreatedBy    *string
}

type TransferInput struct {
	Key               model.StockKey // Source warehouse
	TargetWarehouseID string
	Quantity          float64
	Reference         model.Reference
	Reason            string
	CreatedBy         *string
}
