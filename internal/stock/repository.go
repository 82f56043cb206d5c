package stock

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock/dto"
)

type ReserveParams struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
	ExpiresAt time.Time
}

type DeductParams struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
	UnitCost  *float64
	Notes     string
	Metadata  *string
	CreatedBy *string
}

type ReleaseParams struct {
	Key       model.StockKey
	Quantity  float64
	Reference model.Reference
}

type AdjustParams struct {
	Key            model.StockKey
	QuantityChange float64 // Signed
	MovementType   string
	Reference      model.Reference
	UnitCost       *float64
	Notes          string
	CreatedBy      *string
}

type TransferParams struct {
	Key               model.StockKey // Source warehouse
	TargetWarehouseID string
	Quantity          float64
	Reference         model.Reference
	Notes             string
	CreatedBy         *string
}

// Repository owns all persistent stock state. Every method that mutates a
// stock level executes as one atomic unit: the balance read-modify-write, the
// idempotency check, and the movement insert commit or roll back together.
type Repository interface {
	// Levels
	GetLevel(ctx context.Context, key model.StockKey) (*model.StockLevel, error) // nil when absent
	FindLevels(ctx context.Context, filters *dto.LevelFilters) ([]model.StockLevel, int, error)
	FreezeLevel(ctx context.Context, key model.StockKey) error

	// Reservation protocol. Reserve holds stock without removing it and writes
	// no movement. Deduct is idempotent by reference: the bool result is false
	// when the returned movement pre-existed and nothing was mutated. Release
	// clamps at zero and reports how much was actually released.
	Reserve(ctx context.Context, p *ReserveParams) error
	Deduct(ctx context.Context, p *DeductParams) (*model.StockMovement, bool, error)
	Release(ctx context.Context, p *ReleaseParams) (float64, error)

	// Ledger operations outside the reserve/deduct path.
	AdjustWithMovement(ctx context.Context, p *AdjustParams) (*model.StockMovement, error)
	TransferWithMovements(ctx context.Context, p *TransferParams) ([]model.StockMovement, error)

	// Movements / Audit
	FindMovementByReference(ctx context.Context, key model.StockKey, ref model.Reference) (*model.StockMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Reservations
	GetReservation(ctx context.Context, key model.StockKey, ref model.Reference) (*model.StockReservation, error)
	ExpiredReservations(ctx context.Context, now time.Time, limit int) ([]model.StockReservation, error)
}
