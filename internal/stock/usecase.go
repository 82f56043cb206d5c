package stock

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock/dto"
)

// UseCase is the reservation engine surface consumed by package sales,
// shipments, POS checkouts and order fulfillment. Items that do not track
// quantity make every mutating operation a successful no-op.
type UseCase interface {
	CheckAvailability(ctx context.Context, key model.StockKey, quantity float64) (bool, error)

	// Reserve holds stock against a reference without removing it. No movement
	// is written; reserving the same reference twice is a no-op.
	Reserve(ctx context.Context, input *dto.ReserveInput) error

	// Deduct finalizes a sale: decrements on-hand, consumes any reservation
	// held for the same reference, and writes exactly one movement. Calling it
	// again with the same reference returns the original movement unchanged.
	Deduct(ctx context.Context, input *dto.DeductInput) (*model.StockMovement, error)

	// Release cancels a hold. Idempotent: releasing an already-released or
	// never-reserved hold does nothing.
	Release(ctx context.Context, input *dto.ReleaseInput) error

	Balance(ctx context.Context, key model.StockKey) (*dto.Balance, error)
	History(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListLowStock(ctx context.Context, tenantID, warehouseID string, page, pageSize int) ([]model.StockLevel, int, error)

	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.StockMovement, error)
	Transfer(ctx context.Context, input *dto.TransferInput) error

	// ReleaseExpired releases every active reservation whose TTL has lapsed
	// and returns how many holds were swept.
	ReleaseExpired(ctx context.Context, now time.Time) (int, error)
}

// Locker serializes read-modify-write cycles on one stock level across
// processes. The redis client satisfies this in production.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// ItemResolver looks up the catalog item behind a stock key, primarily for its
// quantity-tracking flag. The catalog usecase satisfies this.
type ItemResolver interface {
	ResolveItem(ctx context.Context, tenantID, productID string, variantID *string) (*model.Product, error)
}
