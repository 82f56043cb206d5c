package usecase_test

import (
	"context"
	"testing"

	catdto "github.com/classmart/inventory-service/internal/catalog/dto"
	catrepo "github.com/classmart/inventory-service/internal/catalog/repository"
	catusecase "github.com/classmart/inventory-service/internal/catalog/usecase"
	"github.com/classmart/inventory-service/internal/fulfillment"
	fdto "github.com/classmart/inventory-service/internal/fulfillment/dto"
	fulfillusecase "github.com/classmart/inventory-service/internal/fulfillment/usecase"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/internal/stock/dto"
	stockrepo "github.com/classmart/inventory-service/internal/stock/repository"
	stockusecase "github.com/classmart/inventory-service/internal/stock/usecase"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "tenant-1"

type fixture struct {
	fulfill fulfillment.UseCase
	engine  stock.UseCase
	repo    *stockrepo.MemRepository
	keyA    model.StockKey // seeded with 10
	keyB    model.StockKey // seeded with 2
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	catRepo := catrepo.NewMemRepository()
	catUC := catusecase.NewCatalogUseCase(catRepo, logger.NewNop())

	wh, err := catUC.CreateWarehouse(ctx, &catdto.CreateWarehouseInput{
		TenantID: tenantID, Code: "MAIN", Name: "Main Warehouse", IsDefault: true,
	})
	require.NoError(t, err)

	repo := stockrepo.NewMemRepository()
	engine := stockusecase.NewStockUseCase(repo, catUC, nil, nil, nil, logger.NewNop(), stockusecase.Options{})
	f := &fixture{
		fulfill: fulfillusecase.NewFulfillmentUseCase(engine, logger.NewNop()),
		engine:  engine,
		repo:    repo,
	}

	seed := func(sku string, qty float64) model.StockKey {
		p, err := catUC.CreateProduct(ctx, &catdto.CreateProductInput{
			TenantID: tenantID, SKU: sku, Name: "Item " + sku, TracksQuantity: true,
		})
		require.NoError(t, err)
		key := model.StockKey{TenantID: tenantID, ProductID: p.ID, WarehouseID: wh.ID}
		_, err = engine.Adjust(ctx, &dto.AdjustInput{
			Key:            key,
			QuantityChange: qty,
			MovementType:   model.MovementIn,
			Reference:      model.Reference{Type: model.RefManual, ID: uuid.New().String()},
			Reason:         "initial receiving",
		})
		require.NoError(t, err)
		return key
	}

	f.keyA = seed("BOOK-A", 10)
	f.keyB = seed("BOOK-B", 2)
	return f
}

func (f *fixture) line(key model.StockKey, refID string, qty float64) fdto.Line {
	return fdto.Line{
		ReferenceID: refID,
		ProductID:   key.ProductID,
		VariantID:   key.VariantID,
		WarehouseID: key.WarehouseID,
		Quantity:    qty,
	}
}

func (f *fixture) onHand(t *testing.T, key model.StockKey) float64 {
	t.Helper()
	b, err := f.engine.Balance(context.Background(), key)
	require.NoError(t, err)
	return b.OnHand
}

func (f *fixture) reserved(t *testing.T, key model.StockKey) float64 {
	t.Helper()
	b, err := f.engine.Balance(context.Background(), key)
	require.NoError(t, err)
	return b.Reserved
}

func TestSellPackageDeductsEveryLine(t *testing.T) {
	f := newFixture(t)

	err := f.fulfill.SellPackage(context.Background(), &fdto.PackageSaleInput{
		TenantID:  tenantID,
		PackageID: "pkg-1",
		Lines: []fdto.Line{
			f.line(f.keyA, "pkg-1-line-1", 3),
			f.line(f.keyB, "pkg-1-line-2", 1),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 7.0, f.onHand(t, f.keyA))
	assert.Equal(t, 1.0, f.onHand(t, f.keyB))

	sales := 0
	for _, m := range f.repo.Movements() {
		if m.ReferenceType == model.RefPackage {
			sales++
			assert.Equal(t, model.MovementOut, m.Type)
		}
	}
	assert.Equal(t, 2, sales)
}

func TestSellPackageRollsBackOnShortLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.fulfill.SellPackage(ctx, &fdto.PackageSaleInput{
		TenantID:  tenantID,
		PackageID: "pkg-short",
		Lines: []fdto.Line{
			f.line(f.keyA, "pkg-short-line-1", 3),
			f.line(f.keyB, "pkg-short-line-2", 99), // more than on hand
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)

	// The first line was compensated: both balances are back where they started.
	assert.Equal(t, 10.0, f.onHand(t, f.keyA))
	assert.Equal(t, 2.0, f.onHand(t, f.keyB))

	reversals := 0
	for _, m := range f.repo.Movements() {
		if m.ReferenceType == model.RefPackageReversal {
			reversals++
			assert.Equal(t, model.MovementIn, m.Type)
			assert.Equal(t, 3.0, m.Quantity)
		}
	}
	assert.Equal(t, 1, reversals)
}

func TestRetriedRolledBackSaleFailsInsteadOfPhantomSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale := &fdto.PackageSaleInput{
		TenantID:  tenantID,
		PackageID: "pkg-retry",
		Lines: []fdto.Line{
			f.line(f.keyA, "pkg-retry-line-1", 3),
			f.line(f.keyB, "pkg-retry-line-2", 99),
		},
	}

	require.Error(t, f.fulfill.SellPackage(ctx, sale))
	assert.Equal(t, 10.0, f.onHand(t, f.keyA))

	// Restock the short line, then replay the whole aggregate.
	_, err := f.engine.Adjust(ctx, &dto.AdjustInput{
		Key:            f.keyB,
		QuantityChange: 100,
		MovementType:   model.MovementIn,
		Reference:      model.Reference{Type: model.RefManual, ID: uuid.New().String()},
		Reason:         "restock",
	})
	require.NoError(t, err)

	// The rolled-back line's reference was reversed; the retry must fail
	// loudly rather than report a sale that moved nothing.
	err = f.fulfill.SellPackage(ctx, sale)
	require.Error(t, err)
	assert.ErrorIs(t, err, stock.ErrReferenceReversed)
	assert.Equal(t, 10.0, f.onHand(t, f.keyA))
	assert.Equal(t, 102.0, f.onHand(t, f.keyB))
}

func TestRecordPOSSaleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale := &fdto.POSSaleInput{
		TenantID: tenantID,
		SaleID:   "sale-1",
		Lines:    []fdto.Line{f.line(f.keyA, "sale-1-line-1", 4)},
	}

	require.NoError(t, f.fulfill.RecordPOSSale(ctx, sale))
	require.NoError(t, f.fulfill.RecordPOSSale(ctx, sale)) // replayed event

	assert.Equal(t, 6.0, f.onHand(t, f.keyA))
}

func TestOrderLifecycleFulfilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := &fdto.OrderInput{
		TenantID: tenantID,
		OrderID:  "ord-1",
		Lines: []fdto.Line{
			f.line(f.keyA, "ord-1-line-1", 2),
			f.line(f.keyB, "ord-1-line-2", 2),
		},
	}

	require.NoError(t, f.fulfill.PlaceOrder(ctx, order))
	assert.Equal(t, 2.0, f.reserved(t, f.keyA))
	assert.Equal(t, 2.0, f.reserved(t, f.keyB))
	assert.Equal(t, 10.0, f.onHand(t, f.keyA)) // placement holds, does not remove

	require.NoError(t, f.fulfill.FulfillOrder(ctx, order))
	assert.Equal(t, 8.0, f.onHand(t, f.keyA))
	assert.Equal(t, 0.0, f.onHand(t, f.keyB))
	assert.Equal(t, 0.0, f.reserved(t, f.keyA))
	assert.Equal(t, 0.0, f.reserved(t, f.keyB))

	// Cancelling after fulfillment finds no active hold and changes nothing.
	require.NoError(t, f.fulfill.CancelOrder(ctx, order))
	assert.Equal(t, 8.0, f.onHand(t, f.keyA))
}

func TestOrderLifecycleCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := &fdto.OrderInput{
		TenantID: tenantID,
		OrderID:  "ord-2",
		Lines:    []fdto.Line{f.line(f.keyA, "ord-2-line-1", 5)},
	}

	require.NoError(t, f.fulfill.PlaceOrder(ctx, order))
	require.NoError(t, f.fulfill.CancelOrder(ctx, order))

	assert.Equal(t, 10.0, f.onHand(t, f.keyA))
	assert.Equal(t, 0.0, f.reserved(t, f.keyA))
	assert.Empty(t, movementsOfType(f.repo.Movements(), model.MovementOut))
}

func TestPlaceOrderReleasesHoldsOnShortLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.fulfill.PlaceOrder(ctx, &fdto.OrderInput{
		TenantID: tenantID,
		OrderID:  "ord-short",
		Lines: []fdto.Line{
			f.line(f.keyA, "ord-short-line-1", 5),
			f.line(f.keyB, "ord-short-line-2", 99),
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)

	assert.Equal(t, 0.0, f.reserved(t, f.keyA))
	assert.Equal(t, 0.0, f.reserved(t, f.keyB))
}

func TestShipmentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shipment := &fdto.ShipmentInput{
		TenantID:   tenantID,
		ShipmentID: "ship-1",
		Lines:      []fdto.Line{f.line(f.keyA, "ship-1-item-1", 6)},
	}

	require.NoError(t, f.fulfill.ReserveShipment(ctx, shipment))
	assert.Equal(t, 6.0, f.reserved(t, f.keyA))

	require.NoError(t, f.fulfill.DispatchShipment(ctx, shipment))
	assert.Equal(t, 4.0, f.onHand(t, f.keyA))
	assert.Equal(t, 0.0, f.reserved(t, f.keyA))

	// Cancel after dispatch is a no-op, the hold is already consumed.
	require.NoError(t, f.fulfill.CancelShipment(ctx, shipment))
	assert.Equal(t, 4.0, f.onHand(t, f.keyA))
}

func TestCancelShipmentFreesHeldStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shipment := &fdto.ShipmentInput{
		TenantID:   tenantID,
		ShipmentID: "ship-2",
		Lines:      []fdto.Line{f.line(f.keyA, "ship-2-item-1", 6)},
	}

	require.NoError(t, f.fulfill.ReserveShipment(ctx, shipment))
	require.NoError(t, f.fulfill.CancelShipment(ctx, shipment))

	assert.Equal(t, 10.0, f.onHand(t, f.keyA))
	assert.Equal(t, 0.0, f.reserved(t, f.keyA))
}

func movementsOfType(movements []model.StockMovement, movementType string) []model.StockMovement {
	var out []model.StockMovement
	for _, m := range movements {
		if m.Type == movementType {
			out = append(out, m)
		}
	}
	return out
}
