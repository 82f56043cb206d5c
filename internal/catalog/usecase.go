package catalog

import (
	"context"
	"errors"

	"github.com/classmart/inventory-service/internal/catalog/dto"
	"github.com/classmart/inventory-service/internal/model"
)

var (
	ErrProductNotFound   = errors.New("catalog: product not found")
	ErrVariantNotFound   = errors.New("catalog: variant not found")
	ErrWarehouseNotFound = errors.New("catalog: warehouse not found")
	ErrDuplicateSKU      = errors.New("catalog: sku already exists")
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	AddVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, tenantID, productID string) ([]model.ProductVariant, error)
	// SetQuantityTracking toggles whether the ledger tracks the product.
	SetQuantityTracking(ctx context.Context, tenantID, productID string, tracked bool) error

	// ResolveItem loads the product behind a stock key; the variant, when
	// given, must belong to it. Satisfies the engine's ItemResolver.
	ResolveItem(ctx context.Context, tenantID, productID string, variantID *string) (*model.Product, error)

	CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, error)
	DefaultWarehouse(ctx context.Context, tenantID string) (*model.Warehouse, error)
	DeactivateWarehouse(ctx context.Context, tenantID, warehouseID string) error
}
