package catalog

import (
	"context"

	"github.com/classmart/inventory-service/internal/catalog/dto"
	"github.com/classmart/inventory-service/internal/model"
)

type Repository interface {
	// Products
	CreateProduct(ctx context.Context, product *model.Product) error
	FindProductByID(ctx context.Context, tenantID, id string) (*model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	IsSKUUnique(ctx context.Context, tenantID, sku, excludeID string) (bool, error)

	// Variants
	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)

	// Warehouses
	CreateWarehouse(ctx context.Context, warehouse *model.Warehouse) error
	FindWarehouseByID(ctx context.Context, tenantID, id string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse *model.Warehouse) error
	// UnsetDefaultWarehouses clears the default flag for every warehouse of the
	// tenant; paired with setting a new default in the usecase.
	UnsetDefaultWarehouses(ctx context.Context, tenantID string) error
}
