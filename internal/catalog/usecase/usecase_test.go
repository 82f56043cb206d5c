package usecase_test

import (
	"context"
	"testing"

	"github.com/classmart/inventory-service/internal/catalog"
	"github.com/classmart/inventory-service/internal/catalog/dto"
	catrepo "github.com/classmart/inventory-service/internal/catalog/repository"
	catusecase "github.com/classmart/inventory-service/internal/catalog/usecase"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "tenant-1"

func newUseCase() catalog.UseCase {
	return catusecase.NewCatalogUseCase(catrepo.NewMemRepository(), logger.NewNop())
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: tenantID, SKU: "WB-001", Name: "Workbook", TracksQuantity: true,
	})
	require.NoError(t, err)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: tenantID, SKU: "WB-001", Name: "Workbook Reprint", TracksQuantity: true,
	})
	assert.ErrorIs(t, err, catalog.ErrDuplicateSKU)

	// Same SKU under another tenant is fine.
	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: "tenant-2", SKU: "WB-001", Name: "Workbook", TracksQuantity: true,
	})
	assert.NoError(t, err)
}

func TestResolveItemChecksVariantOwnership(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	p1, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: tenantID, SKU: "WB-001", Name: "Workbook", TracksQuantity: true,
	})
	require.NoError(t, err)
	p2, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: tenantID, SKU: "WB-002", Name: "Workbook Deluxe", TracksQuantity: true,
	})
	require.NoError(t, err)

	v, err := uc.AddVariant(ctx, &dto.CreateVariantInput{
		ProductID: p1.ID, SKU: "WB-001-L", VariantName: "Large",
	})
	require.NoError(t, err)

	resolved, err := uc.ResolveItem(ctx, tenantID, p1.ID, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, resolved.ID)

	variants, err := uc.ListVariants(ctx, tenantID, p1.ID)
	require.NoError(t, err)
	assert.Len(t, variants, 1)

	// A variant of a different product must not resolve.
	_, err = uc.ResolveItem(ctx, tenantID, p2.ID, &v.ID)
	assert.ErrorIs(t, err, catalog.ErrVariantNotFound)

	_, err = uc.ResolveItem(ctx, tenantID, "missing", nil)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// Tenants cannot see each other's products.
	_, err = uc.ResolveItem(ctx, "tenant-2", p1.ID, nil)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestOneDefaultWarehousePerTenant(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	_, err := uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{
		TenantID: tenantID, Code: "MAIN", Name: "Main", IsDefault: true,
	})
	require.NoError(t, err)

	second, err := uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{
		TenantID: tenantID, Code: "EAST", Name: "East", IsDefault: true,
	})
	require.NoError(t, err)

	def, err := uc.DefaultWarehouse(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	warehouses, err := uc.ListWarehouses(ctx, &dto.WarehouseFilters{TenantID: tenantID})
	require.NoError(t, err)
	defaults := 0
	for _, w := range warehouses {
		if w.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDeactivateWarehouseKeepsRecord(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	w, err := uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{
		TenantID: tenantID, Code: "MAIN", Name: "Main",
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeactivateWarehouse(ctx, tenantID, w.ID))

	active, err := uc.ListWarehouses(ctx, &dto.WarehouseFilters{TenantID: tenantID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := uc.ListWarehouses(ctx, &dto.WarehouseFilters{TenantID: tenantID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, uc.DeactivateWarehouse(ctx, tenantID, "missing"), catalog.ErrWarehouseNotFound)
}

func TestSetQuantityTracking(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		TenantID: tenantID, SKU: "DL-001", Name: "Download", TracksQuantity: false,
	})
	require.NoError(t, err)

	require.NoError(t, uc.SetQuantityTracking(ctx, tenantID, p.ID, true))

	resolved, err := uc.ResolveItem(ctx, tenantID, p.ID, nil)
	require.NoError(t, err)
	assert.True(t, resolved.TracksQuantity)

	assert.ErrorIs(t, uc.SetQuantityTracking(ctx, tenantID, "missing", true), catalog.ErrProductNotFound)
}
