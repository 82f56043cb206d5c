package usecase

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/catalog"
	"github.com/classmart/inventory-service/internal/catalog/dto"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type catalogUseCase struct {
	repo   catalog.Repository
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	unique, err := uc.repo.IsSKUUnique(ctx, input.TenantID, input.SKU, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, catalog.ErrDuplicateSKU
	}

	now := time.Now()
	barcode := &input.Barcode
	if input.Barcode == "" {
		barcode = nil
	}
	description := &input.Description
	if input.Description == "" {
		description = nil
	}

	p := &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:       input.TenantID,
		SKU:            input.SKU,
		Barcode:        barcode,
		Name:           input.Name,
		Description:    description,
		CostPrice:      input.CostPrice,
		TracksQuantity: input.TracksQuantity,
		MinQuantity:    input.MinQuantity,
		IsActive:       true,
	}

	if err := uc.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *catalogUseCase) AddVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.ProductVariant, error) {
	now := time.Now()
	barcode := &input.Barcode
	if input.Barcode == "" {
		barcode = nil
	}

	v := &model.ProductVariant{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:   input.ProductID,
		SKU:         input.SKU,
		Barcode:     barcode,
		VariantName: input.VariantName,
		CostPrice:   input.CostPrice,
		IsActive:    true,
	}

	if err := uc.repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *catalogUseCase) ListVariants(ctx context.Context, tenantID, productID string) ([]model.ProductVariant, error) {
	p, err := uc.repo.FindProductByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, catalog.ErrProductNotFound
	}
	return uc.repo.ListVariants(ctx, productID)
}

func (uc *catalogUseCase) SetQuantityTracking(ctx context.Context, tenantID, productID string, tracked bool) error {
	p, err := uc.repo.FindProductByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return catalog.ErrProductNotFound
	}

	p.TracksQuantity = tracked
	p.UpdatedAt = time.Now()

	uc.logger.Info("toggling quantity tracking",
		zap.String("tenant_id", tenantID),
		zap.String("product_id", productID),
		zap.Bool("tracked", tracked),
	)
	return uc.repo.UpdateProduct(ctx, p)
}

func (uc *catalogUseCase) ResolveItem(ctx context.Context, tenantID, productID string, variantID *string) (*model.Product, error) {
	p, err := uc.repo.FindProductByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, catalog.ErrProductNotFound
	}

	if variantID != nil && *variantID != "" {
		v, err := uc.repo.FindVariantByID(ctx, *variantID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.ProductID != p.ID {
			return nil, catalog.ErrVariantNotFound
		}
	}
	return p, nil
}

func (uc *catalogUseCase) CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error) {
	// At most one default warehouse per tenant.
	if input.IsDefault {
		if err := uc.repo.UnsetDefaultWarehouses(ctx, input.TenantID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	address := &input.Address
	if input.Address == "" {
		address = nil
	}

	w := &model.Warehouse{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:  input.TenantID,
		Code:      input.Code,
		Name:      input.Name,
		Address:   address,
		IsActive:  true,
		IsDefault: input.IsDefault,
	}

	if err := uc.repo.CreateWarehouse(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (uc *catalogUseCase) ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, error) {
	return uc.repo.ListWarehouses(ctx, filters)
}

func (uc *catalogUseCase) DefaultWarehouse(ctx context.Context, tenantID string) (*model.Warehouse, error) {
	warehouses, err := uc.repo.ListWarehouses(ctx, &dto.WarehouseFilters{TenantID: tenantID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	for i := range warehouses {
		if warehouses[i].IsDefault {
			return &warehouses[i], nil
		}
	}
	return nil, catalog.ErrWarehouseNotFound
}

func (uc *catalogUseCase) DeactivateWarehouse(ctx context.Context, tenantID, warehouseID string) error {
	w, err := uc.repo.FindWarehouseByID(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return catalog.ErrWarehouseNotFound
	}

	// Warehouses with stock history are deactivated, never deleted.
	w.IsActive = false
	w.UpdatedAt = time.Now()
	return uc.repo.UpdateWarehouse(ctx, w)
}
