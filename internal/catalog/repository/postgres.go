package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classmart/inventory-service/internal/catalog/dto"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, tenant_id, sku, barcode, name, description, cost_price,
            has_variants, tracks_quantity, min_quantity, is_active,
            created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :sku, :barcode, :name, :description, :cost_price,
            :has_variants, :tracks_quantity, :min_quantity, :is_active,
            :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindProductByID(ctx context.Context, tenantID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products SET
            sku = :sku, barcode = :barcode, name = :name, description = :description,
            cost_price = :cost_price, has_variants = :has_variants,
            tracks_quantity = :tracks_quantity, min_quantity = :min_quantity,
            is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, tenantID, sku, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE tenant_id = $1 AND sku = $2 AND id != $3`
	err := r.DB.GetContext(ctx, &count, query, tenantID, sku, excludeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	query := `
        INSERT INTO product_variants (
            id, product_id, sku, barcode, variant_name, cost_price, is_active,
            created_at, updated_at
        )
        VALUES (
            :id, :product_id, :sku, :barcode, :variant_name, :cost_price, :is_active,
            :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return err
}

func (r *PGRepository) FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	query := `SELECT * FROM product_variants WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &variant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *PGRepository) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	query := `SELECT * FROM product_variants WHERE product_id = $1 ORDER BY variant_name ASC`
	err := r.DB.SelectContext(ctx, &variants, query, productID)
	return variants, err
}

func (r *PGRepository) CreateWarehouse(ctx context.Context, w *model.Warehouse) error {
	query := `
        INSERT INTO warehouses (
            id, tenant_id, code, name, address, is_active, is_default,
            created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :code, :name, :address, :is_active, :is_default,
            :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) FindWarehouseByID(ctx context.Context, tenantID, id string) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	query := `SELECT * FROM warehouses WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &warehouse, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *PGRepository) ListWarehouses(ctx context.Context, f *dto.WarehouseFilters) ([]model.Warehouse, error) {
	query := `SELECT * FROM warehouses WHERE tenant_id = $1`
	args := []interface{}{f.TenantID}
	if f.ActiveOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY is_default DESC, name ASC`

	var warehouses []model.Warehouse
	err := r.DB.SelectContext(ctx, &warehouses, query, args...)
	return warehouses, err
}

func (r *PGRepository) UpdateWarehouse(ctx context.Context, w *model.Warehouse) error {
	query := `
        UPDATE warehouses SET
            code = :code, name = :name, address = :address,
            is_active = :is_active, is_default = :is_default, updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) UnsetDefaultWarehouses(ctx context.Context, tenantID string) error {
	query := `UPDATE warehouses SET is_default = false WHERE tenant_id = $1 AND is_default = true`
	_, err := r.DB.ExecContext(ctx, query, tenantID)
	return err
}
