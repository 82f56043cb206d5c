package repository

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, a *model.StockAlert) error {
	query := `
        INSERT INTO stock_alerts (
            id, tenant_id, product_id, variant_id, warehouse_id,
            alert_type, threshold_quantity, is_active,
            last_triggered_at, last_resolved_at, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :product_id, :variant_id, :warehouse_id,
            :alert_type, :threshold_quantity, :is_active,
            :last_triggered_at, :last_resolved_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, a)
	return err
}

func (r *PGRepository) ListForKey(ctx context.Context, key model.StockKey) ([]model.StockAlert, error) {
	query := `
        SELECT * FROM stock_alerts
        WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3
    `
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID}

	if key.VariantID != nil && *key.VariantID != "" {
		query += ` AND variant_id = $4`
		args = append(args, *key.VariantID)
	} else {
		query += ` AND variant_id IS NULL`
	}

	var alerts []model.StockAlert
	err := r.DB.SelectContext(ctx, &alerts, query, args...)
	return alerts, err
}

func (r *PGRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE stock_alerts SET last_triggered_at = $1, updated_at = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, at, id)
	return err
}

func (r *PGRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE stock_alerts SET last_resolved_at = $1, updated_at = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, at, id)
	return err
}
