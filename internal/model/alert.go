package model

import "time"

const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertOverstock  = "overstock"
)

type StockAlert struct {
	BaseModel
	TenantID          string     `db:"tenant_id" json:"tenant_id"`
	ProductID         string     `db:"product_id" json:"product_id"`
	VariantID         *string    `db:"variant_id" json:"variant_id"`
	WarehouseID       string     `db:"warehouse_id" json:"warehouse_id"`
	AlertType         string     `db:"alert_type" json:"alert_type"`
	ThresholdQuantity float64    `db:"threshold_quantity" json:"threshold_quantity"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	LastTriggeredAt   *time.Time `db:"last_triggered_at" json:"last_triggered_at"`
	LastResolvedAt    *time.Time `db:"last_resolved_at" json:"last_resolved_at"`
}

// IsTriggered reports whether the alert currently sits in triggered state:
// the trigger stamp is the most recent of the two timestamps.
func (a *StockAlert) IsTriggered() bool {
	if !a.IsActive || a.LastTriggeredAt == nil {
		return false
	}
	if a.LastResolvedAt == nil {
		return true
	}
	return a.LastTriggeredAt.After(*a.LastResolvedAt)
}

// ShouldTrigger evaluates the alert condition against an on-hand quantity.
func (a *StockAlert) ShouldTrigger(qty float64) bool {
	switch a.AlertType {
	case AlertLowStock:
		return qty > 0 && qty <= a.ThresholdQuantity
	case AlertOutOfStock:
		return qty <= 0
	case AlertOverstock:
		return qty >= a.ThresholdQuantity
	default:
		return false
	}
}
