package dto

import "time"

// Balance is the computed view of a stock level. Available is derived, never
// stored.
type Balance struct {
	OnHand    float64 `json:"on_hand"`
	Reserved  float64 `json:"reserved"`
	Available float64 `json:"available"`
}

type LevelFilters struct {
	TenantID    string
	WarehouseID string
	ProductID   string
	LowStock    bool // Filter by quantity at or below the item's min_quantity
	Page        int
	PageSize    int
}

type MovementFilters struct {
	TenantID      string
	ProductID     string
	VariantID     *string
	WarehouseID   string
	MovementType  string
	ReferenceType string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
