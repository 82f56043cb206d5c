package model

import "time"

// Movement types recorded in the ledger.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
	MovementTransfer   = "transfer"
)

// Reference types used by the known consumers. The ledger itself treats the
// reference as opaque; only the consumer layer resolves it back to an aggregate.
const (
	RefPackage         = "package"
	RefPackageReversal = "package_reversal"
	RefShipmentItem    = "shipment_item"
	RefPOSSaleItem     = "pos_sale_item"
	RefProductOrder    = "product_order"
	RefManual          = "manual"
	RefTransfer        = "transfer"
)

// Reference identifies the business event that caused a movement or holds a
// reservation. The pair is the idempotency key for deductions.
type Reference struct {
	Type string `db:"reference_type" json:"reference_type"`
	ID   string `db:"reference_id" json:"reference_id"`
}

// Reversal is the reference under which a compensating movement for this
// reference is recorded.
func (r Reference) Reversal() Reference {
	return Reference{Type: r.Type + "_reversal", ID: r.ID}
}

// StockKey identifies one stock level row: (tenant, product, variant?, warehouse).
type StockKey struct {
	TenantID    string
	ProductID   string
	VariantID   *string
	WarehouseID string
}

func (k StockKey) Variant() string {
	if k.VariantID == nil {
		return ""
	}
	return *k.VariantID
}

type StockLevel struct {
	ID               string     `db:"id" json:"id"`
	TenantID         string     `db:"tenant_id" json:"tenant_id"`
	ProductID        string     `db:"product_id" json:"product_id"`
	VariantID        *string    `db:"variant_id" json:"variant_id"`
	WarehouseID      string     `db:"warehouse_id" json:"warehouse_id"`
	Quantity         float64    `db:"quantity" json:"quantity"`
	ReservedQuantity float64    `db:"reserved_quantity" json:"reserved_quantity"`
	AverageCost      float64    `db:"average_cost" json:"average_cost"`
	IsFrozen         bool       `db:"is_frozen" json:"is_frozen"`
	LastMovementAt   *time.Time `db:"last_movement_at" json:"last_movement_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Available is on-hand minus reserved, floored at zero. It is always computed,
// never stored.
func (l *StockLevel) Available() float64 {
	if avail := l.Quantity - l.ReservedQuantity; avail > 0 {
		return avail
	}
	return 0
}

func (l *StockLevel) CanReserve(qty float64) bool {
	return l.Available() >= qty
}

type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	TenantID       string    `db:"tenant_id" json:"tenant_id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	VariantID      *string   `db:"variant_id" json:"variant_id"`
	WarehouseID    string    `db:"warehouse_id" json:"warehouse_id"`
	Type           string    `db:"type" json:"type"`
	Quantity       float64   `db:"quantity" json:"quantity"` // Signed delta
	QuantityBefore float64   `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64   `db:"quantity_after" json:"quantity_after"`
	UnitCost       *float64  `db:"unit_cost" json:"unit_cost"`
	ReferenceType  string    `db:"reference_type" json:"reference_type"`
	ReferenceID    string    `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	Metadata       *string   `db:"metadata" json:"metadata"` // JSON blob, nullable
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Reservation lifecycle. There is no separate "expired" state: the sweeper
// releases stale holds through the normal release path.
const (
	ReservationActive   = "active"
	ReservationConsumed = "consumed"
	ReservationReleased = "released"
)

type StockReservation struct {
	ID            string    `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	VariantID     *string   `db:"variant_id" json:"variant_id"`
	WarehouseID   string    `db:"warehouse_id" json:"warehouse_id"`
	ReferenceType string    `db:"reference_type" json:"reference_type"`
	ReferenceID   string    `db:"reference_id" json:"reference_id"`
	Quantity      float64   `db:"quantity" json:"quantity"`
	Status        string    `db:"status" json:"status"`
	ExpiresAt     time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (r *StockReservation) Expired(now time.Time) bool {
	return r.Status == ReservationActive && now.After(r.ExpiresAt)
}
