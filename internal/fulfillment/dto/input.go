package dto

// Line is one (item, warehouse, quantity) demand within a consumer aggregate.
// ReferenceID is the consumer's own primary key for the line and serves as the
// ledger's idempotency key.
type Line struct {
	ReferenceID string
	ProductID   string
	VariantID   *string
	WarehouseID string
	Quantity    float64
	UnitCost    *float64
}

// PackageSaleInput is a bundle sale: several products sold as one unit.
type PackageSaleInput struct {
	TenantID  string
	PackageID string
	SoldBy    *string
	Lines     []Line
}

// ShipmentInput covers class-document shipment batches: stock is reserved when
// the batch is assembled and deducted when it is dispatched.
type ShipmentInput struct {
	TenantID   string
	ShipmentID string
	PreparedBy *string
	Lines      []Line
}

// POSSaleInput is an immediate point-of-sale checkout with no hold phase.
type POSSaleInput struct {
	TenantID  string
	SaleID    string
	CashierID *string
	Lines     []Line
}

// OrderInput is an e-commerce product order: reserved at placement, deducted
// at fulfillment, released on cancellation.
type OrderInput struct {
	TenantID string
	OrderID  string
	PlacedBy *string
	Lines    []Line
}
