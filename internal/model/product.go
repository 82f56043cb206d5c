package model

type Product struct {
	BaseModel
	TenantID       string           `db:"tenant_id" json:"tenant_id"`
	SKU            string           `db:"sku" json:"sku"`
	Barcode        *string          `db:"barcode" json:"barcode"` // Nullable
	Name           string           `db:"name" json:"name"`
	Description    *string          `db:"description" json:"description"`
	CostPrice      *float64         `db:"cost_price" json:"cost_price"`
	HasVariants    bool             `db:"has_variants" json:"has_variants"`
	TracksQuantity bool             `db:"tracks_quantity" json:"tracks_quantity"`
	MinQuantity    float64          `db:"min_quantity" json:"min_quantity"` // Reorder threshold
	IsActive       bool             `db:"is_active" json:"is_active"`
	Variants       []ProductVariant `db:"-" json:"variants"` // Not in DB table directly
}

type ProductVariant struct {
	BaseModel
	ProductID   string   `db:"product_id" json:"product_id"`
	SKU         string   `db:"sku" json:"sku"`
	Barcode     *string  `db:"barcode" json:"barcode"`
	VariantName string   `db:"variant_name" json:"variant_name"`
	CostPrice   *float64 `db:"cost_price" json:"cost_price"`
	IsActive    bool     `db:"is_active" json:"is_active"`
}
