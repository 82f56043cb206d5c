package dto

type CreateProductInput struct {
	TenantID       string
	SKU            string
	Barcode        string
	Name           string
	Description    string
	CostPrice      *float64
	TracksQuantity bool
	MinQuantity    float64
}

type CreateVariantInput struct {
	ProductID   string
	SKU         string
	Barcode     string
	VariantName string
	CostPrice   *float64
}

type CreateWarehouseInput struct {
	TenantID  string
	Code      string
	Name      string
	Address   string
	IsDefault bool
}

type WarehouseFilters struct {
	TenantID   string
	ActiveOnly bool
}
