package model

type Warehouse struct {
	BaseModel
	TenantID  string  `db:"tenant_id" json:"tenant_id"`
	Code      string  `db:"code" json:"code"`
	Name      string  `db:"name" json:"name"`
	Address   *string `db:"address" json:"address"`
	IsActive  bool    `db:"is_active" json:"is_active"`
	IsDefault bool    `db:"is_default" json:"is_default"`
}
