package repository

import (
	"context"
	"sync"

	"github.com/classmart/inventory-service/internal/catalog/dto"
	"github.com/classmart/inventory-service/internal/model"
)

// MemRepository is an in-process catalog store used by tests and local runs.
type MemRepository struct {
	mu         sync.Mutex
	products   map[string]*model.Product
	variants   map[string]*model.ProductVariant
	warehouses map[string]*model.Warehouse
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		products:   make(map[string]*model.Product),
		variants:   make(map[string]*model.ProductVariant),
		warehouses: make(map[string]*model.Warehouse),
	}
}

func (r *MemRepository) CreateProduct(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *MemRepository) FindProductByID(_ context.Context, tenantID, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.TenantID == tenantID {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) UpdateProduct(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *MemRepository) IsSKUUnique(_ context.Context, tenantID, sku, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku && p.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

func (r *MemRepository) CreateVariant(_ context.Context, v *model.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *v
	r.variants[v.ID] = &clone
	return nil
}

func (r *MemRepository) FindVariantByID(_ context.Context, id string) (*model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.variants[id]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) ListVariants(_ context.Context, productID string) ([]model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ProductVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *MemRepository) CreateWarehouse(_ context.Context, w *model.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.warehouses[w.ID] = &clone
	return nil
}

func (r *MemRepository) FindWarehouseByID(_ context.Context, tenantID, id string) (*model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.warehouses[id]; ok && w.TenantID == tenantID {
		clone := *w
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) ListWarehouses(_ context.Context, f *dto.WarehouseFilters) ([]model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Warehouse
	for _, w := range r.warehouses {
		if w.TenantID != f.TenantID {
			continue
		}
		if f.ActiveOnly && !w.IsActive {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (r *MemRepository) UpdateWarehouse(_ context.Context, w *model.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.warehouses[w.ID] = &clone
	return nil
}

func (r *MemRepository) UnsetDefaultWarehouses(_ context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.TenantID == tenantID {
			w.IsDefault = false
		}
	}
	return nil
}
