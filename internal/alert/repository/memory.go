package repository

import (
	"context"
	"sync"
	"time"

	"github.com/classmart/inventory-service/internal/model"
)

// MemRepository is an in-process alert store used by tests and local runs.
type MemRepository struct {
	mu     sync.Mutex
	alerts map[string]*model.StockAlert
}

func NewMemRepository() *MemRepository {
	return &MemRepository{alerts: make(map[string]*model.StockAlert)}
}

func (r *MemRepository) Create(_ context.Context, a *model.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.alerts[a.ID] = &clone
	return nil
}

func (r *MemRepository) ListForKey(_ context.Context, key model.StockKey) ([]model.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.StockAlert
	for _, a := range r.alerts {
		if a.TenantID != key.TenantID || a.ProductID != key.ProductID || a.WarehouseID != key.WarehouseID {
			continue
		}
		if variant(a.VariantID) != key.Variant() {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *MemRepository) MarkTriggered(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.alerts[id]; ok {
		t := at
		a.LastTriggeredAt = &t
		a.UpdatedAt = at
	}
	return nil
}

func (r *MemRepository) MarkResolved(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.alerts[id]; ok {
		t := at
		a.LastResolvedAt = &t
		a.UpdatedAt = at
	}
	return nil
}

// Get returns a snapshot of one alert, for assertions.
func (r *MemRepository) Get(id string) (model.StockAlert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.alerts[id]; ok {
		return *a, true
	}
	return model.StockAlert{}, false
}

func variant(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
