package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/internal/stock/dto"
	"github.com/google/uuid"
)

// MemRepository keeps all stock state in process behind one mutex, giving the
// same atomicity per operation as the postgres transactions. Tests and local
// runs use it; the concurrency properties of the engine hold against it.
type MemRepository struct {
	mu           sync.Mutex
	levels       map[string]*model.StockLevel
	movements    []model.StockMovement
	reservations map[string]*model.StockReservation
	minQuantity  map[string]float64 // product_id -> reorder threshold, for low-stock listing
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		levels:       make(map[string]*model.StockLevel),
		reservations: make(map[string]*model.StockReservation),
		minQuantity:  make(map[string]float64),
	}
}

// SetMinQuantity registers a product's reorder threshold for low-stock queries.
func (r *MemRepository) SetMinQuantity(productID string, min float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minQuantity[productID] = min
}

func levelKey(key model.StockKey) string {
	return fmt.Sprintf("%s|%s|%s|%s", key.TenantID, key.ProductID, key.Variant(), key.WarehouseID)
}

func refKey(key model.StockKey, ref model.Reference) string {
	return fmt.Sprintf("%s|%s|%s", levelKey(key), ref.Type, ref.ID)
}

func (r *MemRepository) getOrCreateLocked(key model.StockKey) *model.StockLevel {
	k := levelKey(key)
	if l, ok := r.levels[k]; ok {
		return l
	}
	l := &model.StockLevel{
		ID:          uuid.New().String(),
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		VariantID:   key.VariantID,
		WarehouseID: key.WarehouseID,
		UpdatedAt:   time.Now(),
	}
	r.levels[k] = l
	return l
}

func (r *MemRepository) GetLevel(_ context.Context, key model.StockKey) (*model.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.levels[levelKey(key)]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) FindLevels(_ context.Context, f *dto.LevelFilters) ([]model.StockLevel, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.StockLevel
	for _, l := range r.levels {
		if l.TenantID != f.TenantID {
			continue
		}
		if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
			continue
		}
		if f.ProductID != "" && l.ProductID != f.ProductID {
			continue
		}
		if f.LowStock {
			min := r.minQuantity[l.ProductID]
			if min <= 0 || l.Quantity > min {
				continue
			}
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })

	total := len(out)
	out = paginateLevels(out, f.Page, f.PageSize)
	return out, total, nil
}

func paginateLevels(levels []model.StockLevel, page, pageSize int) []model.StockLevel {
	if pageSize <= 0 {
		return levels
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(levels) {
		return nil
	}
	end := start + pageSize
	if end > len(levels) {
		end = len(levels)
	}
	return levels[start:end]
}

func (r *MemRepository) FreezeLevel(_ context.Context, key model.StockKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.levels[levelKey(key)]; ok {
		l.IsFrozen = true
		l.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MemRepository) Reserve(_ context.Context, p *stock.ReserveParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	level := r.getOrCreateLocked(p.Key)
	if level.IsFrozen {
		return stock.ErrInvariantViolation
	}

	if res, ok := r.reservations[refKey(p.Key, p.Reference)]; ok && res.Status == model.ReservationActive {
		return nil
	}

	if !level.CanReserve(p.Quantity) {
		return stock.ErrInsufficientStock
	}

	level.ReservedQuantity += p.Quantity
	level.UpdatedAt = time.Now()

	now := time.Now()
	r.reservations[refKey(p.Key, p.Reference)] = &model.StockReservation{
		ID:            uuid.New().String(),
		TenantID:      p.Key.TenantID,
		ProductID:     p.Key.ProductID,
		VariantID:     p.Key.VariantID,
		WarehouseID:   p.Key.WarehouseID,
		ReferenceType: p.Reference.Type,
		ReferenceID:   p.Reference.ID,
		Quantity:      p.Quantity,
		Status:        model.ReservationActive,
		ExpiresAt:     p.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return nil
}

func (r *MemRepository) Deduct(_ context.Context, p *stock.DeductParams) (*model.StockMovement, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level := r.getOrCreateLocked(p.Key)
	if level.IsFrozen {
		return nil, false, stock.ErrInvariantViolation
	}

	if existing := r.movementByReferenceLocked(p.Key, p.Reference); existing != nil {
		if r.movementByReferenceLocked(p.Key, p.Reference.Reversal()) != nil {
			// The earlier deduction was compensated by a rollback. A replay
			// cannot be treated as already applied.
			return nil, false, stock.ErrReferenceReversed
		}
		clone := *existing
		return &clone, false, nil
	}

	if level.Quantity < p.Quantity {
		return nil, false, stock.ErrInsufficientStock
	}

	consumed := 0.0
	if res, ok := r.reservations[refKey(p.Key, p.Reference)]; ok && res.Status == model.ReservationActive {
		consumed = math.Min(res.Quantity, p.Quantity)
		if p.Quantity >= res.Quantity {
			res.Status = model.ReservationConsumed
		} else {
			// Partial fulfillment: the remainder of the hold stays active and
			// releasable.
			res.Quantity -= consumed
		}
		res.UpdatedAt = time.Now()
	}

	now := time.Now()
	before := level.Quantity
	level.Quantity -= p.Quantity
	// Clamped to the new on-hand so direct deductions cannot leave
	// reserved > quantity behind.
	level.ReservedQuantity = math.Min(math.Max(0, level.ReservedQuantity-consumed), level.Quantity)
	level.LastMovementAt = &now
	level.UpdatedAt = now

	movement := model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       p.Key.TenantID,
		ProductID:      p.Key.ProductID,
		VariantID:      p.Key.VariantID,
		WarehouseID:    p.Key.WarehouseID,
		Type:           model.MovementOut,
		Quantity:       -p.Quantity,
		QuantityBefore: before,
		QuantityAfter:  level.Quantity,
		UnitCost:       p.UnitCost,
		ReferenceType:  p.Reference.Type,
		ReferenceID:    p.Reference.ID,
		Notes:          p.Notes,
		Metadata:       p.Metadata,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
	}
	r.movements = append(r.movements, movement)
	return &movement, true, nil
}

func (r *MemRepository) Release(_ context.Context, p *stock.ReleaseParams) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level, ok := r.levels[levelKey(p.Key)]
	if !ok {
		return 0, nil
	}

	res, ok := r.reservations[refKey(p.Key, p.Reference)]
	if !ok || res.Status != model.ReservationActive {
		return 0, nil
	}

	// Only what this reference actually holds may come off the level; an
	// oversized release must not strip other references' holds.
	toRelease := math.Min(p.Quantity, res.Quantity)
	released := math.Min(toRelease, level.ReservedQuantity)
	level.ReservedQuantity = math.Max(0, level.ReservedQuantity-toRelease)
	level.UpdatedAt = time.Now()

	if p.Quantity >= res.Quantity {
		res.Status = model.ReservationReleased
	} else {
		res.Quantity -= toRelease
	}
	res.UpdatedAt = time.Now()
	return released, nil
}

func (r *MemRepository) AdjustWithMovement(_ context.Context, p *stock.AdjustParams) (*model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level := r.getOrCreateLocked(p.Key)
	if level.IsFrozen {
		return nil, stock.ErrInvariantViolation
	}

	// Idempotent by reference, same as Deduct.
	if p.Reference.ID != "" {
		if existing := r.movementByReferenceLocked(p.Key, p.Reference); existing != nil {
			clone := *existing
			return &clone, nil
		}
	}

	newQty := level.Quantity + p.QuantityChange
	if newQty < 0 {
		return nil, stock.ErrInsufficientStock
	}

	if p.QuantityChange > 0 && p.UnitCost != nil && newQty > 0 {
		level.AverageCost = (level.AverageCost*level.Quantity + *p.UnitCost*p.QuantityChange) / newQty
	}

	now := time.Now()
	before := level.Quantity
	level.Quantity = newQty
	level.LastMovementAt = &now
	level.UpdatedAt = now

	movementType := p.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}

	movement := model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       p.Key.TenantID,
		ProductID:      p.Key.ProductID,
		VariantID:      p.Key.VariantID,
		WarehouseID:    p.Key.WarehouseID,
		Type:           movementType,
		Quantity:       p.QuantityChange,
		QuantityBefore: before,
		QuantityAfter:  newQty,
		UnitCost:       p.UnitCost,
		ReferenceType:  p.Reference.Type,
		ReferenceID:    p.Reference.ID,
		Notes:          p.Notes,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
	}
	r.movements = append(r.movements, movement)
	return &movement, nil
}

func (r *MemRepository) TransferWithMovements(_ context.Context, p *stock.TransferParams) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sourceKey := p.Key
	targetKey := p.Key
	targetKey.WarehouseID = p.TargetWarehouseID

	source := r.getOrCreateLocked(sourceKey)
	target := r.getOrCreateLocked(targetKey)

	if source.IsFrozen || target.IsFrozen {
		return nil, stock.ErrInvariantViolation
	}
	if source.Available() < p.Quantity {
		return nil, stock.ErrInsufficientStock
	}

	now := time.Now()
	sourceBefore := source.Quantity
	targetBefore := target.Quantity
	source.Quantity -= p.Quantity
	target.Quantity += p.Quantity
	source.LastMovementAt = &now
	target.LastMovementAt = &now
	source.UpdatedAt = now
	target.UpdatedAt = now

	unitCost := source.AverageCost
	movements := []model.StockMovement{
		{
			ID: uuid.New().String(), TenantID: sourceKey.TenantID, ProductID: sourceKey.ProductID,
			VariantID: sourceKey.VariantID, WarehouseID: sourceKey.WarehouseID,
			Type: model.MovementTransfer, Quantity: -p.Quantity,
			QuantityBefore: sourceBefore, QuantityAfter: source.Quantity,
			UnitCost: &unitCost, ReferenceType: p.Reference.Type, ReferenceID: p.Reference.ID,
			Notes: p.Notes, CreatedBy: p.CreatedBy, CreatedAt: now,
		},
		{
			ID: uuid.New().String(), TenantID: targetKey.TenantID, ProductID: targetKey.ProductID,
			VariantID: targetKey.VariantID, WarehouseID: targetKey.WarehouseID,
			Type: model.MovementTransfer, Quantity: p.Quantity,
			QuantityBefore: targetBefore, QuantityAfter: target.Quantity,
			UnitCost: &unitCost, ReferenceType: p.Reference.Type, ReferenceID: p.Reference.ID,
			Notes: p.Notes, CreatedBy: p.CreatedBy, CreatedAt: now,
		},
	}
	r.movements = append(r.movements, movements...)
	return movements, nil
}

func (r *MemRepository) movementByReferenceLocked(key model.StockKey, ref model.Reference) *model.StockMovement {
	for i := range r.movements {
		m := &r.movements[i]
		if m.TenantID == key.TenantID && m.ProductID == key.ProductID &&
			m.WarehouseID == key.WarehouseID && variantOf(m.VariantID) == key.Variant() &&
			m.ReferenceType == ref.Type && m.ReferenceID == ref.ID {
			return m
		}
	}
	return nil
}

func variantOf(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (r *MemRepository) FindMovementByReference(_ context.Context, key model.StockKey, ref model.Reference) (*model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.movementByReferenceLocked(key, ref); m != nil {
		clone := *m
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.StockMovement
	for _, m := range r.movements {
		if m.TenantID != f.TenantID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.VariantID != nil && variantOf(m.VariantID) != *f.VariantID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.MovementType != "" && m.Type != f.MovementType {
			continue
		}
		if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
			continue
		}
		if f.StartDate != nil && m.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && m.CreatedAt.After(*f.EndDate) {
			continue
		}
		out = append(out, m)
	}

	// Newest first; ties broken by insertion order (later insert wins).
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start >= len(out) {
			return nil, total, nil
		}
		end := start + f.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *MemRepository) GetReservation(_ context.Context, key model.StockKey, ref model.Reference) (*model.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.reservations[refKey(key, ref)]; ok {
		clone := *res
		return &clone, nil
	}
	return nil, nil
}

func (r *MemRepository) ExpiredReservations(_ context.Context, now time.Time, limit int) ([]model.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.StockReservation
	for _, res := range r.reservations {
		if res.Status == model.ReservationActive && now.After(res.ExpiresAt) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Movements returns a snapshot of the full ledger, for assertions.
func (r *MemRepository) Movements() []model.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockMovement, len(r.movements))
	copy(out, r.movements)
	return out
}
