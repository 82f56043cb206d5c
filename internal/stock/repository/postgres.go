package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/internal/stock/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// variantClause appends the null-aware variant predicate to a query.
func variantClause(query string, args []interface{}, variantID *string) (string, []interface{}) {
	if variantID != nil && *variantID != "" {
		query += fmt.Sprintf(" AND variant_id = $%d", len(args)+1)
		args = append(args, *variantID)
	} else {
		query += " AND variant_id IS NULL"
	}
	return query, args
}

func (r *PGRepository) GetLevel(ctx context.Context, key model.StockKey) (*model.StockLevel, error) {
	query := `SELECT * FROM stock_levels WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3`
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID}
	query, args = variantClause(query, args, key.VariantID)

	var level model.StockLevel
	err := r.DB.GetContext(ctx, &level, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// lockLevelTx loads the stock level row FOR UPDATE, lazily creating it when
// create is set. Returns nil when the row is absent and create is false.
func (r *PGRepository) lockLevelTx(ctx context.Context, tx *sqlx.Tx, key model.StockKey, create bool) (*model.StockLevel, error) {
	query := `SELECT * FROM stock_levels WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3`
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID}
	query, args = variantClause(query, args, key.VariantID)
	query += ` FOR UPDATE`

	var level model.StockLevel
	err := tx.GetContext(ctx, &level, query, args...)
	if err == nil {
		return &level, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if !create {
		return nil, nil
	}

	now := time.Now()
	level = model.StockLevel{
		ID:          uuid.New().String(),
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		VariantID:   key.VariantID,
		WarehouseID: key.WarehouseID,
		UpdatedAt:   now,
	}
	insert := `
        INSERT INTO stock_levels (
            id, tenant_id, product_id, variant_id, warehouse_id,
            quantity, reserved_quantity, average_cost, is_frozen, updated_at
        )
        VALUES (:id, :tenant_id, :product_id, :variant_id, :warehouse_id, 0, 0, 0, false, :updated_at)
        ON CONFLICT (tenant_id, product_id, (COALESCE(variant_id, '')), warehouse_id) DO NOTHING
    `
	if _, err := tx.NamedExecContext(ctx, insert, &level); err != nil {
		return nil, errors.Wrap(err, "failed to create stock level")
	}

	// Re-select: a concurrent creator may have won the conflict.
	if err := tx.GetContext(ctx, &level, query, args...); err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *PGRepository) FindLevels(ctx context.Context, f *dto.LevelFilters) ([]model.StockLevel, int, error) {
	var levels []model.StockLevel
	var count int

	conditions := []string{"sl.tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.WarehouseID != "" {
		conditions = append(conditions, "sl.warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "sl.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LowStock {
		conditions = append(conditions, "sl.quantity <= p.min_quantity AND p.min_quantity > 0")
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	from := "FROM stock_levels sl JOIN products p ON p.id = sl.product_id"

	countQuery := "SELECT count(*) " + from + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT sl.* " + from + whereClause + " ORDER BY sl.updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &levels, args)
	return levels, count, err
}

func (r *PGRepository) FreezeLevel(ctx context.Context, key model.StockKey) error {
	query := `UPDATE stock_levels SET is_frozen = true, updated_at = now() WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3`
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID}
	query, args = variantClause(query, args, key.VariantID)
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *PGRepository) Reserve(ctx context.Context, p *stock.ReserveParams) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	level, err := r.lockLevelTx(ctx, tx, p.Key, true)
	if err != nil {
		return err
	}
	if level.IsFrozen {
		return stock.ErrInvariantViolation
	}

	// Re-reserving the same reference must not double the hold.
	existing, err := r.reservationTx(ctx, tx, p.Key, p.Reference)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == model.ReservationActive {
		return tx.Commit()
	}

	if !level.CanReserve(p.Quantity) {
		return stock.ErrInsufficientStock
	}

	update := `UPDATE stock_levels SET reserved_quantity = reserved_quantity + $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, p.Quantity, time.Now(), level.ID); err != nil {
		return errors.Wrap(err, "failed to raise reserved quantity")
	}

	now := time.Now()
	res := &model.StockReservation{
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
	insert := `
        INSERT INTO stock_reservations (
            id, tenant_id, product_id, variant_id, warehouse_id,
            reference_type, reference_id, quantity, status, expires_at,
            created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :product_id, :variant_id, :warehouse_id,
            :reference_type, :reference_id, :quantity, :status, :expires_at,
            :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insert, res); err != nil {
		return errors.Wrap(err, "failed to insert reservation")
	}

	return tx.Commit()
}

func (r *PGRepository) Deduct(ctx context.Context, p *stock.DeductParams) (*model.StockMovement, bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	level, err := r.lockLevelTx(ctx, tx, p.Key, true)
	if err != nil {
		return nil, false, err
	}
	if level.IsFrozen {
		return nil, false, stock.ErrInvariantViolation
	}

	// Idempotency: a movement for this reference means the deduction already
	// happened. Return it untouched.
	existing, err := r.movementByReferenceTx(ctx, tx, p.Key, p.Reference)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		reversed, err := r.movementByReferenceTx(ctx, tx, p.Key, p.Reference.Reversal())
		if err != nil {
			return nil, false, err
		}
		if reversed != nil {
			// The earlier deduction was compensated by a rollback. A replay
			// cannot be treated as already applied.
			return nil, false, stock.ErrReferenceReversed
		}
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if level.Quantity < p.Quantity {
		return nil, false, stock.ErrInsufficientStock
	}

	// Consume any hold this reference placed earlier, clamped to the deducted
	// quantity so a partial fulfillment keeps the rest of the hold.
	consumed := 0.0
	res, err := r.reservationTx(ctx, tx, p.Key, p.Reference)
	if err != nil {
		return nil, false, err
	}
	if res != nil && res.Status == model.ReservationActive {
		consumed = math.Min(res.Quantity, p.Quantity)
		if p.Quantity >= res.Quantity {
			mark := `UPDATE stock_reservations SET status = $1, updated_at = $2 WHERE id = $3`
			if _, err := tx.ExecContext(ctx, mark, model.ReservationConsumed, time.Now(), res.ID); err != nil {
				return nil, false, errors.Wrap(err, "failed to consume reservation")
			}
		} else {
			// Partial fulfillment: the remainder of the hold stays active and
			// releasable.
			shrink := `UPDATE stock_reservations SET quantity = quantity - $1, updated_at = $2 WHERE id = $3`
			if _, err := tx.ExecContext(ctx, shrink, consumed, time.Now(), res.ID); err != nil {
				return nil, false, errors.Wrap(err, "failed to shrink reservation")
			}
		}
	}

	now := time.Now()
	// Conditional decrement: the quantity guard re-runs inside the lock so two
	// racing deductions can never both pass. Reserved is clamped to the new
	// on-hand so a direct deduction that bypasses holds cannot leave
	// reserved > quantity behind.
	update := `
        UPDATE stock_levels
        SET quantity = quantity - $1,
            reserved_quantity = LEAST(GREATEST(0, reserved_quantity - $2), quantity - $1),
            last_movement_at = $3,
            updated_at = $3
        WHERE id = $4 AND quantity >= $1
    `
	result, err := tx.ExecContext(ctx, update, p.Quantity, consumed, now, level.ID)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to decrement stock level")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		return nil, false, stock.ErrInsufficientStock
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       p.Key.TenantID,
		ProductID:      p.Key.ProductID,
		VariantID:      p.Key.VariantID,
		WarehouseID:    p.Key.WarehouseID,
		Type:           model.MovementOut,
		Quantity:       -p.Quantity,
		QuantityBefore: level.Quantity,
		QuantityAfter:  level.Quantity - p.Quantity,
		UnitCost:       p.UnitCost,
		ReferenceType:  p.Reference.Type,
		ReferenceID:    p.Reference.ID,
		Notes:          p.Notes,
		Metadata:       p.Metadata,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
	}
	if err := insertMovementTx(ctx, tx, movement); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return movement, true, nil
}

func (r *PGRepository) Release(ctx context.Context, p *stock.ReleaseParams) (float64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	level, err := r.lockLevelTx(ctx, tx, p.Key, false)
	if err != nil {
		return 0, err
	}
	if level == nil {
		return 0, tx.Commit()
	}

	res, err := r.reservationTx(ctx, tx, p.Key, p.Reference)
	if err != nil {
		return 0, err
	}
	if res == nil || res.Status != model.ReservationActive {
		// Never-reserved or already settled: releasing is a no-op.
		return 0, tx.Commit()
	}

	// Only what this reference actually holds may come off the level; an
	// oversized release must not strip other references' holds.
	toRelease := math.Min(p.Quantity, res.Quantity)
	released := math.Min(toRelease, level.ReservedQuantity)
	now := time.Now()

	update := `UPDATE stock_levels SET reserved_quantity = GREATEST(0, reserved_quantity - $1), updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, toRelease, now, level.ID); err != nil {
		return 0, errors.Wrap(err, "failed to lower reserved quantity")
	}

	if p.Quantity >= res.Quantity {
		mark := `UPDATE stock_reservations SET status = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, mark, model.ReservationReleased, now, res.ID); err != nil {
			return 0, errors.Wrap(err, "failed to release reservation")
		}
	} else {
		shrink := `UPDATE stock_reservations SET quantity = quantity - $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, shrink, toRelease, now, res.ID); err != nil {
			return 0, errors.Wrap(err, "failed to shrink reservation")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return released, nil
}

func (r *PGRepository) AdjustWithMovement(ctx context.Context, p *stock.AdjustParams) (*model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	level, err := r.lockLevelTx(ctx, tx, p.Key, true)
	if err != nil {
		return nil, err
	}
	if level.IsFrozen {
		return nil, stock.ErrInvariantViolation
	}

	// Adjustments are idempotent by reference like deductions; replayed
	// compensations must not double-apply.
	if p.Reference.ID != "" {
		existing, err := r.movementByReferenceTx(ctx, tx, p.Key, p.Reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	newQty := level.Quantity + p.QuantityChange
	if newQty < 0 {
		return nil, stock.ErrInsufficientStock
	}

	// Weighted average cost on inbound stock with a known unit cost.
	averageCost := level.AverageCost
	if p.QuantityChange > 0 && p.UnitCost != nil && newQty > 0 {
		averageCost = (level.AverageCost*level.Quantity + *p.UnitCost*p.QuantityChange) / newQty
	}

	now := time.Now()
	update := `
        UPDATE stock_levels
        SET quantity = $1, average_cost = $2, last_movement_at = $3, updated_at = $3
        WHERE id = $4
    `
	if _, err := tx.ExecContext(ctx, update, newQty, averageCost, now, level.ID); err != nil {
		return nil, errors.Wrap(err, "failed to adjust stock level")
	}

	movementType := p.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       p.Key.TenantID,
		ProductID:      p.Key.ProductID,
		VariantID:      p.Key.VariantID,
		WarehouseID:    p.Key.WarehouseID,
		Type:           movementType,
		Quantity:       p.QuantityChange,
		QuantityBefore: level.Quantity,
		QuantityAfter:  newQty,
		UnitCost:       p.UnitCost,
		ReferenceType:  p.Reference.Type,
		ReferenceID:    p.Reference.ID,
		Notes:          p.Notes,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
	}
	if err := insertMovementTx(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *PGRepository) TransferWithMovements(ctx context.Context, p *stock.TransferParams) ([]model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sourceKey := p.Key
	targetKey := p.Key
	targetKey.WarehouseID = p.TargetWarehouseID

	// Lock both rows in a stable order so two opposite transfers cannot
	// deadlock.
	first, second := sourceKey, targetKey
	if first.WarehouseID > second.WarehouseID {
		first, second = second, first
	}
	firstLevel, err := r.lockLevelTx(ctx, tx, first, true)
	if err != nil {
		return nil, err
	}
	secondLevel, err := r.lockLevelTx(ctx, tx, second, true)
	if err != nil {
		return nil, err
	}

	source, target := firstLevel, secondLevel
	if first.WarehouseID != sourceKey.WarehouseID {
		source, target = secondLevel, firstLevel
	}

	if source.IsFrozen || target.IsFrozen {
		return nil, stock.ErrInvariantViolation
	}
	// Reserved units stay behind: only freely available stock moves.
	if source.Available() < p.Quantity {
		return nil, stock.ErrInsufficientStock
	}

	now := time.Now()
	update := `UPDATE stock_levels SET quantity = quantity + $1, last_movement_at = $2, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, -p.Quantity, now, source.ID); err != nil {
		return nil, errors.Wrap(err, "failed to decrement source level")
	}
	if _, err := tx.ExecContext(ctx, update, p.Quantity, now, target.ID); err != nil {
		return nil, errors.Wrap(err, "failed to increment target level")
	}

	unitCost := source.AverageCost
	movements := []model.StockMovement{
		{
			ID:             uuid.New().String(),
			TenantID:       sourceKey.TenantID,
			ProductID:      sourceKey.ProductID,
			VariantID:      sourceKey.VariantID,
			WarehouseID:    sourceKey.WarehouseID,
			Type:           model.MovementTransfer,
			Quantity:       -p.Quantity,
			QuantityBefore: source.Quantity,
			QuantityAfter:  source.Quantity - p.Quantity,
			UnitCost:       &unitCost,
			ReferenceType:  p.Reference.Type,
			ReferenceID:    p.Reference.ID,
			Notes:          p.Notes,
			CreatedBy:      p.CreatedBy,
			CreatedAt:      now,
		},
		{
			ID:             uuid.New().String(),
			TenantID:       targetKey.TenantID,
			ProductID:      targetKey.ProductID,
			VariantID:      targetKey.VariantID,
			WarehouseID:    targetKey.WarehouseID,
			Type:           model.MovementTransfer,
			Quantity:       p.Quantity,
			QuantityBefore: target.Quantity,
			QuantityAfter:  target.Quantity + p.Quantity,
			UnitCost:       &unitCost,
			ReferenceType:  p.Reference.Type,
			ReferenceID:    p.Reference.ID,
			Notes:          p.Notes,
			CreatedBy:      p.CreatedBy,
			CreatedAt:      now,
		},
	}
	for i := range movements {
		if err := insertMovementTx(ctx, tx, &movements[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *PGRepository) FindMovementByReference(ctx context.Context, key model.StockKey, ref model.Reference) (*model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := r.movementByReferenceTx(ctx, tx, key, ref)
	if err != nil {
		return nil, err
	}
	return m, tx.Commit()
}

func (r *PGRepository) movementByReferenceTx(ctx context.Context, tx *sqlx.Tx, key model.StockKey, ref model.Reference) (*model.StockMovement, error) {
	query := `
        SELECT * FROM stock_movements
        WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3
          AND reference_type = $4 AND reference_id = $5
    `
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID, ref.Type, ref.ID}
	query, args = variantClause(query, args, key.VariantID)
	query += ` ORDER BY created_at ASC LIMIT 1`

	var movement model.StockMovement
	err := tx.GetContext(ctx, &movement, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var movements []model.StockMovement
	var count int

	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.VariantID != nil {
		if *f.VariantID == "" {
			conditions = append(conditions, "variant_id IS NULL")
		} else {
			conditions = append(conditions, "variant_id = :variant_id")
			args["variant_id"] = *f.VariantID
		}
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.MovementType
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &movements, args)
	return movements, count, err
}

func (r *PGRepository) GetReservation(ctx context.Context, key model.StockKey, ref model.Reference) (*model.StockReservation, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := r.reservationTx(ctx, tx, key, ref)
	if err != nil {
		return nil, err
	}
	return res, tx.Commit()
}

func (r *PGRepository) reservationTx(ctx context.Context, tx *sqlx.Tx, key model.StockKey, ref model.Reference) (*model.StockReservation, error) {
	query := `
        SELECT * FROM stock_reservations
        WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3
          AND reference_type = $4 AND reference_id = $5
    `
	args := []interface{}{key.TenantID, key.ProductID, key.WarehouseID, ref.Type, ref.ID}
	query, args = variantClause(query, args, key.VariantID)
	query += ` ORDER BY created_at DESC LIMIT 1`

	var res model.StockReservation
	err := tx.GetContext(ctx, &res, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) ExpiredReservations(ctx context.Context, now time.Time, limit int) ([]model.StockReservation, error) {
	query := `
        SELECT * FROM stock_reservations
        WHERE status = $1 AND expires_at < $2
        ORDER BY expires_at ASC
        LIMIT $3
    `
	var reservations []model.StockReservation
	err := r.DB.SelectContext(ctx, &reservations, query, model.ReservationActive, now, limit)
	return reservations, err
}

// insertMovementTx writes one immutable ledger row. The before/after/delta
// arithmetic is re-checked here; a mismatch must never reach the table.
func insertMovementTx(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	if math.Abs((m.QuantityAfter-m.QuantityBefore)-m.Quantity) > 1e-9 {
		return stock.ErrInvariantViolation
	}

	query := `
        INSERT INTO stock_movements (
            id, tenant_id, product_id, variant_id, warehouse_id,
            type, quantity, quantity_before, quantity_after, unit_cost,
            reference_type, reference_id, notes, metadata, created_by, created_at
        )
        VALUES (
            :id, :tenant_id, :product_id, :variant_id, :warehouse_id,
            :type, :quantity, :quantity_before, :quantity_after, :unit_cost,
            :reference_type, :reference_id, :notes, :metadata, :created_by, :created_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, m)
	return errors.Wrap(err, "failed to insert stock movement")
}
