package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/classmart/inventory-service/internal/alert"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/internal/stock/dto"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/classmart/inventory-service/pkg/search"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const movementIndex = "stock_movements"

// Options tune the engine's locking and reservation behavior.
type Options struct {
	ReservationTTL time.Duration // Default TTL for holds
	LockTTL        time.Duration // Redis lock expiry
	LockRetries    int
	LockRetryDelay time.Duration
	SweepBatchSize int
}

func (o *Options) withDefaults() {
	if o.ReservationTTL <= 0 {
		o.ReservationTTL = 30 * time.Minute
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Second
	}
	if o.LockRetries <= 0 {
		o.LockRetries = 3
	}
	if o.LockRetryDelay <= 0 {
		o.LockRetryDelay = 100 * time.Millisecond
	}
	if o.SweepBatchSize <= 0 {
		o.SweepBatchSize = 200
	}
}

type stockUseCase struct {
	repo     stock.Repository
	resolver stock.ItemResolver
	locker   stock.Locker
	alerts   alert.Evaluator
	es       *search.Client
	logger   logger.ZapLogger
	opts     Options
}

// NewStockUseCase wires the reservation engine. locker, alerts and es may be
// nil: locking is skipped (the repository is still atomic per operation),
// alert evaluation is disabled, and movement indexing is disabled respectively.
func NewStockUseCase(
	repo stock.Repository,
	resolver stock.ItemResolver,
	locker stock.Locker,
	alerts alert.Evaluator,
	es *search.Client,
	log logger.ZapLogger,
	opts Options,
) stock.UseCase {
	opts.withDefaults()
	return &stockUseCase{
		repo:     repo,
		resolver: resolver,
		locker:   locker,
		alerts:   alerts,
		es:       es,
		logger:   log,
		opts:     opts,
	}
}

// tracked resolves the item and reports whether the ledger manages it.
func (uc *stockUseCase) tracked(ctx context.Context, key model.StockKey) (bool, error) {
	item, err := uc.resolver.ResolveItem(ctx, key.TenantID, key.ProductID, key.VariantID)
	if err != nil {
		return false, err
	}
	return item.TracksQuantity, nil
}

func lockKey(key model.StockKey) string {
	k := fmt.Sprintf("lock:stock:%s:%s", key.TenantID, key.ProductID)
	if key.VariantID != nil && *key.VariantID != "" {
		k += ":" + *key.VariantID
	}
	return k + ":" + key.WarehouseID
}

// withLock serializes the read-modify-write against other processes. The
// returned function releases the lock and must be deferred by the caller.
func (uc *stockUseCase) withLock(ctx context.Context, keys ...string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	value := uuid.New().String()
	var held []string
	release := func() {
		for _, k := range held {
			if err := uc.locker.ReleaseLock(ctx, k, value); err != nil {
				uc.logger.Error("failed to release stock lock", zap.String("key", k), zap.Error(err))
			}
		}
	}

	for _, k := range keys {
		acquired := false
		for i := 0; i < uc.opts.LockRetries; i++ {
			ok, err := uc.locker.AcquireLock(ctx, k, value, uc.opts.LockTTL)
			if err != nil {
				uc.logger.Error("failed to acquire stock lock", zap.String("key", k), zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			select {
			case <-ctx.Done():
				release()
				return nil, ctx.Err()
			case <-time.After(uc.opts.LockRetryDelay):
			}
		}
		if !acquired {
			release()
			return nil, stock.ErrLockTimeout
		}
		held = append(held, k)
	}
	return release, nil
}

func (uc *stockUseCase) CheckAvailability(ctx context.Context, key model.StockKey, quantity float64) (bool, error) {
	ok, err := uc.tracked(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		// Untracked items are always available.
		return true, nil
	}

	level, err := uc.repo.GetLevel(ctx, key)
	if err != nil {
		return false, err
	}
	if level == nil {
		return quantity <= 0, nil
	}
	return level.Available() >= quantity, nil
}

func (uc *stockUseCase) Reserve(ctx context.Context, input *dto.ReserveInput) error {
	if input.Quantity <= 0 {
		return errors.New("stock: reserve quantity must be positive")
	}

	ok, err := uc.tracked(ctx, input.Key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	release, err := uc.withLock(ctx, lockKey(input.Key))
	if err != nil {
		return err
	}
	defer release()

	ttl := input.TTL
	if ttl <= 0 {
		ttl = uc.opts.ReservationTTL
	}

	if err := uc.repo.Reserve(ctx, &stock.ReserveParams{
		Key:       input.Key,
		Quantity:  input.Quantity,
		Reference: input.Reference,
		ExpiresAt: time.Now().Add(ttl),
	}); err != nil {
		return err
	}

	uc.logger.Debug("stock reserved",
		zap.String("tenant_id", input.Key.TenantID),
		zap.String("product_id", input.Key.ProductID),
		zap.String("warehouse_id", input.Key.WarehouseID),
		zap.Float64("quantity", input.Quantity),
		zap.String("reference", input.Reference.Type+":"+input.Reference.ID),
	)
	return nil
}

func (uc *stockUseCase) Deduct(ctx context.Context, input *dto.DeductInput) (*model.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New("stock: deduct quantity must be positive")
	}

	ok, err := uc.tracked(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	release, err := uc.withLock(ctx, lockKey(input.Key))
	if err != nil {
		return nil, err
	}
	defer release()

	movement, applied, err := uc.repo.Deduct(ctx, &stock.DeductParams{
		Key:       input.Key,
		Quantity:  input.Quantity,
		Reference: input.Reference,
		UnitCost:  input.UnitCost,
		Notes:     input.Notes,
		Metadata:  input.Metadata,
		CreatedBy: input.CreatedBy,
	})
	if err != nil {
		if errors.Is(err, stock.ErrInsufficientStock) {
			uc.logger.Warn("deduction rejected, insufficient stock",
				zap.String("product_id", input.Key.ProductID),
				zap.String("warehouse_id", input.Key.WarehouseID),
				zap.Float64("quantity", input.Quantity),
			)
		}
		return nil, err
	}

	if !applied {
		// Duplicate reference: nothing moved, return the original movement.
		uc.logger.Info("duplicate deduction reference, returning original movement",
			zap.String("reference", input.Reference.Type+":"+input.Reference.ID),
			zap.String("movement_id", movement.ID),
		)
		return movement, nil
	}

	uc.afterMutation(input.Key, movement)
	return movement, nil
}

func (uc *stockUseCase) Release(ctx context.Context, input *dto.ReleaseInput) error {
	if input.Quantity <= 0 {
		return errors.New("stock: release quantity must be positive")
	}

	ok, err := uc.tracked(ctx, input.Key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	release, err := uc.withLock(ctx, lockKey(input.Key))
	if err != nil {
		return err
	}
	defer release()

	released, err := uc.repo.Release(ctx, &stock.ReleaseParams{
		Key:       input.Key,
		Quantity:  input.Quantity,
		Reference: input.Reference,
	})
	if err != nil {
		return err
	}

	if released > 0 {
		uc.logger.Debug("stock hold released",
			zap.String("product_id", input.Key.ProductID),
			zap.String("warehouse_id", input.Key.WarehouseID),
			zap.Float64("released", released),
			zap.String("reference", input.Reference.Type+":"+input.Reference.ID),
		)
	}
	return nil
}

func (uc *stockUseCase) Balance(ctx context.Context, key model.StockKey) (*dto.Balance, error) {
	level, err := uc.repo.GetLevel(ctx, key)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return &dto.Balance{}, nil
	}

	if err := uc.verifyLevel(ctx, level); err != nil {
		return nil, err
	}

	return &dto.Balance{
		OnHand:    level.Quantity,
		Reserved:  level.ReservedQuantity,
		Available: level.Available(),
	}, nil
}

func (uc *stockUseCase) History(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *stockUseCase) ListLowStock(ctx context.Context, tenantID, warehouseID string, page, pageSize int) ([]model.StockLevel, int, error) {
	return uc.repo.FindLevels(ctx, &dto.LevelFilters{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		LowStock:    true,
		Page:        page,
		PageSize:    pageSize,
	})
}

func (uc *stockUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.StockMovement, error) {
	if input.QuantityChange == 0 {
		return nil, errors.New("stock: adjustment must change quantity")
	}

	ok, err := uc.tracked(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	release, err := uc.withLock(ctx, lockKey(input.Key))
	if err != nil {
		return nil, err
	}
	defer release()

	movement, err := uc.repo.AdjustWithMovement(ctx, &stock.AdjustParams{
		Key:            input.Key,
		QuantityChange: input.QuantityChange,
		MovementType:   input.MovementType,
		Reference:      input.Reference,
		UnitCost:       input.UnitCost,
		Notes:          input.Reason,
		CreatedBy:      input.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(input.Key, movement)
	return movement, nil
}

func (uc *stockUseCase) Transfer(ctx context.Context, input *dto.TransferInput) error {
	if input.Quantity <= 0 {
		return errors.New("stock: transfer quantity must be positive")
	}
	if input.TargetWarehouseID == input.Key.WarehouseID {
		return errors.New("stock: transfer requires distinct warehouses")
	}

	ok, err := uc.tracked(ctx, input.Key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	targetKey := input.Key
	targetKey.WarehouseID = input.TargetWarehouseID

	// Both rows get locked; stable order avoids deadlocking against the
	// opposite transfer.
	first, second := lockKey(input.Key), lockKey(targetKey)
	if first > second {
		first, second = second, first
	}
	release, err := uc.withLock(ctx, first, second)
	if err != nil {
		return err
	}
	defer release()

	movements, err := uc.repo.TransferWithMovements(ctx, &stock.TransferParams{
		Key:               input.Key,
		TargetWarehouseID: input.TargetWarehouseID,
		Quantity:          input.Quantity,
		Reference:         input.Reference,
		Notes:             input.Reason,
		CreatedBy:         input.CreatedBy,
	})
	if err != nil {
		return err
	}

	for i := range movements {
		key := input.Key
		key.WarehouseID = movements[i].WarehouseID
		uc.afterMutation(key, &movements[i])
	}
	return nil
}

func (uc *stockUseCase) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := uc.repo.ExpiredReservations(ctx, now, uc.opts.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range expired {
		res := &expired[i]
		input := &dto.ReleaseInput{
			Key: model.StockKey{
				TenantID:    res.TenantID,
				ProductID:   res.ProductID,
				VariantID:   res.VariantID,
				WarehouseID: res.WarehouseID,
			},
			Quantity:  res.Quantity,
			Reference: model.Reference{Type: res.ReferenceType, ID: res.ReferenceID},
		}
		if err := uc.Release(ctx, input); err != nil {
			uc.logger.Error("failed to release expired reservation",
				zap.String("reservation_id", res.ID),
				zap.Error(err),
			)
			continue
		}
		swept++
		uc.logger.Info("released expired reservation",
			zap.String("reservation_id", res.ID),
			zap.String("reference", res.ReferenceType+":"+res.ReferenceID),
			zap.Float64("quantity", res.Quantity),
			zap.Time("expired_at", res.ExpiresAt),
		)
	}
	return swept, nil
}

// verifyLevel enforces the read-time invariant. A violated level is frozen:
// it refuses further mutation until an operator intervenes, the rest of the
// system keeps running.
func (uc *stockUseCase) verifyLevel(ctx context.Context, level *model.StockLevel) error {
	if level.IsFrozen {
		return stock.ErrInvariantViolation
	}
	if level.ReservedQuantity > level.Quantity+1e-9 {
		uc.logger.Error("stock level invariant violated, freezing",
			zap.String("level_id", level.ID),
			zap.Float64("quantity", level.Quantity),
			zap.Float64("reserved", level.ReservedQuantity),
		)
		if err := uc.repo.FreezeLevel(ctx, model.StockKey{
			TenantID:    level.TenantID,
			ProductID:   level.ProductID,
			VariantID:   level.VariantID,
			WarehouseID: level.WarehouseID,
		}); err != nil {
			uc.logger.Error("failed to freeze stock level", zap.String("level_id", level.ID), zap.Error(err))
		}
		return stock.ErrInvariantViolation
	}
	return nil
}

// afterMutation runs the reactive side effects that stay outside the balance
// transaction: alert evaluation and audit indexing. Both are best effort.
func (uc *stockUseCase) afterMutation(key model.StockKey, movement *model.StockMovement) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		level, err := uc.repo.GetLevel(ctx, key)
		if err != nil || level == nil {
			return
		}
		if uc.alerts != nil {
			if err := uc.alerts.Evaluate(ctx, level); err != nil {
				uc.logger.Error("alert evaluation failed",
					zap.String("product_id", key.ProductID),
					zap.String("warehouse_id", key.WarehouseID),
					zap.Error(err),
				)
			}
		}
		if uc.es != nil && movement != nil {
			if err := uc.es.Index(ctx, movementIndex, movement.ID, movement); err != nil {
				uc.logger.Error("failed to index stock movement", zap.String("movement_id", movement.ID), zap.Error(err))
			}
		}
	}()
}
