package usecase

import (
	"context"

	"github.com/classmart/inventory-service/internal/fulfillment"
	fdto "github.com/classmart/inventory-service/internal/fulfillment/dto"
	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/internal/stock/dto"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type fulfillmentUseCase struct {
	engine stock.UseCase
	logger logger.ZapLogger
}

func NewFulfillmentUseCase(engine stock.UseCase, log logger.ZapLogger) fulfillment.UseCase {
	return &fulfillmentUseCase{
		engine: engine,
		logger: log,
	}
}

func key(tenantID string, line *fdto.Line) model.StockKey {
	return model.StockKey{
		TenantID:    tenantID,
		ProductID:   line.ProductID,
		VariantID:   line.VariantID,
		WarehouseID: line.WarehouseID,
	}
}

// deductAll applies every line or none. When a line fails, the lines already
// deducted in this call are compensated with inbound movements under the
// reversal of each line's reference; replayed compensations are idempotent,
// and a reversed line refuses later replay instead of reporting success.
func (uc *fulfillmentUseCase) deductAll(ctx context.Context, tenantID, refType, notes string, createdBy *string, lines []fdto.Line) error {
	for i := range lines {
		line := &lines[i]
		_, err := uc.engine.Deduct(ctx, &dto.DeductInput{
			Key:       key(tenantID, line),
			Quantity:  line.Quantity,
			Reference: model.Reference{Type: refType, ID: line.ReferenceID},
			UnitCost:  line.UnitCost,
			Notes:     notes,
			CreatedBy: createdBy,
		})
		if err == nil {
			continue
		}

		uc.logger.Warn("line deduction failed, rolling back applied lines",
			zap.String("reference_type", refType),
			zap.String("reference_id", line.ReferenceID),
			zap.Int("applied_lines", i),
			zap.Error(err),
		)
		for j := 0; j < i; j++ {
			applied := &lines[j]
			reversal := model.Reference{Type: refType, ID: applied.ReferenceID}.Reversal()
			if _, rbErr := uc.engine.Adjust(ctx, &dto.AdjustInput{
				Key:            key(tenantID, applied),
				QuantityChange: applied.Quantity,
				MovementType:   model.MovementIn,
				Reference:      reversal,
				UnitCost:       applied.UnitCost,
				Reason:         notes + " rolled back",
				CreatedBy:      createdBy,
			}); rbErr != nil {
				// The reversal reference stays unused, so a retry of this
				// call can still compensate the line.
				uc.logger.Error("failed to compensate deducted line",
					zap.String("reference_type", reversal.Type),
					zap.String("reference_id", reversal.ID),
					zap.Error(rbErr),
				)
			}
		}
		return errors.Wrapf(err, "line %s", line.ReferenceID)
	}
	return nil
}

func (uc *fulfillmentUseCase) reserveAll(ctx context.Context, tenantID, refType string, lines []fdto.Line) error {
	for i := range lines {
		line := &lines[i]
		err := uc.engine.Reserve(ctx, &dto.ReserveInput{
			Key:       key(tenantID, line),
			Quantity:  line.Quantity,
			Reference: model.Reference{Type: refType, ID: line.ReferenceID},
		})
		if err == nil {
			continue
		}

		// Drop the holds taken so far; release is idempotent so a retry of
		// the whole aggregate is safe.
		for j := 0; j < i; j++ {
			held := &lines[j]
			uc.releaseLine(ctx, tenantID, refType, held)
		}
		return errors.Wrapf(err, "line %s", line.ReferenceID)
	}
	return nil
}

func (uc *fulfillmentUseCase) releaseLine(ctx context.Context, tenantID, refType string, line *fdto.Line) {
	if err := uc.engine.Release(ctx, &dto.ReleaseInput{
		Key:       key(tenantID, line),
		Quantity:  line.Quantity,
		Reference: model.Reference{Type: refType, ID: line.ReferenceID},
	}); err != nil {
		uc.logger.Error("failed to release hold",
			zap.String("reference_type", refType),
			zap.String("reference_id", line.ReferenceID),
			zap.Error(err),
		)
	}
}

func (uc *fulfillmentUseCase) SellPackage(ctx context.Context, input *fdto.PackageSaleInput) error {
	err := uc.deductAll(ctx, input.TenantID, model.RefPackage,
		"package sale "+input.PackageID, input.SoldBy, input.Lines)
	if err != nil {
		return errors.Wrapf(err, "package %s", input.PackageID)
	}

	uc.logger.Info("package sale deducted",
		zap.String("tenant_id", input.TenantID),
		zap.String("package_id", input.PackageID),
		zap.Int("lines", len(input.Lines)),
	)
	return nil
}

func (uc *fulfillmentUseCase) ReserveShipment(ctx context.Context, input *fdto.ShipmentInput) error {
	if err := uc.reserveAll(ctx, input.TenantID, model.RefShipmentItem, input.Lines); err != nil {
		return errors.Wrapf(err, "shipment %s", input.ShipmentID)
	}
	return nil
}

func (uc *fulfillmentUseCase) DispatchShipment(ctx context.Context, input *fdto.ShipmentInput) error {
	err := uc.deductAll(ctx, input.TenantID, model.RefShipmentItem,
		"shipment dispatch "+input.ShipmentID, input.PreparedBy, input.Lines)
	if err != nil {
		return errors.Wrapf(err, "shipment %s", input.ShipmentID)
	}

	uc.logger.Info("shipment dispatched",
		zap.String("tenant_id", input.TenantID),
		zap.String("shipment_id", input.ShipmentID),
		zap.Int("lines", len(input.Lines)),
	)
	return nil
}

func (uc *fulfillmentUseCase) CancelShipment(ctx context.Context, input *fdto.ShipmentInput) error {
	for i := range input.Lines {
		uc.releaseLine(ctx, input.TenantID, model.RefShipmentItem, &input.Lines[i])
	}
	return nil
}

func (uc *fulfillmentUseCase) RecordPOSSale(ctx context.Context, input *fdto.POSSaleInput) error {
	err := uc.deductAll(ctx, input.TenantID, model.RefPOSSaleItem,
		"pos sale "+input.SaleID, input.CashierID, input.Lines)
	if err != nil {
		return errors.Wrapf(err, "pos sale %s", input.SaleID)
	}
	return nil
}

func (uc *fulfillmentUseCase) PlaceOrder(ctx context.Context, input *fdto.OrderInput) error {
	if err := uc.reserveAll(ctx, input.TenantID, model.RefProductOrder, input.Lines); err != nil {
		return errors.Wrapf(err, "order %s", input.OrderID)
	}
	return nil
}

func (uc *fulfillmentUseCase) FulfillOrder(ctx context.Context, input *fdto.OrderInput) error {
	err := uc.deductAll(ctx, input.TenantID, model.RefProductOrder,
		"order fulfillment "+input.OrderID, input.PlacedBy, input.Lines)
	if err != nil {
		return errors.Wrapf(err, "order %s", input.OrderID)
	}
	return nil
}

func (uc *fulfillmentUseCase) CancelOrder(ctx context.Context, input *fdto.OrderInput) error {
	for i := range input.Lines {
		uc.releaseLine(ctx, input.TenantID, model.RefProductOrder, &input.Lines[i])
	}
	return nil
}
