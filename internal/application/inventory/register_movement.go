package inventory

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP genérico a la operación de negocio según el tipo.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*MovementResult, error) {
	switch in.Type {
	case entity.MovementTypePURCHASE, entity.MovementTypeIN:
		if in.UnitCost == nil {
			return nil, domain.ErrInvalidInput
		}
		return uc.ReceiveGoods(ctx, ReceiveGoodsInput{
			LocationID:       firstNonEmpty(in.LocationID, in.ToLocationID),
			ProductVariantID: in.ProductVariantID,
			Quantity:         in.Quantity,
			UnitCost:         *in.UnitCost,
			GoodsReceiptID:   in.GoodsReceiptID,
			PurchaseOrderID:  in.PurchaseOrderID,
			Reference:        in.Reference,
			BatchNumber:      in.BatchNumber,
			ExpiryDate:       in.ExpiryDate,
			UserID:           userID,
		})
	case entity.MovementTypeOUT:
		return uc.IssueStock(ctx, IssueStockInput{
			Lines: []IssueLine{{
				LocationID:       firstNonEmpty(in.LocationID, in.FromLocationID),
				ProductVariantID: in.ProductVariantID,
				Quantity:         in.Quantity,
			}},
			SalesOrderID:      in.SalesOrderID,
			ProductionOrderID: in.ProductionOrderID,
			Reference:         in.Reference,
			UserID:            userID,
		})
	case entity.MovementTypeTRANSFER:
		return uc.TransferStock(ctx, TransferInput{
			FromLocationID:   in.FromLocationID,
			ToLocationID:     in.ToLocationID,
			ProductVariantID: in.ProductVariantID,
			Quantity:         in.Quantity,
			TransferOrderID:  in.TransferOrderID,
			Reference:        in.Reference,
			UserID:           userID,
		})
	case entity.MovementTypeADJUSTMENT:
		return uc.AdjustStock(ctx, AdjustInput{
			LocationID:       in.LocationID,
			ProductVariantID: in.ProductVariantID,
			Quantity:         in.Quantity,
			UnitCost:         in.UnitCost,
			Reference:        in.Reference,
			UserID:           userID,
		})
	}
	return nil, domain.ErrInvalidInput
}

// IssueFromRequest adapta una salida de varias líneas.
func (uc *RegisterMovementUseCase) IssueFromRequest(ctx context.Context, userID string, in dto.IssueStockRequest) (*MovementResult, error) {
	return uc.IssueStock(ctx, IssueStockInput{
		Lines:             issueLines(in.Lines),
		SalesOrderID:      in.SalesOrderID,
		ProductionOrderID: in.ProductionOrderID,
		Reference:         in.Reference,
		UserID:            userID,
	})
}

// ProductionFromRequest adapta el cierre de un lote de producción.
func (uc *RegisterMovementUseCase) ProductionFromRequest(ctx context.Context, userID string, in dto.ProductionRequest) (*MovementResult, error) {
	return uc.CompleteProduction(ctx, ProductionInput{
		ProductionOrderID: in.ProductionOrderID,
		Materials:         issueLines(in.Materials),
		OutputLocationID:  in.OutputLocationID,
		OutputVariantID:   in.OutputVariantID,
		YieldQuantity:     in.YieldQuantity,
		ConversionCost:    in.ConversionCost,
		BatchNumber:       in.BatchNumber,
		ExpiryDate:        in.ExpiryDate,
		Reference:         in.Reference,
		UserID:            userID,
	})
}

// ToResultResponse convierte el resultado al DTO de salida.
func ToResultResponse(res *MovementResult) dto.MovementResultResponse {
	out := dto.MovementResultResponse{
		Movements:  make([]dto.MovementResponse, 0, len(res.Movements)),
		JournalIDs: make([]string, 0, len(res.Journals)),
		UnitCost:   res.UnitCost,
	}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, ToMovementResponse(m))
	}
	for _, j := range res.Journals {
		out.JournalIDs = append(out.JournalIDs, j.ID)
	}
	return out
}

// ToMovementResponse convierte un movimiento al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                m.ID,
		Type:              m.Type,
		ProductVariantID:  m.ProductVariantID,
		FromLocationID:    m.FromLocationID,
		ToLocationID:      m.ToLocationID,
		Quantity:          m.Quantity,
		UnitCost:          m.UnitCost(),
		Reference:         m.Reference,
		BatchID:           m.BatchID,
		SalesOrderID:      m.SalesOrderID,
		ProductionOrderID: m.ProductionOrderID,
		VoidsMovementID:   m.VoidsMovementID,
		CreatedAt:         m.CreatedAt,
	}
}

// ToReservationResponse convierte una reserva al DTO de salida.
func ToReservationResponse(r *entity.StockReservation) *dto.ReservationResponse {
	if r == nil {
		return nil
	}
	return &dto.ReservationResponse{
		ID:               r.ID,
		ProductVariantID: r.ProductVariantID,
		LocationID:       r.LocationID,
		Quantity:         r.Quantity,
		Status:           r.Status,
		ReservedFor:      r.ReservedFor,
		ReferenceID:      r.ReferenceID,
		ReservedUntil:    r.ReservedUntil,
		CreatedAt:        r.CreatedAt,
	}
}

func issueLines(in []dto.IssueLineRequest) []IssueLine {
	out := make([]IssueLine, 0, len(in))
	for _, l := range in {
		out = append(out, IssueLine{LocationID: l.LocationID, ProductVariantID: l.ProductVariantID, Quantity: l.Quantity})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

