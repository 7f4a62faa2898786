package repository

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ConsumptionTotal valor consumido (salidas OUT no anuladas, cantidad × costo) de una variante.
type ConsumptionTotal struct {
	ProductVariantID string
	Quantity         decimal.Decimal
	Value            decimal.Decimal
}

// StockMovementRepository puerto del log append-only de movimientos. No hay Update ni Delete:
// las correcciones se hacen con un movimiento VOID.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// FindVoiding movimiento VOID que compensa a movementID, o nil.
	FindVoiding(ctx context.Context, movementID string) (*entity.StockMovement, error)
	// ListUntil movimientos que afectan la ubicación y variante con CreatedAt <= asOf.
	ListUntil(ctx context.Context, locationID, variantID string, asOf time.Time) ([]*entity.StockMovement, error)
	ListByProductionOrder(ctx context.Context, productionOrderID string) ([]*entity.StockMovement, error)
	// ConsumptionByVariant totales de salidas OUT no anuladas con CreatedAt en [from, to].
	ConsumptionByVariant(ctx context.Context, from, to time.Time) ([]ConsumptionTotal, error)
}
