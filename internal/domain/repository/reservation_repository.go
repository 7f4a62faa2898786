package repository

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReservationRepository puerto de reservas de stock.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.StockReservation) error
	// GetForUpdate bloquea la reserva; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error)
	Update(ctx context.Context, r *entity.StockReservation) error
	// SumActive suma de reservas ACTIVE de la clave, excluyendo las de excludeReferenceID (si no es vacío).
	SumActive(ctx context.Context, locationID, variantID, excludeReferenceID string) (decimal.Decimal, error)
	// ListActiveByReference reservas ACTIVE de un documento para una clave, más antiguas primero.
	ListActiveByReference(ctx context.Context, referenceID, locationID, variantID string) ([]*entity.StockReservation, error)
	// ExpireBefore cancela las reservas ACTIVE con ReservedUntil < now; retorna cuántas.
	ExpireBefore(ctx context.Context, now time.Time) (int, error)
}
