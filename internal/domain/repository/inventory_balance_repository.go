package repository

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryBalanceRepository puerto del saldo por (ubicación, variante).
type InventoryBalanceRepository interface {
	// Get lectura sin bloqueo; nil si la fila no existe.
	Get(ctx context.Context, locationID, variantID string) (*entity.InventoryBalance, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE); nil si no existe.
	GetForUpdate(ctx context.Context, locationID, variantID string) (*entity.InventoryBalance, error)
	// Ensure crea la fila en cero si no existe (idempotente), para poder bloquearla.
	Ensure(ctx context.Context, locationID, variantID string) error
	// Increment suma qty, creando la fila si no existe.
	Increment(ctx context.Context, locationID, variantID string, qty decimal.Decimal) error
	// Deduct resta qty; retorna domain.ErrBalanceRowMissing si la fila no existe.
	Deduct(ctx context.Context, locationID, variantID string, qty decimal.Decimal) error
	// SetAverageCost fija el costo promedio de la fila.
	SetAverageCost(ctx context.Context, locationID, variantID string, cost decimal.Decimal) error
	// TotalQuantity stock físico de la variante sumando todas las ubicaciones.
	TotalQuantity(ctx context.Context, variantID string) (decimal.Decimal, error)
	ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryBalance, error)
}
