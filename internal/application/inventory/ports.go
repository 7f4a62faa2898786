package inventory

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

// MovementJournaler puerto hacia el motor contable. Se invoca en la misma transacción de la
// mutación física: o se confirman stock y asiento, o ninguno.
type MovementJournaler interface {
	// RecordInventoryMovementInTx asiento del movimiento (nil si no corresponde). Idempotente por movimiento.
	RecordInventoryMovementInTx(ctx context.Context, uow repository.UnitOfWork, m *entity.StockMovement) (*entity.JournalEntry, error)
	// ReverseMovementJournalInTx reversa los asientos contabilizados del movimiento.
	ReverseMovementJournalInTx(ctx context.Context, uow repository.UnitOfWork, movementID, userID string) ([]*entity.JournalEntry, error)
}
