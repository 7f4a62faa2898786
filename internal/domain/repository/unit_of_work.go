package repository

import "context"

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Las operaciones del núcleo lo reciben explícitamente y nunca abren su propia transacción.
type UnitOfWork interface {
	Balances() InventoryBalanceRepository
	Movements() StockMovementRepository
	Reservations() ReservationRepository
	Batches() BatchRepository
	Products() ProductRepository
	Accounts() AccountRepository
	Journals() JournalRepository
	Periods() FiscalPeriodRepository
	Outbox() OutboxRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
// Los fallos de contención (lock timeout, serialización, deadlock) se devuelven como domain.ErrContention.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
