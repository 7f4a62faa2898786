package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var _ repository.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("github.com/jhoicas/manufactura-erp/internal/infrastructure/postgres")

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// La espera por bloqueos la acota lock_timeout, fijado por PoolConfig en cada conexión.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los fallos de contención se devuelven envueltos en domain.ErrContention.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.tx")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", translate(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewUnitOfWork(tx)); err != nil {
		return translateTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", translate(err))
	}
	return nil
}

// translateTxError los repos envuelven con %w; aquí se reconoce la contención aunque venga anidada.
func translateTxError(err error) error {
	if isContention(err) {
		return translate(err)
	}
	return err
}

// unitOfWork repositorios atados a un mismo Querier (tx o pool).
type unitOfWork struct {
	q Querier
}

// NewUnitOfWork agrupa los repositorios sobre q. Con el pool sirve para lecturas sin transacción.
func NewUnitOfWork(q Querier) repository.UnitOfWork {
	return &unitOfWork{q: q}
}

func (u *unitOfWork) Balances() repository.InventoryBalanceRepository {
	return NewBalanceRepository(u.q)
}
func (u *unitOfWork) Movements() repository.StockMovementRepository {
	return NewStockMovementRepository(u.q)
}
func (u *unitOfWork) Reservations() repository.ReservationRepository {
	return NewReservationRepository(u.q)
}
func (u *unitOfWork) Batches() repository.BatchRepository     { return NewBatchRepository(u.q) }
func (u *unitOfWork) Products() repository.ProductRepository   { return NewProductRepository(u.q) }
func (u *unitOfWork) Accounts() repository.AccountRepository   { return NewAccountRepository(u.q) }
func (u *unitOfWork) Journals() repository.JournalRepository   { return NewJournalRepository(u.q) }
func (u *unitOfWork) Periods() repository.FiscalPeriodRepository {
	return NewFiscalPeriodRepository(u.q)
}
func (u *unitOfWork) Outbox() repository.OutboxRepository { return NewOutboxRepository(u.q) }

// errNoRows atajo para el patrón nil, nil de las lecturas.
func errNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
