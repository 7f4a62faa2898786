// Package memory implementa los puertos del núcleo en memoria (tests y desarrollo local).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store almacén en memoria con semántica transaccional simulada: cada Run trabaja sobre una copia
// del estado y la publica solo si fn retorna nil. Las transacciones se serializan con un mutex global,
// lo que es más estricto que el bloqueo por fila de PostgreSQL.
type Store struct {
	mu    sync.Mutex
	state *state
}

type periodKey struct{ year, month int }

type state struct {
	balances     map[entity.BalanceKey]*entity.InventoryBalance
	movements    []*entity.StockMovement
	reservations map[string]*entity.StockReservation
	resOrder     []string
	batches      map[string]*entity.Batch
	products     map[string]*entity.Product
	accounts     map[string]*entity.Account
	journals     map[string]*entity.JournalEntry
	journalOrder []string
	periods      map[periodKey]*entity.FiscalPeriod
	outbox       map[string]*entity.OutboxEvent
	outboxOrder  []string
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		balances:     make(map[entity.BalanceKey]*entity.InventoryBalance),
		reservations: make(map[string]*entity.StockReservation),
		batches:      make(map[string]*entity.Batch),
		products:     make(map[string]*entity.Product),
		accounts:     make(map[string]*entity.Account),
		journals:     make(map[string]*entity.JournalEntry),
		periods:      make(map[periodKey]*entity.FiscalPeriod),
		outbox:       make(map[string]*entity.OutboxEvent),
	}
}

// Run ejecuta fn sobre una copia del estado; Commit si fn retorna nil, descarta la copia en otro caso.
// Un Run anidado dentro de fn bloquea: las operaciones InTx reciben el UnitOfWork del caller.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &unitOfWork{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.balances {
		b := *v
		c.balances[k] = &b
	}
	// Los movimientos son inmutables: basta copiar el slice.
	c.movements = append([]*entity.StockMovement(nil), st.movements...)
	for k, v := range st.reservations {
		r := *v
		c.reservations[k] = &r
	}
	c.resOrder = append([]string(nil), st.resOrder...)
	for k, v := range st.batches {
		b := *v
		c.batches[k] = &b
	}
	for k, v := range st.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range st.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range st.journals {
		c.journals[k] = cloneEntry(v)
	}
	c.journalOrder = append([]string(nil), st.journalOrder...)
	for k, v := range st.periods {
		p := *v
		c.periods[k] = &p
	}
	for k, v := range st.outbox {
		e := *v
		c.outbox[k] = &e
	}
	c.outboxOrder = append([]string(nil), st.outboxOrder...)
	return c
}

func cloneEntry(e *entity.JournalEntry) *entity.JournalEntry {
	c := *e
	c.Lines = append([]entity.JournalLine(nil), e.Lines...)
	return &c
}

type unitOfWork struct {
	st *state
}

func (u *unitOfWork) Balances() repository.InventoryBalanceRepository { return balanceRepo{u.st} }
func (u *unitOfWork) Movements() repository.StockMovementRepository   { return movementRepo{u.st} }
func (u *unitOfWork) Reservations() repository.ReservationRepository  { return reservationRepo{u.st} }
func (u *unitOfWork) Batches() repository.BatchRepository             { return batchRepo{u.st} }
func (u *unitOfWork) Products() repository.ProductRepository          { return productRepo{u.st} }
func (u *unitOfWork) Accounts() repository.AccountRepository          { return accountRepo{u.st} }
func (u *unitOfWork) Journals() repository.JournalRepository          { return journalRepo{u.st} }
func (u *unitOfWork) Periods() repository.FiscalPeriodRepository      { return periodRepo{u.st} }
func (u *unitOfWork) Outbox() repository.OutboxRepository             { return outboxRepo{u.st} }
