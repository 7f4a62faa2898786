package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReserveInput solicitud de reserva.
type ReserveInput struct {
	ProductVariantID string
	LocationID       string
	Quantity         decimal.Decimal
	ReservedFor      string
	ReferenceID      string
	ReservedUntil    *time.Time
}

func (in ReserveInput) validate() error {
	if in.ProductVariantID == "" || in.LocationID == "" || in.ReferenceID == "" || !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	switch in.ReservedFor {
	case entity.ReservedForSalesOrder, entity.ReservedForProductionOrder, entity.ReservedForTransferOrder:
		return nil
	}
	return domain.ErrInvalidInput
}

// ReservationManager reservas de stock: retienen disponibilidad sin tocar la cantidad física.
type ReservationManager struct {
	tx     repository.TxRunner
	ledger *StockLedger
	log    zerolog.Logger
	now    func() time.Time
}

// NewReservationManager construye el gestor de reservas.
func NewReservationManager(tx repository.TxRunner, ledger *StockLedger, log zerolog.Logger) *ReservationManager {
	return &ReservationManager{
		tx:     tx,
		ledger: ledger,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ReserveInTx bloquea la fila de saldo y crea la reserva si el disponible alcanza.
// Dos reservas concurrentes sobre la misma fila se serializan por el bloqueo.
func (m *ReservationManager) ReserveInTx(ctx context.Context, uow repository.UnitOfWork, in ReserveInput) (*entity.StockReservation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := m.ledger.ValidateAndLockInTx(ctx, uow, in.LocationID, in.ProductVariantID, in.Quantity); err != nil {
		return nil, err
	}
	return m.create(ctx, uow, in, in.Quantity)
}

// Reserve variante con transacción propia.
func (m *ReservationManager) Reserve(ctx context.Context, in ReserveInput) (*entity.StockReservation, error) {
	var res *entity.StockReservation
	err := m.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = m.ReserveInTx(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.log.Info().
		Str("reservation_id", res.ID).
		Str("reference_id", res.ReferenceID).
		Str("quantity", res.Quantity.String()).
		Msg("reserva creada")
	return res, nil
}

// ReserveUpToInTx reserva min(disponible, cantidad) y retorna lo que faltó.
// Sin disponible no crea reserva (nil) y el faltante es la cantidad completa.
func (m *ReservationManager) ReserveUpToInTx(ctx context.Context, uow repository.UnitOfWork, in ReserveInput) (*entity.StockReservation, decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return nil, decimal.Zero, err
	}
	a, err := m.ledger.LockAvailabilityInTx(ctx, uow, in.LocationID, in.ProductVariantID, "")
	if err != nil {
		return nil, decimal.Zero, err
	}
	qty := decimal.Min(a.Available, in.Quantity)
	if !qty.IsPositive() {
		return nil, in.Quantity, nil
	}
	res, err := m.create(ctx, uow, in, qty)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return res, in.Quantity.Sub(qty), nil
}

// ReserveUpTo variante con transacción propia.
func (m *ReservationManager) ReserveUpTo(ctx context.Context, in ReserveInput) (*entity.StockReservation, decimal.Decimal, error) {
	var (
		res       *entity.StockReservation
		shortfall decimal.Decimal
	)
	err := m.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, shortfall, err = m.ReserveUpToInTx(ctx, uow, in)
		return err
	})
	return res, shortfall, err
}

func (m *ReservationManager) create(ctx context.Context, uow repository.UnitOfWork, in ReserveInput, qty decimal.Decimal) (*entity.StockReservation, error) {
	now := m.now()
	res := &entity.StockReservation{
		ID:               uuid.New().String(),
		ProductVariantID: in.ProductVariantID,
		LocationID:       in.LocationID,
		Quantity:         qty,
		Status:           entity.ReservationStatusActive,
		ReservedFor:      in.ReservedFor,
		ReferenceID:      in.ReferenceID,
		ReservedUntil:    in.ReservedUntil,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uow.Reservations().Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (m *ReservationManager) lockActive(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.StockReservation, error) {
	res, err := uow.Reservations().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("reserva %s: %w", id, domain.ErrNotFound)
	}
	if !res.IsActive() {
		return nil, fmt.Errorf("reserva %s en estado %s: %w", id, res.Status, domain.ErrInvalidStatus)
	}
	return res, nil
}

// FulfillInTx consume qty de la reserva. Un consumo parcial reduce la cantidad retenida;
// consumir el total (o más) la deja FULFILLED.
func (m *ReservationManager) FulfillInTx(ctx context.Context, uow repository.UnitOfWork, id string, qty decimal.Decimal) (*entity.StockReservation, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	res, err := m.lockActive(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	m.consume(res, qty)
	if err := uow.Reservations().Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Fulfill variante con transacción propia.
func (m *ReservationManager) Fulfill(ctx context.Context, id string, qty decimal.Decimal) (*entity.StockReservation, error) {
	var res *entity.StockReservation
	err := m.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = m.FulfillInTx(ctx, uow, id, qty)
		return err
	})
	return res, err
}

// FulfillByReferenceInTx consume qty de las reservas activas del documento para la clave,
// de la más antigua a la más nueva. Lo que no cubran las reservas se ignora.
func (m *ReservationManager) FulfillByReferenceInTx(ctx context.Context, uow repository.UnitOfWork, referenceID, locationID, variantID string, qty decimal.Decimal) error {
	if referenceID == "" || !qty.IsPositive() {
		return nil
	}
	list, err := uow.Reservations().ListActiveByReference(ctx, referenceID, locationID, variantID)
	if err != nil {
		return err
	}
	remaining := qty
	for _, res := range list {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(res.Quantity, remaining)
		m.consume(res, take)
		if err := uow.Reservations().Update(ctx, res); err != nil {
			return err
		}
		remaining = remaining.Sub(take)
	}
	return nil
}

func (m *ReservationManager) consume(res *entity.StockReservation, qty decimal.Decimal) {
	res.UpdatedAt = m.now()
	if qty.GreaterThanOrEqual(res.Quantity) {
		res.Status = entity.ReservationStatusFulfilled
		return
	}
	res.Quantity = res.Quantity.Sub(qty)
}

// CancelInTx libera la reserva (ACTIVE → CANCELLED).
func (m *ReservationManager) CancelInTx(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.StockReservation, error) {
	res, err := m.lockActive(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	res.Status = entity.ReservationStatusCancelled
	res.UpdatedAt = m.now()
	if err := uow.Reservations().Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel variante con transacción propia.
func (m *ReservationManager) Cancel(ctx context.Context, id string) (*entity.StockReservation, error) {
	var res *entity.StockReservation
	err := m.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = m.CancelInTx(ctx, uow, id)
		return err
	})
	return res, err
}

// ExpireStaleReservations cancela las reservas activas vencidas. La invoca el barrido periódico.
func (m *ReservationManager) ExpireStaleReservations(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := m.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		n, err = uow.Reservations().ExpireBefore(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.log.Info().Int("expired", n).Msg("reservas vencidas liberadas")
	}
	return n, nil
}
