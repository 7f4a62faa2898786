package accounting

import (
	"context"
	"fmt"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	domacc "github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AutoJournal genera el asiento contable de cada movimiento de stock que cambia el valor del inventario.
type AutoJournal struct {
	tx     repository.TxRunner
	engine *JournalEngine
	codes  domacc.AccountCodes
	cache  *AccountCodeCache
	log    zerolog.Logger
}

// NewAutoJournal construye el servicio de mapeo automático.
func NewAutoJournal(
	tx repository.TxRunner,
	engine *JournalEngine,
	codes domacc.AccountCodes,
	cache *AccountCodeCache,
	log zerolog.Logger,
) *AutoJournal {
	return &AutoJournal{tx: tx, engine: engine, codes: codes, cache: cache, log: log}
}

// RecordInventoryMovementInTx crea y contabiliza el asiento del movimiento en la transacción del caller.
// Retorna nil sin error cuando no corresponde asiento: movimiento sin regla, valor cero, o recepción
// cuyo inventario ya debitó la factura de compra de la misma orden.
// Es idempotente: una segunda llamada con el mismo movimiento retorna el asiento existente.
func (a *AutoJournal) RecordInventoryMovementInTx(ctx context.Context, uow repository.UnitOfWork, m *entity.StockMovement) (*entity.JournalEntry, error) {
	existing, err := uow.Journals().FindBySource(ctx, entity.RefStockMovement, m.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	product, err := uow.Products().GetByID(ctx, m.ProductVariantID)
	if err != nil {
		return nil, err
	}
	kind, mapped := domacc.MapMovement(m, product, a.codes)
	if len(mapped) == 0 {
		return nil, nil
	}

	lines := make([]LineInput, 0, len(mapped))
	for _, ml := range mapped {
		id, err := a.cache.Resolve(ctx, uow, ml.AccountCode)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineInput{AccountID: id, Description: ml.Description, Debit: ml.Debit, Credit: ml.Credit})
	}

	if kind == domacc.ContextGoodsReceipt && m.PurchaseOrderID != "" {
		billed, err := uow.Journals().PostedDebitExists(ctx, entity.RefPurchaseBill, m.PurchaseOrderID, lines[0].AccountID)
		if err != nil {
			return nil, err
		}
		if billed {
			a.log.Info().
				Str("movement_id", m.ID).
				Str("purchase_order_id", m.PurchaseOrderID).
				Msg("auto-journal: la factura ya debitó inventario, se omite el asiento de recepción")
			return nil, nil
		}
	}

	entry, err := a.engine.CreateInTx(ctx, uow, JournalInput{
		EntryDate:       m.CreatedAt,
		Description:     mapped[0].Description,
		Reference:       m.Reference,
		Source:          entity.MovementRef{MovementID: m.ID},
		Lines:           lines,
		IsAutoGenerated: true,
		AutoPost:        true,
		CreatedBy:       m.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("asiento automático del movimiento %s: %w", m.ID, err)
	}
	return entry, nil
}

// RecordInventoryMovement variante con transacción propia, para movimientos ya confirmados.
func (a *AutoJournal) RecordInventoryMovement(ctx context.Context, movementID string) (*entity.JournalEntry, error) {
	var entry *entity.JournalEntry
	err := a.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		m, err := uow.Movements().GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("movimiento %s: %w", movementID, domain.ErrNotFound)
		}
		entry, err = a.RecordInventoryMovementInTx(ctx, uow, m)
		return err
	})
	return entry, err
}

// ReverseMovementJournalInTx reversa los asientos POSTED del movimiento (anulación de movimiento).
func (a *AutoJournal) ReverseMovementJournalInTx(ctx context.Context, uow repository.UnitOfWork, movementID, userID string) ([]*entity.JournalEntry, error) {
	entries, err := uow.Journals().FindBySource(ctx, entity.RefStockMovement, movementID)
	if err != nil {
		return nil, err
	}
	var out []*entity.JournalEntry
	for _, e := range entries {
		if e.Status != entity.JournalStatusPosted {
			continue
		}
		rev, err := a.engine.ReverseInTx(ctx, uow, e.ID, nil, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}
