package repository

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountTotals totales contabilizados (solo POSTED) de una cuenta en un rango.
type AccountTotals struct {
	AccountID string
	Code      string
	Name      string
	Type      string
	Category  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// DateRange rango de fechas inclusivo; un extremo nil no acota.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains true si t cae dentro del rango.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// JournalRepository puerto de asientos contables.
type JournalRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, e *entity.JournalEntry) error
	// GetForUpdate bloquea el asiento y carga sus líneas; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.JournalEntry, error)
	GetByID(ctx context.Context, id string) (*entity.JournalEntry, error)
	UpdateStatus(ctx context.Context, e *entity.JournalEntry) error
	// FindBySource asientos no anulados con la referencia indicada.
	FindBySource(ctx context.Context, kind entity.ReferenceKind, refID string) ([]*entity.JournalEntry, error)
	// PostedDebitExists true si existe un asiento POSTED de la referencia (tipo + orden de compra)
	// con una línea que debita accountID.
	PostedDebitExists(ctx context.Context, kind entity.ReferenceKind, purchaseOrderID, accountID string) (bool, error)
	// TotalsByAccount totales POSTED por cuenta, filtrados por fecha de asiento.
	TotalsByAccount(ctx context.Context, r DateRange) ([]AccountTotals, error)
	// AccountTotals totales POSTED de una cuenta.
	AccountTotals(ctx context.Context, accountID string, r DateRange) (debit, credit decimal.Decimal, err error)
}
