package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del asiento: DRAFT → POSTED → VOIDED (terminal).
const (
	JournalStatusDraft  = "DRAFT"
	JournalStatusPosted = "POSTED"
	JournalStatusVoided = "VOIDED"
)

// JournalEntry asiento contable. Fuera de DRAFT, Σdébito == Σcrédito siempre.
type JournalEntry struct {
	ID              string
	Number          string
	EntryDate       time.Time
	Description     string
	Reference       string
	Source          Reference
	Status          string
	IsAutoGenerated bool
	ReversalOfID    string
	Lines           []JournalLine
	PostedAt        *time.Time
	VoidedAt        *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// JournalLine línea de asiento. Por convención solo uno de Debit/Credit es distinto de cero;
// una línea cero/cero se permite pero no aporta nada.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Totals suma de débitos y créditos del asiento.
func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
