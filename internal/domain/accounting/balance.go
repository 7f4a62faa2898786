package accounting

import (
	"fmt"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AmountScale decimales con que se almacenan débitos y créditos (NUMERIC(20,6)).
const AmountScale int32 = 6

// FitsScale true si el monto se almacena sin redondeo.
func FitsScale(v decimal.Decimal) bool {
	return v.Equal(v.Round(AmountScale))
}

// NormalBalance saldo firmado según la naturaleza de la cuenta:
// débito − crédito para ASSET/EXPENSE, crédito − débito para LIABILITY/EQUITY/REVENUE.
// Toda derivación de saldos del módulo pasa por aquí.
func NormalBalance(accountType string, debit, credit decimal.Decimal) decimal.Decimal {
	if entity.IsDebitNormal(accountType) {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ValidateLines verifica un conjunto de líneas: al menos una, montos no negativos con a lo sumo
// AmountScale decimales y Σdébito == Σcrédito con igualdad decimal exacta (sin tolerancia).
// El límite de escala garantiza que el asiento sigue cuadrado después de almacenarse.
func ValidateLines(lines []entity.JournalLine) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.AccountID == "" || l.Debit.IsNegative() || l.Credit.IsNegative() {
			return domain.ErrInvalidInput
		}
		if !FitsScale(l.Debit) || !FitsScale(l.Credit) {
			return fmt.Errorf("%w: la cuenta %s supera %d decimales", domain.ErrInvalidInput, l.AccountID, AmountScale)
		}
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !debit.Equal(credit) {
		return &domain.UnbalancedEntryError{Debit: debit, Credit: credit}
	}
	if debit.IsZero() {
		return domain.ErrInvalidInput
	}
	return nil
}

// SwapLines líneas con débito y crédito intercambiados (asiento de reversa).
func SwapLines(lines []entity.JournalLine) []entity.JournalLine {
	out := make([]entity.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = entity.JournalLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		}
	}
	return out
}
