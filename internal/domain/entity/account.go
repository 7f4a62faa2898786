package entity

import "time"

// Tipos de cuenta contable.
const (
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeRevenue   = "REVENUE"
	AccountTypeExpense   = "EXPENSE"
)

// Account nodo del plan de cuentas. Code e identidad quedan congelados cuando la cuenta
// tiene líneas contabilizadas; tampoco puede eliminarse.
type Account struct {
	ID        string
	Code      string
	Name      string
	Type      string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDebitNormal true para cuentas de naturaleza débito (activo y gasto).
func IsDebitNormal(accountType string) bool {
	return accountType == AccountTypeAsset || accountType == AccountTypeExpense
}

// ValidAccountType verifica el tipo contra el catálogo.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}
