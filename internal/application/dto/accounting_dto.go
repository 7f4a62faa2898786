package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLineRequest línea de un asiento manual. Exactamente uno de debit/credit es positivo.
type JournalLineRequest struct {
	AccountID   string          `json:"account_id" validate:"required"`
	Description string          `json:"description" validate:"max=200"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateJournalRequest body para POST /api/journals.
type CreateJournalRequest struct {
	EntryDate   time.Time            `json:"entry_date" validate:"required"`
	Description string               `json:"description" validate:"max=500"`
	Reference   string               `json:"reference" validate:"max=100"`
	Lines       []JournalLineRequest `json:"lines" validate:"required,min=2,dive"`
	Post        bool                 `json:"post"`
}

// ReverseJournalRequest body para POST /api/journals/:id/reverse. Sin fecha usa la actual.
type ReverseJournalRequest struct {
	EntryDate *time.Time `json:"entry_date,omitempty"`
}

// JournalLineResponse línea de un asiento.
type JournalLineResponse struct {
	AccountID   string          `json:"account_id"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse salida de un asiento.
type JournalEntryResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	EntryDate       time.Time             `json:"entry_date"`
	Description     string                `json:"description"`
	Reference       string                `json:"reference,omitempty"`
	ReferenceType   string                `json:"reference_type"`
	ReferenceID     string                `json:"reference_id,omitempty"`
	Status          string                `json:"status"`
	IsAutoGenerated bool                  `json:"is_auto_generated"`
	ReversalOfID    string                `json:"reversal_of_id,omitempty"`
	PostedAt        *time.Time            `json:"posted_at,omitempty"`
	VoidedAt        *time.Time            `json:"voided_at,omitempty"`
	Lines           []JournalLineResponse `json:"lines"`
	TotalDebit      decimal.Decimal       `json:"total_debit"`
	TotalCredit     decimal.Decimal       `json:"total_credit"`
}

// AccountRequest body para crear una cuenta.
type AccountRequest struct {
	Code     string `json:"code" validate:"required,max=20"`
	Name     string `json:"name" validate:"required,max=200"`
	Type     string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category string `json:"category" validate:"max=50"`
}

// RenameAccountRequest body para PUT /api/accounts/:id.
type RenameAccountRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=50"`
}

// ChangeAccountCodeRequest body para PUT /api/accounts/:id/code.
type ChangeAccountCodeRequest struct {
	Code string `json:"code" validate:"required,max=20"`
}

// AccountResponse salida de una cuenta.
type AccountResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}

// AccountBalanceResponse saldo de una cuenta según su lado normal.
type AccountBalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	From      *time.Time      `json:"from,omitempty"`
	To        *time.Time      `json:"to,omitempty"`
}

// PeriodRequest body para abrir o cerrar un mes fiscal.
type PeriodRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// DateRangeQuery rango de fechas de los reportes (YYYY-MM-DD).
type DateRangeQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ReportRowResponse fila de un reporte por cuenta. Balance firmado según la naturaleza de la cuenta.
type ReportRowResponse struct {
	AccountID string          `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Category  string          `json:"category,omitempty"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// TrialBalanceRowResponse fila del balance de prueba con el saldo en su columna.
type TrialBalanceRowResponse struct {
	ReportRowResponse
	DebitBalance  decimal.Decimal `json:"debit_balance"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

// TrialBalanceResponse balance de prueba.
type TrialBalanceResponse struct {
	Rows        []TrialBalanceRowResponse `json:"rows"`
	TotalDebit  decimal.Decimal           `json:"total_debit"`
	TotalCredit decimal.Decimal           `json:"total_credit"`
}

// IncomeStatementResponse estado de resultados.
type IncomeStatementResponse struct {
	Revenue      []ReportRowResponse `json:"revenue"`
	Expenses     []ReportRowResponse `json:"expenses"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	TotalExpense decimal.Decimal     `json:"total_expense"`
	NetIncome    decimal.Decimal     `json:"net_income"`
}

// BalanceSheetResponse balance general a una fecha.
type BalanceSheetResponse struct {
	AsOf             time.Time           `json:"as_of"`
	Assets           []ReportRowResponse `json:"assets"`
	Liabilities      []ReportRowResponse `json:"liabilities"`
	Equity           []ReportRowResponse `json:"equity"`
	CurrentEarnings  decimal.Decimal     `json:"current_earnings"`
	TotalAssets      decimal.Decimal     `json:"total_assets"`
	TotalLiabilities decimal.Decimal     `json:"total_liabilities"`
	TotalEquity      decimal.Decimal     `json:"total_equity"`
}

// AsOfQuery fecha de corte del balance general (YYYY-MM-DD); vacío es hoy.
type AsOfQuery struct {
	AsOf string `query:"as_of" validate:"omitempty,datetime=2006-01-02"`
}
