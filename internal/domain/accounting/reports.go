package accounting

import (
	"sort"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReportRow saldo de una cuenta en un reporte.
type ReportRow struct {
	AccountID string
	Code      string
	Name      string
	Type      string
	Category  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal // firmado según naturaleza de la cuenta
}

// TrialBalanceRow fila del balance de comprobación: el neto va a la columna débito o crédito.
type TrialBalanceRow struct {
	ReportRow
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
}

// TrialBalance balance de comprobación.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// IncomeStatement estado de resultados.
type IncomeStatement struct {
	Revenue      []ReportRow
	Expenses     []ReportRow
	TotalRevenue decimal.Decimal
	TotalExpense decimal.Decimal
	NetIncome    decimal.Decimal
}

// BalanceSheet balance general a una fecha. CurrentEarnings es el resultado acumulado no cerrado,
// presentado dentro del patrimonio para que Activo = Pasivo + Patrimonio.
type BalanceSheet struct {
	Assets           []ReportRow
	Liabilities      []ReportRow
	Equity           []ReportRow
	CurrentEarnings  decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}

func toRow(t repository.AccountTotals) ReportRow {
	return ReportRow{
		AccountID: t.AccountID,
		Code:      t.Code,
		Name:      t.Name,
		Type:      t.Type,
		Category:  t.Category,
		Debit:     t.Debit,
		Credit:    t.Credit,
		Balance:   NormalBalance(t.Type, t.Debit, t.Credit),
	}
}

func sortedTotals(totals []repository.AccountTotals) []repository.AccountTotals {
	out := make([]repository.AccountTotals, len(totals))
	copy(out, totals)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// BuildTrialBalance arma el balance de comprobación desde los totales POSTED.
func BuildTrialBalance(totals []repository.AccountTotals) TrialBalance {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, t := range sortedTotals(totals) {
		row := TrialBalanceRow{ReportRow: toRow(t), DebitBalance: decimal.Zero, CreditBalance: decimal.Zero}
		net := t.Debit.Sub(t.Credit)
		if net.IsPositive() {
			row.DebitBalance = net
		} else {
			row.CreditBalance = net.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.DebitBalance)
		tb.TotalCredit = tb.TotalCredit.Add(row.CreditBalance)
		tb.Rows = append(tb.Rows, row)
	}
	return tb
}

// BuildIncomeStatement arma el estado de resultados (ingresos y gastos).
func BuildIncomeStatement(totals []repository.AccountTotals) IncomeStatement {
	is := IncomeStatement{TotalRevenue: decimal.Zero, TotalExpense: decimal.Zero}
	for _, t := range sortedTotals(totals) {
		switch t.Type {
		case entity.AccountTypeRevenue:
			row := toRow(t)
			is.Revenue = append(is.Revenue, row)
			is.TotalRevenue = is.TotalRevenue.Add(row.Balance)
		case entity.AccountTypeExpense:
			row := toRow(t)
			is.Expenses = append(is.Expenses, row)
			is.TotalExpense = is.TotalExpense.Add(row.Balance)
		}
	}
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpense)
	return is
}

// BuildBalanceSheet arma el balance general; los totales deben venir acumulados hasta la fecha de corte.
func BuildBalanceSheet(totals []repository.AccountTotals) BalanceSheet {
	bs := BalanceSheet{
		CurrentEarnings:  decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, t := range sortedTotals(totals) {
		row := toRow(t)
		switch t.Type {
		case entity.AccountTypeAsset:
			bs.Assets = append(bs.Assets, row)
			bs.TotalAssets = bs.TotalAssets.Add(row.Balance)
		case entity.AccountTypeLiability:
			bs.Liabilities = append(bs.Liabilities, row)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(row.Balance)
		case entity.AccountTypeEquity:
			bs.Equity = append(bs.Equity, row)
			bs.TotalEquity = bs.TotalEquity.Add(row.Balance)
		case entity.AccountTypeRevenue:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(row.Balance)
		case entity.AccountTypeExpense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(row.Balance)
		}
	}
	bs.TotalEquity = bs.TotalEquity.Add(bs.CurrentEarnings)
	return bs
}
