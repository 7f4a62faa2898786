package accounting

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	domacc "github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// CreateFromRequest adapta el request HTTP de un asiento manual.
func (e *JournalEngine) CreateFromRequest(ctx context.Context, userID string, in dto.CreateJournalRequest) (*entity.JournalEntry, error) {
	lines := make([]LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, LineInput{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	return e.CreateJournalEntry(ctx, JournalInput{
		EntryDate:   in.EntryDate,
		Description: in.Description,
		Reference:   in.Reference,
		Source:      entity.ManualRef{},
		Lines:       lines,
		AutoPost:    in.Post,
		CreatedBy:   userID,
	})
}

// ToJournalResponse convierte un asiento al DTO de salida.
func ToJournalResponse(e *entity.JournalEntry) dto.JournalEntryResponse {
	debit, credit := e.Totals()
	out := dto.JournalEntryResponse{
		ID:              e.ID,
		Number:          e.Number,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		Reference:       e.Reference,
		Status:          e.Status,
		IsAutoGenerated: e.IsAutoGenerated,
		ReversalOfID:    e.ReversalOfID,
		PostedAt:        e.PostedAt,
		VoidedAt:        e.VoidedAt,
		Lines:           make([]dto.JournalLineResponse, 0, len(e.Lines)),
		TotalDebit:      debit,
		TotalCredit:     credit,
	}
	if e.Source != nil {
		out.ReferenceType = string(e.Source.Kind())
		out.ReferenceID = e.Source.RefID()
	}
	for _, l := range e.Lines {
		out.Lines = append(out.Lines, dto.JournalLineResponse{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	return out
}

// ToAccountResponse convierte una cuenta al DTO de salida.
func ToAccountResponse(a *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:       a.ID,
		Code:     a.Code,
		Name:     a.Name,
		Type:     a.Type,
		Category: a.Category,
	}
}

func toRowResponses(rows []domacc.ReportRow) []dto.ReportRowResponse {
	out := make([]dto.ReportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRowResponse(r))
	}
	return out
}

func toRowResponse(r domacc.ReportRow) dto.ReportRowResponse {
	return dto.ReportRowResponse{
		AccountID: r.AccountID,
		Code:      r.Code,
		Name:      r.Name,
		Type:      r.Type,
		Category:  r.Category,
		Debit:     r.Debit,
		Credit:    r.Credit,
		Balance:   r.Balance,
	}
}

// ToTrialBalanceResponse convierte el balance de prueba al DTO de salida.
func ToTrialBalanceResponse(tb domacc.TrialBalance) dto.TrialBalanceResponse {
	out := dto.TrialBalanceResponse{
		Rows:        make([]dto.TrialBalanceRowResponse, 0, len(tb.Rows)),
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
	}
	for _, r := range tb.Rows {
		out.Rows = append(out.Rows, dto.TrialBalanceRowResponse{
			ReportRowResponse: toRowResponse(r.ReportRow),
			DebitBalance:      r.DebitBalance,
			CreditBalance:     r.CreditBalance,
		})
	}
	return out
}

// ToIncomeStatementResponse convierte el estado de resultados al DTO de salida.
func ToIncomeStatementResponse(is domacc.IncomeStatement) dto.IncomeStatementResponse {
	return dto.IncomeStatementResponse{
		Revenue:      toRowResponses(is.Revenue),
		Expenses:     toRowResponses(is.Expenses),
		TotalRevenue: is.TotalRevenue,
		TotalExpense: is.TotalExpense,
		NetIncome:    is.NetIncome,
	}
}

// ToBalanceSheetResponse convierte el balance general al DTO de salida.
func ToBalanceSheetResponse(asOf time.Time, bs domacc.BalanceSheet) dto.BalanceSheetResponse {
	return dto.BalanceSheetResponse{
		AsOf:             asOf,
		Assets:           toRowResponses(bs.Assets),
		Liabilities:      toRowResponses(bs.Liabilities),
		Equity:           toRowResponses(bs.Equity),
		CurrentEarnings:  bs.CurrentEarnings,
		TotalAssets:      bs.TotalAssets,
		TotalLiabilities: bs.TotalLiabilities,
		TotalEquity:      bs.TotalEquity,
	}
}
