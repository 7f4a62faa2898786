package accounting_test

import (
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTotals() []repository.AccountTotals {
	return []repository.AccountTotals{
		{AccountID: "1", Code: "1100", Type: entity.AccountTypeAsset, Debit: d("1000"), Credit: d("300")},
		{AccountID: "2", Code: "1400", Type: entity.AccountTypeAsset, Debit: d("500"), Credit: d("200")},
		{AccountID: "3", Code: "2150", Type: entity.AccountTypeLiability, Debit: d("0"), Credit: d("500")},
		{AccountID: "4", Code: "3100", Type: entity.AccountTypeEquity, Debit: d("0"), Credit: d("400")},
		{AccountID: "5", Code: "4100", Type: entity.AccountTypeRevenue, Debit: d("0"), Credit: d("600")},
		{AccountID: "6", Code: "5100", Type: entity.AccountTypeExpense, Debit: d("500"), Credit: d("0")},
	}
}

func TestBuildTrialBalance_Cuadra(t *testing.T) {
	tb := accounting.BuildTrialBalance(sampleTotals())
	require.Len(t, tb.Rows, 6)
	assert.Equal(t, "1100", tb.Rows[0].Code)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit), "débitos %s vs créditos %s", tb.TotalDebit, tb.TotalCredit)
	assert.True(t, tb.Rows[0].DebitBalance.Equal(d("700")))
	assert.True(t, tb.Rows[2].CreditBalance.Equal(d("500")))
}

func TestBuildIncomeStatement(t *testing.T) {
	is := accounting.BuildIncomeStatement(sampleTotals())
	assert.True(t, is.TotalRevenue.Equal(d("600")))
	assert.True(t, is.TotalExpense.Equal(d("500")))
	assert.True(t, is.NetIncome.Equal(d("100")))
}

func TestBuildBalanceSheet_ActivoIgualPasivoMasPatrimonio(t *testing.T) {
	bs := accounting.BuildBalanceSheet(sampleTotals())
	assert.True(t, bs.TotalAssets.Equal(d("1000")))
	assert.True(t, bs.TotalLiabilities.Equal(d("500")))
	assert.True(t, bs.CurrentEarnings.Equal(d("100")))
	assert.True(t, bs.TotalEquity.Equal(d("500")))
	assert.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}
