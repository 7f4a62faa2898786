package accounting_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalBalance_PorNaturaleza(t *testing.T) {
	for _, tc := range []struct {
		accountType string
		want        string
	}{
		{entity.AccountTypeAsset, "70"},
		{entity.AccountTypeExpense, "70"},
		{entity.AccountTypeLiability, "-70"},
		{entity.AccountTypeEquity, "-70"},
		{entity.AccountTypeRevenue, "-70"},
	} {
		got := accounting.NormalBalance(tc.accountType, d("100"), d("30"))
		assert.True(t, got.Equal(d(tc.want)), "%s: esperado %s, obtuvo %s", tc.accountType, tc.want, got)
	}
}

func TestValidateLines_Cuadrado(t *testing.T) {
	err := accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a", Debit: d("100.10")},
		{AccountID: "b", Credit: d("60.05")},
		{AccountID: "c", Credit: d("40.05")},
	})
	assert.NoError(t, err)
}

func TestValidateLines_DescuadreExacto(t *testing.T) {
	err := accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a", Debit: d("100.000001")},
		{AccountID: "b", Credit: d("100")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnbalancedEntry), "no debe haber tolerancia")

	var ue *domain.UnbalancedEntryError
	require.True(t, errors.As(err, &ue))
	assert.True(t, ue.Credit.Equal(d("100")))
}

func TestValidateLines_Invalidas(t *testing.T) {
	assert.ErrorIs(t, accounting.ValidateLines(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a", Debit: d("-5")}, {AccountID: "b", Credit: d("-5")},
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a"}, {AccountID: "b"},
	}), domain.ErrInvalidInput, "un asiento de valor cero no se registra")
}

func TestValidateLines_EscalaDeAlmacenamiento(t *testing.T) {
	// Cuadra con decimales exactos pero descuadra al redondear cada línea a 6 decimales.
	err := accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a", Debit: d("3.3333335")},
		{AccountID: "b", Debit: d("3.3333335")},
		{AccountID: "c", Credit: d("6.666667")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.NoError(t, accounting.ValidateLines([]entity.JournalLine{
		{AccountID: "a", Debit: d("3.333333")},
		{AccountID: "b", Debit: d("3.3333340000")},
		{AccountID: "c", Credit: d("6.666667")},
	}), "los ceros a la derecha no cuentan como decimales")
}

func TestSwapLines(t *testing.T) {
	swapped := accounting.SwapLines([]entity.JournalLine{
		{AccountID: "A", Debit: d("100"), Credit: decimal.Zero},
		{AccountID: "B", Debit: decimal.Zero, Credit: d("100")},
	})
	require.Len(t, swapped, 2)
	assert.True(t, swapped[0].Credit.Equal(d("100")))
	assert.True(t, swapped[0].Debit.IsZero())
	assert.True(t, swapped[1].Debit.Equal(d("100")))
}
