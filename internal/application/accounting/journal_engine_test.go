package accounting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	domacc "github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var seeds = []accounting.AccountSeed{
	{Code: "1100", Name: "Caja", Type: entity.AccountTypeAsset},
	{Code: "1400", Name: "Inventario", Type: entity.AccountTypeAsset},
	{Code: "1450", Name: "Producción en proceso", Type: entity.AccountTypeAsset},
	{Code: "2100", Name: "Proveedores", Type: entity.AccountTypeLiability},
	{Code: "2150", Name: "Recepciones por facturar", Type: entity.AccountTypeLiability},
	{Code: "3100", Name: "Capital", Type: entity.AccountTypeEquity},
	{Code: "4100", Name: "Ventas", Type: entity.AccountTypeRevenue},
	{Code: "4900", Name: "Sobrantes de inventario", Type: entity.AccountTypeRevenue},
	{Code: "5100", Name: "Costo de ventas", Type: entity.AccountTypeExpense},
	{Code: "5900", Name: "Faltantes de inventario", Type: entity.AccountTypeExpense},
}

var codes = domacc.AccountCodes{
	Inventory:      "1400",
	COGS:           "5100",
	WIP:            "1450",
	AccruedPayable: "2150",
	AdjustmentGain: "4900",
	AdjustmentLoss: "5900",
}

type fixture struct {
	store  *memory.Store
	gate   *accounting.PeriodGate
	cache  *accounting.AccountCodeCache
	engine *accounting.JournalEngine
	chart  *accounting.ChartOfAccounts
	auto   *accounting.AutoJournal
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s}
	f.gate = accounting.NewPeriodGate(s, time.Minute)
	f.cache = accounting.NewAccountCodeCache(0)
	f.engine = accounting.NewJournalEngine(s, f.gate, memory.NewSequence(), nil, zerolog.Nop())
	f.chart = accounting.NewChartOfAccounts(s, f.cache, zerolog.Nop())
	f.auto = accounting.NewAutoJournal(s, f.engine, codes, f.cache, zerolog.Nop())
	n, err := f.chart.Bootstrap(context.Background(), seeds)
	require.NoError(t, err)
	require.Equal(t, len(seeds), n)
	return f
}

func (f *fixture) id(t *testing.T, code string) string {
	t.Helper()
	var id string
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		id, err = f.cache.Resolve(ctx, uow, code)
		return err
	}))
	return id
}

func (f *fixture) simple(t *testing.T, debitCode, creditCode, amount string, post bool) *entity.JournalEntry {
	t.Helper()
	e, err := f.engine.CreateJournalEntry(context.Background(), accounting.JournalInput{
		EntryDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "prueba",
		Lines: []accounting.LineInput{
			{AccountID: f.id(t, debitCode), Debit: d(amount)},
			{AccountID: f.id(t, creditCode), Credit: d(amount)},
		},
		AutoPost: post,
	})
	require.NoError(t, err)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Post / Void
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DescuadradoNoEscribeNada(t *testing.T) {
	f := setup(t)
	_, err := f.engine.CreateJournalEntry(context.Background(), accounting.JournalInput{
		Lines: []accounting.LineInput{
			{AccountID: f.id(t, "1100"), Debit: d("100")},
			{AccountID: f.id(t, "3100"), Credit: d("99.99")},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnbalancedEntry))

	tb, err := f.engine.TrialBalance(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, tb.Rows)
}

func TestCreate_MontosBajoLaEscalaNoSeContabilizan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.engine.CreateJournalEntry(ctx, accounting.JournalInput{
		EntryDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []accounting.LineInput{
			{AccountID: f.id(t, "1100"), Debit: d("3.3333335")},
			{AccountID: f.id(t, "1400"), Debit: d("3.3333335")},
			{AccountID: f.id(t, "3100"), Credit: d("6.666667")},
		},
		AutoPost: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tb, err := f.engine.TrialBalance(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, tb.Rows, "no queda ningún asiento contabilizado")
	assert.Empty(t, f.store.Pending())
}

func TestCreate_PeriodoCerrado(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.gate.ClosePeriod(ctx, 2026, 3))

	_, err := f.engine.CreateJournalEntry(ctx, accounting.JournalInput{
		EntryDate: time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC),
		Lines: []accounting.LineInput{
			{AccountID: f.id(t, "1100"), Debit: d("10")},
			{AccountID: f.id(t, "3100"), Credit: d("10")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrClosedPeriod)

	require.NoError(t, f.gate.OpenPeriod(ctx, 2026, 3))
	open, err := f.gate.IsOpen(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, open, "la apertura invalida la caché")
}

func TestCreate_CuentaInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.engine.CreateJournalEntry(context.Background(), accounting.JournalInput{
		Lines: []accounting.LineInput{
			{AccountID: "no-existe", Debit: d("10")},
			{AccountID: f.id(t, "3100"), Credit: d("10")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostYVoid_MaquinaDeEstados(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.simple(t, "1100", "3100", "500", false)
	assert.Equal(t, entity.JournalStatusDraft, e.Status)
	assert.Equal(t, "JE-000001", e.Number)

	// Un borrador no se anula
	_, err := f.engine.VoidJournal(ctx, e.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	posted, err := f.engine.PostJournal(ctx, e.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.JournalStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)

	_, err = f.engine.PostJournal(ctx, e.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "solo DRAFT → POSTED")

	bal, err := f.engine.AccountBalance(ctx, f.id(t, "1100"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("500")))

	voided, err := f.engine.VoidJournal(ctx, e.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.JournalStatusVoided, voided.Status)

	bal, err = f.engine.AccountBalance(ctx, f.id(t, "1100"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.IsZero(), "los asientos anulados no suman")

	_, err = f.engine.VoidJournal(ctx, e.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "VOIDED es terminal")
}

func TestDraftNoAfectaSaldos(t *testing.T) {
	f := setup(t)
	f.simple(t, "1100", "3100", "100", false)
	bal, err := f.engine.AccountBalance(context.Background(), f.id(t, "3100"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversa
// ──────────────────────────────────────────────────────────────────────────────

func TestReverse_EfectoNetoCero(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	original := f.simple(t, "1100", "3100", "100", true)

	rev, err := f.engine.ReverseJournal(ctx, original.ID, nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.JournalStatusPosted, rev.Status)
	assert.Equal(t, original.ID, rev.ReversalOfID)
	require.Len(t, rev.Lines, 2)
	assert.True(t, rev.Lines[0].Credit.Equal(d("100")), "la cuenta A pasa al crédito")
	assert.True(t, rev.Lines[1].Debit.Equal(d("100")), "la cuenta B pasa al débito")

	again, err := f.engine.GetEntry(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JournalStatusPosted, again.Status, "la reversa es aditiva")

	for _, code := range []string{"1100", "3100"} {
		bal, err := f.engine.AccountBalance(ctx, f.id(t, code), repository.DateRange{})
		require.NoError(t, err)
		assert.True(t, bal.IsZero(), "cuenta %s debe quedar en cero", code)
	}

	_, err = f.engine.ReverseJournal(ctx, original.ID, nil, "u1")
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
}

func TestReverse_AnuladoNoSeReversa(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.simple(t, "1100", "3100", "100", true)
	_, err := f.engine.VoidJournal(ctx, e.ID, "u1")
	require.NoError(t, err)

	_, err = f.engine.ReverseJournal(ctx, e.ID, nil, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReportes_DesdeAsientosContabilizados(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.simple(t, "1100", "3100", "1000", true)
	f.simple(t, "1100", "4100", "600", true)
	f.simple(t, "5100", "1100", "200", true)
	f.simple(t, "5100", "1100", "999", false) // borrador

	tb, err := f.engine.TrialBalance(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	is, err := f.engine.IncomeStatement(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, is.NetIncome.Equal(d("400")))

	bs, err := f.engine.BalanceSheet(ctx, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bs.TotalAssets.Equal(d("1400")))
	assert.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	tb, err = f.engine.TrialBalance(ctx, repository.DateRange{From: &from})
	require.NoError(t, err)
	assert.Empty(t, tb.Rows, "el rango filtra por fecha del asiento")
}

func TestJournalPosted_EncolaEvento(t *testing.T) {
	f := setup(t)
	f.simple(t, "1100", "3100", "100", true)
	pending := f.store.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, entity.TopicJournalPosted, pending[0].Topic)
}
