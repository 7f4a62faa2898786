package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
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

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	note := ""
	if len(msg) > 0 {
		note = msg[0] + ": "
	}
	assert.True(t, got.Equal(d(want)), "%sesperado %s, obtenido %s", note, want, got.String())
}

var seeds = []accounting.AccountSeed{
	{Code: "1400", Name: "Inventario", Type: entity.AccountTypeAsset},
	{Code: "1410", Name: "Inventario materias primas", Type: entity.AccountTypeAsset},
	{Code: "1450", Name: "Producción en proceso", Type: entity.AccountTypeAsset},
	{Code: "2150", Name: "Recepciones por facturar", Type: entity.AccountTypeLiability},
	{Code: "4900", Name: "Sobrantes de inventario", Type: entity.AccountTypeRevenue},
	{Code: "5100", Name: "Costo de ventas", Type: entity.AccountTypeExpense},
	{Code: "5900", Name: "Faltantes de inventario", Type: entity.AccountTypeExpense},
}

var codes = domacc.AccountCodes{
	Inventory:         "1400",
	COGS:              "5100",
	WIP:               "1450",
	AccruedPayable:    "2150",
	AdjustmentGain:    "4900",
	AdjustmentLoss:    "5900",
	CategoryInventory: map[string]string{entity.CategoryRawMaterial: "1410"},
}

type fixture struct {
	store    *memory.Store
	cache    *accounting.AccountCodeCache
	engine   *accounting.JournalEngine
	res      *inventory.ReservationManager
	uc       *inventory.RegisterMovementUseCase
	analysis *inventory.ConsumptionAnalysisUseCase
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s}
	gate := accounting.NewPeriodGate(s, time.Minute)
	f.cache = accounting.NewAccountCodeCache(0)
	f.engine = accounting.NewJournalEngine(s, gate, memory.NewSequence(), nil, zerolog.Nop())
	_, err := accounting.NewChartOfAccounts(s, f.cache, zerolog.Nop()).Bootstrap(context.Background(), seeds)
	require.NoError(t, err)
	auto := accounting.NewAutoJournal(s, f.engine, codes, f.cache, zerolog.Nop())

	ledger := inventory.NewStockLedger()
	f.res = inventory.NewReservationManager(s, ledger, zerolog.Nop())
	f.uc = inventory.NewRegisterMovementUseCase(s, ledger, f.res, auto, nil, zerolog.Nop())
	f.analysis = inventory.NewConsumptionAnalysisUseCase(s)

	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		for _, p := range []*entity.Product{
			{ID: "v1", SKU: "TELA-01", Category: entity.CategoryMerchandise},
			{ID: "v2", SKU: "BOTON-01", Category: entity.CategoryMerchandise},
			{ID: "m1", SKU: "ALGODON", Category: entity.CategoryRawMaterial},
			{ID: "m2", SKU: "HILO", Category: entity.CategoryRawMaterial},
			{ID: "fg", SKU: "CAMISA", Category: entity.CategoryFinishedGood},
		} {
			if err := uow.Products().Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))
	return f
}

func (f *fixture) receive(t *testing.T, loc, variant, qty, cost string) *inventory.MovementResult {
	t.Helper()
	res, err := f.uc.ReceiveGoods(context.Background(), inventory.ReceiveGoodsInput{
		LocationID: loc, ProductVariantID: variant, Quantity: d(qty), UnitCost: d(cost), UserID: "u1",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T, loc, variant string) *entity.InventoryBalance {
	t.Helper()
	var b *entity.InventoryBalance
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		b, err = uow.Balances().Get(ctx, loc, variant)
		return err
	}))
	return b
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	var p *entity.Product
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		p, err = uow.Products().GetByID(ctx, id)
		return err
	}))
	return p
}

func (f *fixture) accountBalance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	var id string
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		id, err = f.cache.Resolve(ctx, uow, code)
		return err
	}))
	bal, err := f.engine.AccountBalance(context.Background(), id, repository.DateRange{})
	require.NoError(t, err)
	return bal
}

func sale(so, loc, variant, qty string) inventory.IssueStockInput {
	return inventory.IssueStockInput{
		Lines:        []inventory.IssueLine{{LocationID: loc, ProductVariantID: variant, Quantity: d(qty)}},
		SalesOrderID: so,
		UserID:       "u1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveGoods_CostoPromedio(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.receive(t, "L1", "v1", "10", "100")
	require.Len(t, first.Journals, 1, "la recepción genera asiento")
	f.receive(t, "L1", "v1", "10", "200")

	b := f.balance(t, "L1", "v1")
	assertDec(t, "20", b.Quantity)
	assertDec(t, "150", b.AverageCost, "promedio de la ubicación")
	assertDec(t, "150", f.product(t, "v1").StandardCost, "promedio global")

	out, err := f.uc.IssueStock(ctx, sale("SO-1", "L1", "v1", "5"))
	require.NoError(t, err)
	require.Len(t, out.Movements, 1)
	assertDec(t, "150", out.Movements[0].UnitCost(), "la salida se valoriza al promedio")
	assertDec(t, "150", f.balance(t, "L1", "v1").AverageCost, "la salida no cambia el promedio")

	assertDec(t, "750", f.accountBalance(t, "5100"))
	assertDec(t, "2250", f.accountBalance(t, "1400"))
	assertDec(t, "3000", f.accountBalance(t, "2150"))
}

func TestReceiveGoods_CuentaPorCategoria(t *testing.T) {
	f := setup(t)
	f.receive(t, "L1", "m1", "10", "5")
	assertDec(t, "50", f.accountBalance(t, "1410"), "materia prima usa la cuenta de su categoría")
	assert.True(t, f.accountBalance(t, "1400").IsZero())
}

func TestReceiveGoods_EntradaInvalida(t *testing.T) {
	f := setup(t)
	_, err := f.uc.ReceiveGoods(context.Background(), inventory.ReceiveGoodsInput{
		LocationID: "L1", ProductVariantID: "v1", Quantity: d("0"), UnitCost: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ReceiveGoods(context.Background(), inventory.ReceiveGoodsInput{
		LocationID: "L1", ProductVariantID: "no-existe", Quantity: d("1"), UnitCost: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, f.balance(t, "L1", "no-existe"), "nada se escribe")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_FisicoVsDisponible(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "20", "10")

	_, err := f.res.Reserve(ctx, inventory.ReserveInput{
		ProductVariantID: "v1", LocationID: "L1", Quantity: d("15"),
		ReservedFor: entity.ReservedForSalesOrder, ReferenceID: "SO-A",
	})
	require.NoError(t, err)

	_, err = f.res.Reserve(ctx, inventory.ReserveInput{
		ProductVariantID: "v1", LocationID: "L1", Quantity: d("15"),
		ReservedFor: entity.ReservedForSalesOrder, ReferenceID: "SO-B",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock, "hay físico pero está reservado")
	var shortage *domain.StockShortageError
	require.True(t, errors.As(err, &shortage))
	assertDec(t, "20", shortage.Physical)
	assertDec(t, "5", shortage.Available)
	assertDec(t, "10", shortage.Shortfall())

	_, err = f.uc.IssueStock(ctx, sale("SO-X", "L1", "v1", "30"))
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)

	// La orden que reservó puede despachar su propia reserva.
	_, err = f.uc.IssueStock(ctx, sale("SO-A", "L1", "v1", "10"))
	require.NoError(t, err)
	a, err := f.uc.Availability(ctx, "L1", "v1")
	require.NoError(t, err)
	assertDec(t, "10", a.Physical)
	assertDec(t, "5", a.Reserved, "la reserva quedó parcialmente cumplida")
	assertDec(t, "5", a.Available)

	_, err = f.uc.IssueStock(ctx, sale("SO-C", "L1", "v1", "8"))
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)
}

func TestIssue_MultilineaEsAtomica(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "10")
	f.receive(t, "L1", "v2", "3", "10")
	before := len(f.store.Pending())

	_, err := f.uc.IssueStock(ctx, inventory.IssueStockInput{
		Lines: []inventory.IssueLine{
			{LocationID: "L1", ProductVariantID: "v1", Quantity: d("5")},
			{LocationID: "L1", ProductVariantID: "v2", Quantity: d("2")},
			{LocationID: "L1", ProductVariantID: "v2", Quantity: d("2")},
		},
		SalesOrderID: "SO-1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock, "las líneas se agregan por clave")

	assertDec(t, "10", f.balance(t, "L1", "v1").Quantity, "ninguna línea se aplica")
	assertDec(t, "3", f.balance(t, "L1", "v2").Quantity)
	assert.Len(t, f.store.Pending(), before, "sin eventos nuevos")
	assertDec(t, "130", f.accountBalance(t, "1400"), "sin asientos nuevos")
}

func TestIssue_RequiereDocumento(t *testing.T) {
	f := setup(t)
	_, err := f.uc.IssueStock(context.Background(), inventory.IssueStockInput{
		Lines: []inventory.IssueLine{{LocationID: "L1", ProductVariantID: "v1", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssue_ConcurrenciaNoSobrevende(t *testing.T) {
	f := setup(t)
	f.receive(t, "L1", "v1", "10", "10")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		failed  int
		unknown []error
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.IssueStock(context.Background(), sale("SO-"+string(rune('A'+i)), "L1", "v1", "1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientPhysicalStock):
				failed++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, 10, ok, "exactamente el stock físico")
	assert.Equal(t, 15, failed)
	assert.True(t, f.balance(t, "L1", "v1").Quantity.IsZero(), "nunca negativo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_ConsumeLotesFIFO(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.ReceiveGoods(ctx, inventory.ReceiveGoodsInput{
		LocationID: "L1", ProductVariantID: "v1", Quantity: d("5"), UnitCost: d("10"),
		BatchNumber: "B-NEW", ManufacturingDate: &newer,
	})
	require.NoError(t, err)
	_, err = f.uc.ReceiveGoods(ctx, inventory.ReceiveGoodsInput{
		LocationID: "L1", ProductVariantID: "v1", Quantity: d("5"), UnitCost: d("10"),
		BatchNumber: "B-OLD", ManufacturingDate: &older,
	})
	require.NoError(t, err)
	f.receive(t, "L1", "v1", "2", "10") // sin lote

	out, err := f.uc.IssueStock(ctx, sale("SO-1", "L1", "v1", "11"))
	require.NoError(t, err)
	require.Len(t, out.Movements, 3, "un movimiento por lote más el remanente sin lote")
	assertDec(t, "5", out.Movements[0].Quantity)
	assertDec(t, "5", out.Movements[1].Quantity)
	assertDec(t, "1", out.Movements[2].Quantity)
	assert.Empty(t, out.Movements[2].BatchID)

	var oldBatch *entity.Batch
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		oldBatch, err = uow.Batches().GetByID(ctx, out.Movements[0].BatchID)
		return err
	}))
	require.NotNil(t, oldBatch)
	assert.Equal(t, "B-OLD", oldBatch.BatchNumber, "el lote más antiguo sale primero")
	assert.Equal(t, entity.BatchStatusDepleted, oldBatch.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados y ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_PromedioDestino(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "100")
	f.receive(t, "L2", "v1", "10", "200")
	inventoryBefore := f.accountBalance(t, "1400")

	out, err := f.uc.TransferStock(ctx, inventory.TransferInput{
		FromLocationID: "L1", ToLocationID: "L2", ProductVariantID: "v1", Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.Empty(t, out.Journals, "el traslado no cambia el valor")
	require.Len(t, out.Movements, 1)
	assert.Equal(t, entity.MovementTypeTRANSFER, out.Movements[0].Type)

	assert.True(t, f.balance(t, "L1", "v1").Quantity.IsZero())
	dst := f.balance(t, "L2", "v1")
	assertDec(t, "20", dst.Quantity)
	assertDec(t, "150", dst.AverageCost)
	assert.True(t, inventoryBefore.Equal(f.accountBalance(t, "1400")))

	_, err = f.uc.TransferStock(ctx, inventory.TransferInput{
		FromLocationID: "L2", ToLocationID: "L2", ProductVariantID: "v1", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.TransferStock(ctx, inventory.TransferInput{
		FromLocationID: "L1", ToLocationID: "L3", ProductVariantID: "v1", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)
	assert.Nil(t, f.balance(t, "L3", "v1"), "el rollback descarta la fila del destino")
}

func TestAdjust_SobranteYFaltante(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "20")
	_, err := f.res.Reserve(ctx, inventory.ReserveInput{
		ProductVariantID: "v1", LocationID: "L1", Quantity: d("10"),
		ReservedFor: entity.ReservedForSalesOrder, ReferenceID: "SO-1",
	})
	require.NoError(t, err)

	gain, err := f.uc.AdjustStock(ctx, inventory.AdjustInput{LocationID: "L1", ProductVariantID: "v1", Quantity: d("2")})
	require.NoError(t, err)
	assertDec(t, "20", gain.UnitCost, "sin costo informado usa el promedio")
	assertDec(t, "40", f.accountBalance(t, "4900"))

	loss, err := f.uc.AdjustStock(ctx, inventory.AdjustInput{LocationID: "L1", ProductVariantID: "v1", Quantity: d("-3")})
	require.NoError(t, err, "el faltante valida contra el físico aunque esté reservado")
	require.Len(t, loss.Movements, 1)
	assert.Equal(t, "L1", loss.Movements[0].FromLocationID)
	assertDec(t, "60", f.accountBalance(t, "5900"))
	assertDec(t, "9", f.balance(t, "L1", "v1").Quantity)

	_, err = f.uc.AdjustStock(ctx, inventory.AdjustInput{LocationID: "L1", ProductVariantID: "v1", Quantity: d("-100")})
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)
	_, err = f.uc.AdjustStock(ctx, inventory.AdjustInput{LocationID: "L1", ProductVariantID: "v1", Quantity: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// balanceSpy registra las lecturas de saldo que hace el caso de uso.
type balanceSpy struct {
	repository.InventoryBalanceRepository
	calls *[]string
}

func (b balanceSpy) Get(ctx context.Context, loc, variant string) (*entity.InventoryBalance, error) {
	*b.calls = append(*b.calls, "Get")
	return b.InventoryBalanceRepository.Get(ctx, loc, variant)
}

func (b balanceSpy) GetForUpdate(ctx context.Context, loc, variant string) (*entity.InventoryBalance, error) {
	*b.calls = append(*b.calls, "GetForUpdate")
	return b.InventoryBalanceRepository.GetForUpdate(ctx, loc, variant)
}

type spyUnitOfWork struct {
	repository.UnitOfWork
	calls *[]string
}

func (u spyUnitOfWork) Balances() repository.InventoryBalanceRepository {
	return balanceSpy{InventoryBalanceRepository: u.UnitOfWork.Balances(), calls: u.calls}
}

func TestAdjust_SobranteLeeElPromedioBajoBloqueo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "20")

	var calls []string
	var res *inventory.MovementResult
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = f.uc.AdjustStockInTx(ctx, spyUnitOfWork{UnitOfWork: uow, calls: &calls}, inventory.AdjustInput{
			LocationID: "L1", ProductVariantID: "v1", Quantity: d("2"), UserID: "u1",
		})
		return err
	}))
	assertDec(t, "20", res.UnitCost)
	require.NotEmpty(t, calls)
	assert.Equal(t, "GetForUpdate", calls[0], "el costo no se lee antes de bloquear el saldo")
	assert.NotContains(t, calls, "Get")

	// Sin saldo previo en la ubicación se usa el costo estándar de la variante.
	gain, err := f.uc.AdjustStock(ctx, inventory.AdjustInput{LocationID: "L2", ProductVariantID: "v1", Quantity: d("1")})
	require.NoError(t, err)
	assertDec(t, "20", gain.UnitCost)
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteProduction_COGM(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "m1", "10", "5")
	f.receive(t, "L1", "m2", "4", "10")

	out, err := f.uc.CompleteProduction(ctx, inventory.ProductionInput{
		ProductionOrderID: "PO-100",
		Materials: []inventory.IssueLine{
			{LocationID: "L1", ProductVariantID: "m1", Quantity: d("10")},
			{LocationID: "L1", ProductVariantID: "m2", Quantity: d("4")},
		},
		OutputLocationID: "L9",
		OutputVariantID:  "fg",
		YieldQuantity:    d("10"),
		ConversionCost:   d("30"),
		BatchNumber:      "LOT-100",
	})
	require.NoError(t, err)
	assertDec(t, "12", out.UnitCost, "(50 + 40 + 30) / 10")
	require.Len(t, out.Movements, 3)
	for _, m := range out.Movements {
		assert.Equal(t, "PO-100", m.ProductionOrderID)
	}

	fg := f.balance(t, "L9", "fg")
	assertDec(t, "10", fg.Quantity)
	assertDec(t, "12", fg.AverageCost)
	assertDec(t, "12", f.product(t, "fg").StandardCost)

	assert.True(t, f.accountBalance(t, "1410").IsZero(), "materias primas consumidas")
	assertDec(t, "120", f.accountBalance(t, "1400"), "producto terminado al costo de manufactura")
	assertDec(t, "-30", f.accountBalance(t, "1450"), "la conversión queda acreditada en proceso")

	var linked []*entity.StockMovement
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		linked, err = uow.Movements().ListByProductionOrder(ctx, "PO-100")
		return err
	}))
	assert.Len(t, linked, 3)
}

func TestCompleteProduction_RendimientoCero(t *testing.T) {
	f := setup(t)
	f.receive(t, "L1", "m1", "10", "5")

	out, err := f.uc.CompleteProduction(context.Background(), inventory.ProductionInput{
		ProductionOrderID: "PO-200",
		Materials:         []inventory.IssueLine{{LocationID: "L1", ProductVariantID: "m1", Quantity: d("4")}},
		YieldQuantity:     d("0"),
	})
	require.NoError(t, err)
	assert.True(t, out.UnitCost.IsZero(), "rendimiento cero: costo cero, no error")
	assert.Len(t, out.Movements, 1, "solo el consumo")
	assertDec(t, "6", f.balance(t, "L1", "m1").Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidMovement_Recepcion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec := f.receive(t, "L1", "v1", "10", "100")
	id := rec.Movements[0].ID

	out, err := f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: id, Reason: "error de digitación", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Movements, 1)
	voidMov := out.Movements[0]
	assert.Equal(t, entity.MovementTypeVOID, voidMov.Type)
	assert.Equal(t, id, voidMov.VoidsMovementID)
	assert.Equal(t, "L1", voidMov.FromLocationID)
	assert.Len(t, out.Journals, 1, "reversa del asiento de la recepción")

	assert.True(t, f.balance(t, "L1", "v1").Quantity.IsZero())
	assert.True(t, f.accountBalance(t, "1400").IsZero())

	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: id})
	assert.ErrorIs(t, err, domain.ErrConflict, "un movimiento se anula una sola vez")
	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: voidMov.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoidMovement_SalidaDevuelveAlCostoOriginal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "100")
	issue, err := f.uc.IssueStock(ctx, sale("SO-1", "L1", "v1", "4"))
	require.NoError(t, err)

	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: issue.Movements[0].ID})
	require.NoError(t, err)
	b := f.balance(t, "L1", "v1")
	assertDec(t, "10", b.Quantity)
	assertDec(t, "100", b.AverageCost)
	assert.True(t, f.accountBalance(t, "5100").IsZero(), "el costo de venta se reversa")
}

func TestVoidMovement_RecepcionYaConsumida(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec := f.receive(t, "L1", "v1", "10", "100")
	_, err := f.uc.IssueStock(ctx, sale("SO-1", "L1", "v1", "8"))
	require.NoError(t, err)

	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: rec.Movements[0].ID})
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)
	assertDec(t, "2", f.balance(t, "L1", "v1").Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAt_DesdeElLog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Hour)
	f.receive(t, "L1", "v1", "10", "1")
	_, err := f.uc.TransferStock(ctx, inventory.TransferInput{
		FromLocationID: "L1", ToLocationID: "L2", ProductVariantID: "v1", Quantity: d("3"),
	})
	require.NoError(t, err)
	now := time.Now().UTC().Add(time.Second)

	qty, err := f.uc.StockAt(ctx, "L1", "v1", now)
	require.NoError(t, err)
	assertDec(t, "7", qty)
	qty, err = f.uc.StockAt(ctx, "L2", "v1", now)
	require.NoError(t, err)
	assertDec(t, "3", qty)
	qty, err = f.uc.StockAt(ctx, "L1", "v1", before)
	require.NoError(t, err)
	assert.True(t, qty.IsZero())

	assert.True(t, f.balance(t, "L1", "v1").Quantity.Equal(d("7")), "el saldo coincide con el log")
}

func TestClassifyConsumption_ExcluyeAnuladas(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	from := time.Now().UTC().Add(-time.Hour)
	f.receive(t, "L1", "v1", "100", "10")
	f.receive(t, "L1", "v2", "200", "1")
	f.receive(t, "L1", "m1", "10", "5")

	for _, in := range []inventory.IssueStockInput{
		sale("SO-1", "L1", "v1", "80"), // 800
		sale("SO-2", "L1", "v2", "150"), // 150
		sale("SO-3", "L1", "m1", "10"), // 50
	} {
		_, err := f.uc.IssueStock(ctx, in)
		require.NoError(t, err)
	}
	voided, err := f.uc.IssueStock(ctx, sale("SO-4", "L1", "v2", "50"))
	require.NoError(t, err)
	_, err = f.uc.VoidMovement(ctx, inventory.VoidInput{MovementID: voided.Movements[0].ID})
	require.NoError(t, err)

	items, err := f.analysis.ClassifyConsumption(ctx, from, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "v1", items[0].ProductVariantID)
	assert.Equal(t, "A", items[0].Class, "80 por ciento acumulado todavía es A")
	assert.Equal(t, "v2", items[1].ProductVariantID)
	assertDec(t, "150", items[1].Value, "la salida anulada no cuenta")
	assert.Equal(t, "B", items[1].Class)
	assert.Equal(t, "C", items[2].Class)

	_, err = f.analysis.ClassifyConsumption(ctx, time.Now(), from)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
