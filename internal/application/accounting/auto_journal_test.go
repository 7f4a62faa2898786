package accounting_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveMovement(t *testing.T, f *fixture, m *entity.StockMovement) {
	t.Helper()
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Movements().Create(ctx, m)
	}))
}

func receipt(id, po string) *entity.StockMovement {
	cost := d("100")
	return &entity.StockMovement{
		ID:               id,
		Type:             entity.MovementTypePURCHASE,
		ProductVariantID: "v1",
		ToLocationID:     "L1",
		Quantity:         d("10"),
		Cost:             &cost,
		GoodsReceiptID:   "gr-" + id,
		PurchaseOrderID:  po,
		CreatedAt:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecordInventoryMovement_Idempotente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	saveMovement(t, f, receipt("m1", ""))

	first, err := f.auto.RecordInventoryMovement(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.IsAutoGenerated)

	second, err := f.auto.RecordInventoryMovement(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "no debe contabilizar dos veces el mismo movimiento")

	bal, err := f.engine.AccountBalance(ctx, f.id(t, "1400"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("1000")))
	bal, err = f.engine.AccountBalance(ctx, f.id(t, "2150"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("1000")))
}

func TestRecordInventoryMovement_FacturaPreviaEvitaDobleRegistro(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// La factura del proveedor ya debitó inventario para la orden PO-1.
	_, err := f.engine.CreateJournalEntry(ctx, accounting.JournalInput{
		EntryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Source:    entity.PurchaseBillRef{BillID: "bill-1", PurchaseOrderID: "PO-1"},
		Lines: []accounting.LineInput{
			{AccountID: f.id(t, "1400"), Debit: d("1000")},
			{AccountID: f.id(t, "2100"), Credit: d("1000")},
		},
		AutoPost: true,
	})
	require.NoError(t, err)

	saveMovement(t, f, receipt("m1", "PO-1"))
	entry, err := f.auto.RecordInventoryMovement(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, entry, "la recepción no genera asiento")

	bal, err := f.engine.AccountBalance(ctx, f.id(t, "1400"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("1000")), "inventario registrado una sola vez")

	// Otra orden sin factura sí genera asiento
	saveMovement(t, f, receipt("m2", "PO-2"))
	entry, err = f.auto.RecordInventoryMovement(ctx, "m2")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestRecordInventoryMovement_ValorCeroYTraslado(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	zero := d("0")
	saveMovement(t, f, &entity.StockMovement{
		ID: "m0", Type: entity.MovementTypeIN, ProductVariantID: "v1", ToLocationID: "L1",
		Quantity: d("5"), Cost: &zero, CreatedAt: time.Now(),
	})
	entry, err := f.auto.RecordInventoryMovement(ctx, "m0")
	require.NoError(t, err)
	assert.Nil(t, entry)

	cost := d("10")
	saveMovement(t, f, &entity.StockMovement{
		ID: "mt", Type: entity.MovementTypeTRANSFER, ProductVariantID: "v1", FromLocationID: "L1", ToLocationID: "L2",
		Quantity: d("5"), Cost: &cost, CreatedAt: time.Now(),
	})
	entry, err = f.auto.RecordInventoryMovement(ctx, "mt")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRecordInventoryMovement_CodigoFaltanteEsFatal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Products().Create(ctx, &entity.Product{ID: "v9", SKU: "X", InventoryAccountCode: "1499"})
	}))
	cost := d("3")
	saveMovement(t, f, &entity.StockMovement{
		ID: "m9", Type: entity.MovementTypeIN, ProductVariantID: "v9", ToLocationID: "L1",
		Quantity: d("1"), Cost: &cost, CreatedAt: time.Now(),
	})
	_, err := f.auto.RecordInventoryMovement(ctx, "m9")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountCodeMissing)

	var missing *domain.MissingAccountError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "1499", missing.Code)
}

func TestReverseMovementJournal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	saveMovement(t, f, receipt("m1", ""))
	_, err := f.auto.RecordInventoryMovement(ctx, "m1")
	require.NoError(t, err)

	var reversed []*entity.JournalEntry
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		reversed, err = f.auto.ReverseMovementJournalInTx(ctx, uow, "m1", "u1")
		return err
	}))
	require.Len(t, reversed, 1)

	bal, err := f.engine.AccountBalance(ctx, f.id(t, "1400"), repository.DateRange{})
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}
