package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLedger_FilaInexistente(t *testing.T) {
	s := memory.NewStore()
	l := inventory.NewStockLedger()
	err := s.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		a, err := l.LockAvailabilityInTx(ctx, uow, "L1", "v1", "")
		require.NoError(t, err)
		assert.True(t, a.Physical.IsZero(), "sin fila el físico es cero")

		_, err = l.ValidateAndLockInTx(ctx, uow, "L1", "v1", d("1"))
		assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)

		return l.DeductStockInTx(ctx, uow, "L1", "v1", d("1"))
	})
	assert.ErrorIs(t, err, domain.ErrBalanceRowMissing, "descontar sin fila es un defecto del caller")
}

func TestStockLedger_ReceiveAtCost(t *testing.T) {
	s := memory.NewStore()
	l := inventory.NewStockLedger()
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		avg, err := l.ReceiveAtCostInTx(ctx, uow, "L1", "v1", d("10"), d("100"))
		require.NoError(t, err)
		assertDec(t, "100", avg)
		avg, err = l.ReceiveAtCostInTx(ctx, uow, "L1", "v1", d("10"), d("200"))
		require.NoError(t, err)
		assertDec(t, "150", avg)

		require.NoError(t, l.DeductStockInTx(ctx, uow, "L1", "v1", d("5")))
		_, err = l.ReceiveAtCostInTx(ctx, uow, "L1", "v1", d("0"), d("1"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorIs(t, l.IncrementStockInTx(ctx, uow, "L1", "v1", d("-1")), domain.ErrInvalidInput)
		return nil
	}))
}
