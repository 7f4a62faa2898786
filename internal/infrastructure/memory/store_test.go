package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	boom := errors.New("boom")
	err := s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		require.NoError(t, uow.Balances().Increment(ctx, "L1", "V1", decimal.NewFromInt(10)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		b, err := uow.Balances().Get(ctx, "L1", "V1")
		require.NoError(t, err)
		assert.Nil(t, b, "la fila no debe existir tras el rollback")
		return nil
	})
}

func TestStore_CommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Balances().Increment(ctx, "L1", "V1", decimal.NewFromInt(10))
	}))
	_ = s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		b, err := uow.Balances().Get(ctx, "L1", "V1")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(10)))
		return nil
	})
}

func TestStore_DeductSinFilaYNegativo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	err := s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Balances().Deduct(ctx, "L1", "V1", decimal.NewFromInt(1))
	})
	assert.ErrorIs(t, err, domain.ErrBalanceRowMissing)

	err = s.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Balances().Increment(ctx, "L1", "V1", decimal.NewFromInt(2)); err != nil {
			return err
		}
		return uow.Balances().Deduct(ctx, "L1", "V1", decimal.NewFromInt(3))
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)
}
