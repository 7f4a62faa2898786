package retry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/retry"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/stretchr/testify/assert"
)

func init() { retry.BaseDelay = time.Millisecond }

func TestOnContention_ReintentaHastaExito(t *testing.T) {
	calls := 0
	err := retry.OnContention(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("lock: %w", domain.ErrContention)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestOnContention_NoReintentaValidacion(t *testing.T) {
	calls := 0
	err := retry.OnContention(context.Background(), 5, func(context.Context) error {
		calls++
		return domain.ErrInsufficientPhysicalStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPhysicalStock)
	assert.Equal(t, 1, calls, "los errores de validación nunca se reintentan")
}

func TestOnContention_AgotaIntentos(t *testing.T) {
	calls := 0
	err := retry.OnContention(context.Background(), 2, func(context.Context) error {
		calls++
		return domain.ErrContention
	})
	assert.ErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 2, calls)
}
