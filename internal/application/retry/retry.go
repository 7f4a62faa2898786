// Package retry re-ejecuta operaciones de negocio completas ante fallos de contención.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain"
)

// BaseDelay espera antes del segundo intento; se duplica en cada intento, con jitter.
var BaseDelay = 20 * time.Millisecond

// OnContention ejecuta fn hasta attempts veces mientras falle con domain.ErrContention.
// fn debe ser la operación completa (abre su propia transacción): las validaciones pueden dar otro
// resultado tras el reintento. Cualquier otro error se retorna sin reintentar.
func OnContention(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	delay := BaseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !domain.IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		wait := delay + time.Duration(rand.Int63n(int64(delay)+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return err
}
