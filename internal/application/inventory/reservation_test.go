package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reserveIn(ref, qty string) inventory.ReserveInput {
	return inventory.ReserveInput{
		ProductVariantID: "v1",
		LocationID:       "L1",
		Quantity:         d(qty),
		ReservedFor:      entity.ReservedForSalesOrder,
		ReferenceID:      ref,
	}
}

func TestReserve_NoTocaElFisico(t *testing.T) {
	f := setup(t)
	f.receive(t, "L1", "v1", "20", "10")

	res, err := f.res.Reserve(context.Background(), reserveIn("SO-1", "8"))
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusActive, res.Status)
	assertDec(t, "20", f.balance(t, "L1", "v1").Quantity)

	_, err = f.res.Reserve(context.Background(), inventory.ReserveInput{
		ProductVariantID: "v1", LocationID: "L1", Quantity: d("1"), ReservedFor: "OTRO", ReferenceID: "X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReserveUpTo_ReservaLoDisponible(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "20", "10")

	res, shortfall, err := f.res.ReserveUpTo(ctx, reserveIn("SO-1", "30"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assertDec(t, "20", res.Quantity)
	assertDec(t, "10", shortfall)

	res, shortfall, err = f.res.ReserveUpTo(ctx, reserveIn("SO-2", "5"))
	require.NoError(t, err)
	assert.Nil(t, res, "sin disponible no hay reserva")
	assertDec(t, "5", shortfall)
}

func TestFulfill_ParcialYTotal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "20", "10")
	res, err := f.res.Reserve(ctx, reserveIn("SO-1", "10"))
	require.NoError(t, err)

	partial, err := f.res.Fulfill(ctx, res.ID, d("4"))
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusActive, partial.Status)
	assertDec(t, "6", partial.Quantity)

	done, err := f.res.Fulfill(ctx, res.ID, d("6"))
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusFulfilled, done.Status)

	_, err = f.res.Fulfill(ctx, res.ID, d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "FULFILLED es terminal")
	_, err = f.res.Cancel(ctx, res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = f.res.Fulfill(ctx, "no-existe", d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_LiberaDisponible(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "10")
	res, err := f.res.Reserve(ctx, reserveIn("SO-1", "10"))
	require.NoError(t, err)

	_, err = f.res.Reserve(ctx, reserveIn("SO-2", "1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)

	cancelled, err := f.res.Cancel(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, cancelled.Status)

	_, err = f.res.Reserve(ctx, reserveIn("SO-2", "10"))
	assert.NoError(t, err)
}

func TestExpireStaleReservations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.receive(t, "L1", "v1", "10", "10")

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	stale := reserveIn("SO-1", "4")
	stale.ReservedUntil = &past
	fresh := reserveIn("SO-2", "3")
	fresh.ReservedUntil = &future
	_, err := f.res.Reserve(ctx, stale)
	require.NoError(t, err)
	_, err = f.res.Reserve(ctx, fresh)
	require.NoError(t, err)
	_, err = f.res.Reserve(ctx, reserveIn("SO-3", "1")) // sin vencimiento
	require.NoError(t, err)

	n, err := f.res.ExpireStaleReservations(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := f.uc.Availability(ctx, "L1", "v1")
	require.NoError(t, err)
	assertDec(t, "4", a.Reserved)
	assertDec(t, "6", a.Available)

	n, err = f.res.ExpireStaleReservations(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n, "el barrido es idempotente")
}
