package inventory_test

import (
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFIFO(t *testing.T) {
	batches := []*entity.Batch{
		{ID: "1", BatchNumber: "L-001", Quantity: d("4"), Status: entity.BatchStatusActive},
		{ID: "2", BatchNumber: "L-002", Quantity: d("0"), Status: entity.BatchStatusDepleted},
		{ID: "3", BatchNumber: "L-003", Quantity: d("10"), Status: entity.BatchStatusActive},
	}

	got, rest := inventory.AllocateFIFO(batches, d("7"))
	require.Len(t, got, 2)
	assert.Equal(t, "L-001", got[0].BatchNumber)
	assert.True(t, got[0].Quantity.Equal(d("4")))
	assert.Equal(t, "L-003", got[1].BatchNumber)
	assert.True(t, got[1].Quantity.Equal(d("3")))
	assert.True(t, rest.IsZero())
	assert.True(t, batches[0].Quantity.Equal(d("4")), "no debe mutar los lotes")
}

func TestAllocateFIFO_Faltante(t *testing.T) {
	batches := []*entity.Batch{{ID: "1", Quantity: d("2"), Status: entity.BatchStatusActive}}
	got, rest := inventory.AllocateFIFO(batches, d("5"))
	require.Len(t, got, 1)
	assert.True(t, rest.Equal(d("3")))
}
