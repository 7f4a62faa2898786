package inventory_test

import (
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeWAC_Promedia(t *testing.T) {
	got := inventory.ComputeWAC(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")), "10@100 + 10@200 debe dar 150, obtuvo %s", got)
}

func TestComputeWAC_PrimeraEntrada(t *testing.T) {
	got := inventory.ComputeWAC(decimal.Zero, decimal.Zero, d("10"), d("100"))
	assert.True(t, got.Equal(d("100")))
}

func TestComputeWAC_SinStockNoDivide(t *testing.T) {
	got := inventory.ComputeWAC(decimal.Zero, d("50"), decimal.Zero, d("70"))
	assert.True(t, got.IsZero(), "sin cantidades el costo debe ser 0")
}

func TestComputeWAC_EntradaACostoCero(t *testing.T) {
	got := inventory.ComputeWAC(d("10"), d("100"), d("10"), decimal.Zero)
	assert.True(t, got.Equal(d("50")))
}

// ──────────────────────────────────────────────────────────────────────────────
// COGM
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeCOGM(t *testing.T) {
	materials := []inventory.ConsumedMaterial{
		{ProductVariantID: "harina", Quantity: d("10"), UnitCost: d("2")},
		{ProductVariantID: "azucar", Quantity: d("5"), UnitCost: d("4")},
	}
	got := inventory.ComputeCOGM(materials, d("60"), d("20"))
	// (20 + 20 + 60) / 20 = 5
	assert.True(t, got.Equal(d("5")), "obtuvo %s", got)
}

func TestComputeCOGM_RendimientoCero(t *testing.T) {
	materials := []inventory.ConsumedMaterial{{Quantity: d("1"), UnitCost: d("10")}}
	assert.True(t, inventory.ComputeCOGM(materials, d("5"), decimal.Zero).IsZero())
	assert.True(t, inventory.ComputeCOGM(materials, d("5"), d("-1")).IsZero())
}
