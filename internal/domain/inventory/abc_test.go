package inventory_test

import (
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyABC_Limites valida las fronteras exactas 80 % y 95 %.
func TestClassifyABC_Limites(t *testing.T) {
	items := inventory.ClassifyABC([]inventory.ConsumptionValue{
		{ProductVariantID: "c", Value: d("5000")},
		{ProductVariantID: "a", Value: d("80000")},
		{ProductVariantID: "b", Value: d("15000")},
	})
	require.Len(t, items, 3)

	assert.Equal(t, "a", items[0].ProductVariantID)
	assert.Equal(t, inventory.ClassA, items[0].Class, "80.0 % acumulado es A")
	assert.True(t, items[0].CumulativePct.Equal(d("80")))

	assert.Equal(t, "b", items[1].ProductVariantID)
	assert.Equal(t, inventory.ClassB, items[1].Class, "95.0 % acumulado es B")
	assert.True(t, items[1].CumulativePct.Equal(d("95")))

	assert.Equal(t, "c", items[2].ProductVariantID)
	assert.Equal(t, inventory.ClassC, items[2].Class)
}

func TestClassifyABC_TotalCero(t *testing.T) {
	items := inventory.ClassifyABC([]inventory.ConsumptionValue{{ProductVariantID: "x", Value: d("0")}})
	require.Len(t, items, 1)
	assert.Equal(t, inventory.ClassC, items[0].Class)
}
