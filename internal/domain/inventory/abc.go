package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Clases ABC por valor de consumo.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

var (
	hundred    = decimal.NewFromInt(100)
	thresholdA = decimal.NewFromInt(80)
	thresholdB = decimal.NewFromInt(95)
)

// ConsumptionValue valor consumido de una variante en el período analizado.
type ConsumptionValue struct {
	ProductVariantID string
	Value            decimal.Decimal
}

// ABCItem resultado de la clasificación.
type ABCItem struct {
	ProductVariantID string
	Value            decimal.Decimal
	SharePct         decimal.Decimal
	CumulativePct    decimal.Decimal
	Class            string
}

// ClassifyABC ordena por valor descendente y clasifica por porcentaje acumulado:
// A hasta 80 % inclusive, B hasta 95 % inclusive, C el resto.
// Con total cero todas las variantes quedan en C.
func ClassifyABC(values []ConsumptionValue) []ABCItem {
	sorted := make([]ConsumptionValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Value.Equal(sorted[j].Value) {
			return sorted[i].Value.GreaterThan(sorted[j].Value)
		}
		return sorted[i].ProductVariantID < sorted[j].ProductVariantID
	})

	total := decimal.Zero
	for _, v := range sorted {
		total = total.Add(v.Value)
	}

	items := make([]ABCItem, 0, len(sorted))
	cumulative := decimal.Zero
	for _, v := range sorted {
		item := ABCItem{ProductVariantID: v.ProductVariantID, Value: v.Value, Class: ClassC}
		if total.GreaterThan(decimal.Zero) {
			cumulative = cumulative.Add(v.Value)
			item.SharePct = v.Value.Div(total).Mul(hundred)
			item.CumulativePct = cumulative.Div(total).Mul(hundred)
			switch {
			case item.CumulativePct.LessThanOrEqual(thresholdA):
				item.Class = ClassA
			case item.CumulativePct.LessThanOrEqual(thresholdB):
				item.Class = ClassB
			}
		}
		items = append(items, item)
	}
	return items
}
