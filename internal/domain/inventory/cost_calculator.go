package inventory

import "github.com/shopspring/decimal"

// ComputeWAC implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la suma de cantidades es cero (o negativa) no hay stock ni costo: retorna 0.
func ComputeWAC(existingQty, existingAvgCost, incomingQty, incomingUnitCost decimal.Decimal) decimal.Decimal {
	sum := existingQty.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := existingQty.Mul(existingAvgCost).Add(incomingQty.Mul(incomingUnitCost))
	return num.Div(sum)
}

// ConsumedMaterial material consumido por un lote de producción, valorizado a su costo unitario.
type ConsumedMaterial struct {
	ProductVariantID string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
}

// MaterialCost Σ(costo·cantidad) de los materiales consumidos.
func MaterialCost(materials []ConsumedMaterial) decimal.Decimal {
	total := decimal.Zero
	for _, m := range materials {
		total = total.Add(m.Quantity.Mul(m.UnitCost))
	}
	return total
}

// ComputeCOGM costo unitario de un lote producido (Cost of Goods Manufactured).
// unitCost = (Σ material·cantidad + costo de conversión) / cantidad producida.
// Un lote con rendimiento <= 0 tiene costo unitario cero por convención (no es error).
func ComputeCOGM(materials []ConsumedMaterial, conversionCost, yieldQty decimal.Decimal) decimal.Decimal {
	if yieldQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return MaterialCost(materials).Add(conversionCost).Div(yieldQty)
}
