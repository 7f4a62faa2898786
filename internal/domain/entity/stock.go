package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBalance saldo físico de una variante en una ubicación, con su costo promedio ponderado.
// Se crea de forma perezosa con el primer movimiento hacia la ubicación.
// Quantity nunca es negativa; solo la mutan la validación de stock y el motor de costeo.
type InventoryBalance struct {
	LocationID       string
	ProductVariantID string
	Quantity         decimal.Decimal
	AverageCost      decimal.Decimal
	UpdatedAt        time.Time
}

// Value valor del saldo a costo promedio.
func (b *InventoryBalance) Value() decimal.Decimal {
	return b.Quantity.Mul(b.AverageCost)
}

// BalanceKey identifica una fila de saldo (unidad de contención).
type BalanceKey struct {
	LocationID       string
	ProductVariantID string
}

// Less orden determinista para adquirir bloqueos sin deadlocks.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.LocationID != o.LocationID {
		return k.LocationID < o.LocationID
	}
	return k.ProductVariantID < o.ProductVariantID
}
