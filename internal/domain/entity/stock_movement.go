package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada (producción, devoluciones)
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre ubicaciones
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste (+ con destino, - con origen)
	MovementTypePURCHASE   = "PURCHASE"   // recepción de compra
	MovementTypeVOID       = "VOID"       // compensación de un movimiento anterior
)

// StockMovement registro inmutable del log de movimientos (append-only).
// Es la fuente de verdad para recalcular el stock a una fecha.
// FromLocationID se informa en salidas, ToLocationID en entradas; TRANSFER informa ambos.
type StockMovement struct {
	ID                string
	Type              string
	ProductVariantID  string
	FromLocationID    string
	ToLocationID      string
	Quantity          decimal.Decimal // siempre > 0; la dirección la dan las ubicaciones
	Cost              *decimal.Decimal
	Reference         string // número de documento de negocio
	BatchID           string
	SalesOrderID      string
	GoodsReceiptID    string
	PurchaseOrderID   string
	ProductionOrderID string
	VoidsMovementID   string
	CreatedBy         string
	CreatedAt         time.Time
}

// UnitCost costo unitario registrado, o cero si no se informó.
func (m *StockMovement) UnitCost() decimal.Decimal {
	if m.Cost == nil {
		return decimal.Zero
	}
	return *m.Cost
}

// Value cantidad por costo unitario.
func (m *StockMovement) Value() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost())
}

// IsInbound true si el movimiento solo agrega stock (sin validación de suficiencia).
func (m *StockMovement) IsInbound() bool {
	return m.ToLocationID != "" && m.FromLocationID == ""
}

// IsOutbound true si el movimiento solo retira stock.
func (m *StockMovement) IsOutbound() bool {
	return m.FromLocationID != "" && m.ToLocationID == ""
}

// Delta efecto firmado del movimiento sobre una ubicación.
func (m *StockMovement) Delta(locationID string) decimal.Decimal {
	d := decimal.Zero
	if m.ToLocationID == locationID {
		d = d.Add(m.Quantity)
	}
	if m.FromLocationID == locationID {
		d = d.Sub(m.Quantity)
	}
	return d
}
