package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de lote.
const (
	BatchStatusActive   = "ACTIVE"
	BatchStatusDepleted = "DEPLETED"
	BatchStatusExpired  = "EXPIRED"
)

// Batch lote: subpartición trazable del inventario de una ubicación.
// Se consume del más antiguo al más nuevo (FIFO por ManufacturingDate).
type Batch struct {
	ID                string
	BatchNumber       string
	ProductVariantID  string
	LocationID        string
	Quantity          decimal.Decimal
	ManufacturingDate time.Time
	ExpiryDate        *time.Time
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BatchConsumption cantidad tomada de un lote por una salida.
type BatchConsumption struct {
	BatchID     string
	BatchNumber string
	Quantity    decimal.Decimal
}
