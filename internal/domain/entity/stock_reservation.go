package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva. FULFILLED y CANCELLED son terminales.
const (
	ReservationStatusActive    = "ACTIVE"
	ReservationStatusFulfilled = "FULFILLED"
	ReservationStatusCancelled = "CANCELLED"
)

// Motivos de reserva.
const (
	ReservedForSalesOrder      = "SALES_ORDER"
	ReservedForProductionOrder = "PRODUCTION_ORDER"
	ReservedForTransferOrder   = "TRANSFER_ORDER"
)

// StockReservation retención blanda sobre el stock disponible. Nunca modifica la cantidad física,
// solo reduce la disponibilidad para otros solicitantes.
type StockReservation struct {
	ID               string
	ProductVariantID string
	LocationID       string
	Quantity         decimal.Decimal // cantidad retenida pendiente
	Status           string
	ReservedFor      string
	ReferenceID      string
	ReservedUntil    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive true si la reserva aún retiene stock.
func (r *StockReservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}
