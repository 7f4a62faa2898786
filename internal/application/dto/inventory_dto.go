package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body genérico para POST /api/inventory/movements.
// El tipo decide qué campos se usan: PURCHASE/IN (location_id, unit_cost), OUT (location_id y
// sales_order_id o production_order_id), TRANSFER (from/to), ADJUSTMENT (location_id, quantity con signo).
type RegisterMovementRequest struct {
	ProductVariantID  string           `json:"product_variant_id" validate:"required"`
	LocationID        string           `json:"location_id,omitempty"`
	FromLocationID    string           `json:"from_location_id,omitempty"`
	ToLocationID      string           `json:"to_location_id,omitempty"`
	Type              string           `json:"type" validate:"required,oneof=IN PURCHASE OUT TRANSFER ADJUSTMENT"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference         string           `json:"reference,omitempty" validate:"max=100"`
	SalesOrderID      string           `json:"sales_order_id,omitempty"`
	ProductionOrderID string           `json:"production_order_id,omitempty"`
	TransferOrderID   string           `json:"transfer_order_id,omitempty"`
	GoodsReceiptID    string           `json:"goods_receipt_id,omitempty"`
	PurchaseOrderID   string           `json:"purchase_order_id,omitempty"`
	BatchNumber       string           `json:"batch_number,omitempty" validate:"max=100"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
}

// IssueLineRequest línea de una salida.
type IssueLineRequest struct {
	LocationID       string          `json:"location_id" validate:"required"`
	ProductVariantID string          `json:"product_variant_id" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// IssueStockRequest body para POST /api/inventory/issues.
type IssueStockRequest struct {
	Lines             []IssueLineRequest `json:"lines" validate:"required,min=1,dive"`
	SalesOrderID      string             `json:"sales_order_id,omitempty" validate:"required_without=ProductionOrderID"`
	ProductionOrderID string             `json:"production_order_id,omitempty"`
	Reference         string             `json:"reference,omitempty" validate:"max=100"`
}

// ProductionRequest body para POST /api/inventory/production.
type ProductionRequest struct {
	ProductionOrderID string             `json:"production_order_id" validate:"required"`
	Materials         []IssueLineRequest `json:"materials" validate:"required,min=1,dive"`
	OutputLocationID  string             `json:"output_location_id" validate:"required"`
	OutputVariantID   string             `json:"output_variant_id" validate:"required"`
	YieldQuantity     decimal.Decimal    `json:"yield_quantity"`
	ConversionCost    decimal.Decimal    `json:"conversion_cost"`
	BatchNumber       string             `json:"batch_number,omitempty" validate:"max=100"`
	ExpiryDate        *time.Time         `json:"expiry_date,omitempty"`
	Reference         string             `json:"reference,omitempty" validate:"max=100"`
}

// VoidMovementRequest body para POST /api/inventory/movements/:id/void.
type VoidMovementRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	ProductVariantID  string          `json:"product_variant_id"`
	FromLocationID    string          `json:"from_location_id,omitempty"`
	ToLocationID      string          `json:"to_location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Reference         string          `json:"reference,omitempty"`
	BatchID           string          `json:"batch_id,omitempty"`
	SalesOrderID      string          `json:"sales_order_id,omitempty"`
	ProductionOrderID string          `json:"production_order_id,omitempty"`
	VoidsMovementID   string          `json:"voids_movement_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// MovementResultResponse movimientos escritos y asientos generados por una operación.
type MovementResultResponse struct {
	Movements  []MovementResponse `json:"movements"`
	JournalIDs []string           `json:"journal_ids"`
	UnitCost   decimal.Decimal    `json:"unit_cost"`
}

// AvailabilityResponse saldo de una (ubicación, variante).
type AvailabilityResponse struct {
	LocationID       string          `json:"location_id"`
	ProductVariantID string          `json:"product_variant_id"`
	Physical         decimal.Decimal `json:"physical"`
	Reserved         decimal.Decimal `json:"reserved"`
	Available        decimal.Decimal `json:"available"`
	AverageCost      decimal.Decimal `json:"average_cost"`
}

// StockAtResponse stock recalculado a una fecha.
type StockAtResponse struct {
	LocationID       string          `json:"location_id"`
	ProductVariantID string          `json:"product_variant_id"`
	AsOf             time.Time       `json:"as_of"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	ProductVariantID string          `json:"product_variant_id" validate:"required"`
	LocationID       string          `json:"location_id" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedFor      string          `json:"reserved_for" validate:"required,oneof=SALES_ORDER PRODUCTION_ORDER TRANSFER_ORDER"`
	ReferenceID      string          `json:"reference_id" validate:"required"`
	ReservedUntil    *time.Time      `json:"reserved_until,omitempty"`
	// AllowPartial reserva lo disponible y reporta el faltante en lugar de fallar.
	AllowPartial bool `json:"allow_partial"`
}

// FulfillReservationRequest body para POST /api/reservations/:id/fulfill.
type FulfillReservationRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID               string          `json:"id"`
	ProductVariantID string          `json:"product_variant_id"`
	LocationID       string          `json:"location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	Status           string          `json:"status"`
	ReservedFor      string          `json:"reserved_for"`
	ReferenceID      string          `json:"reference_id"`
	ReservedUntil    *time.Time      `json:"reserved_until,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ReserveResponse reserva creada (puede faltar si no había disponible) y cantidad no cubierta.
type ReserveResponse struct {
	Reservation *ReservationResponse `json:"reservation,omitempty"`
	Shortfall   decimal.Decimal      `json:"shortfall"`
}

// ABCItemResponse clasificación ABC de una variante por valor consumido.
type ABCItemResponse struct {
	ProductVariantID string          `json:"product_variant_id"`
	Value            decimal.Decimal `json:"value"`
	SharePct         decimal.Decimal `json:"share_pct"`
	CumulativePct    decimal.Decimal `json:"cumulative_pct"`
	Class            string          `json:"class"`
}

// StockQuery filtros de GET /api/inventory/availability y /stock-at. AsOf en RFC3339; vacío es ahora.
type StockQuery struct {
	LocationID       string `query:"location_id" validate:"required"`
	ProductVariantID string `query:"product_variant_id" validate:"required"`
	AsOf             string `query:"as_of" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
