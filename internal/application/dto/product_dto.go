package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para registrar una variante en el núcleo.
type CreateProductRequest struct {
	SKU                  string `json:"sku" validate:"required,min=1,max=100"`
	Name                 string `json:"name" validate:"required,min=1,max=200"`
	Category             string `json:"category" validate:"required,oneof=RAW_MATERIAL WORK_IN_PROGRESS FINISHED_GOOD CONSUMABLE MERCHANDISE"`
	InventoryAccountCode string `json:"inventory_account_code" validate:"max=20"`
	COGSAccountCode      string `json:"cogs_account_code" validate:"max=20"`
}

// ProductResponse salida de una variante. StandardCost es el promedio ponderado global.
type ProductResponse struct {
	ID                   string          `json:"id"`
	SKU                  string          `json:"sku"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	StandardCost         decimal.Decimal `json:"standard_cost"`
	InventoryAccountCode string          `json:"inventory_account_code,omitempty"`
	COGSAccountCode      string          `json:"cogs_account_code,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// BalanceResponse saldo de la variante en una ubicación.
type BalanceResponse struct {
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Value       decimal.Decimal `json:"value"`
}

// ProductStockResponse variante con su stock por ubicación.
type ProductStockResponse struct {
	Product  ProductResponse   `json:"product"`
	Balances []BalanceResponse `json:"balances"`
	Total    decimal.Decimal   `json:"total"`
}
