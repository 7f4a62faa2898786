package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto; determinan la cuenta de inventario por defecto.
const (
	CategoryRawMaterial    = "RAW_MATERIAL"
	CategoryWorkInProgress = "WORK_IN_PROGRESS"
	CategoryFinishedGood   = "FINISHED_GOOD"
	CategoryConsumable     = "CONSUMABLE"
	CategoryMerchandise    = "MERCHANDISE"
)

// Product variante de producto vista desde el núcleo contable.
// StandardCost es el promedio ponderado global (todas las ubicaciones), recalculado en cada recepción.
// InventoryAccountCode y COGSAccountCode sobrescriben los defaults de la categoría si no están vacíos.
type Product struct {
	ID                   string
	SKU                  string
	Name                 string
	Category             string
	StandardCost         decimal.Decimal
	InventoryAccountCode string
	COGSAccountCode      string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
