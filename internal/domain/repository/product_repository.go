package repository

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository puerto de lectura de variantes y de su costo estándar global.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la variante para recalcular el costo global sin lecturas obsoletas.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStandardCost actualiza solo el costo promedio global (lo usa el motor de costeo).
	UpdateStandardCost(ctx context.Context, productID string, cost decimal.Decimal) error
}
