package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase catálogo de variantes. El costo estándar y el stock solo cambian vía movimientos.
type ProductUseCase struct {
	tx repository.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx repository.TxRunner) *ProductUseCase {
	return &ProductUseCase{tx: tx}
}

func validCategory(c string) bool {
	switch c {
	case entity.CategoryRawMaterial, entity.CategoryWorkInProgress, entity.CategoryFinishedGood,
		entity.CategoryConsumable, entity.CategoryMerchandise:
		return true
	}
	return false
}

// Create registra una variante. StandardCost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" || !validCategory(in.Category) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:                   uuid.New().String(),
		SKU:                  strings.TrimSpace(in.SKU),
		Name:                 strings.TrimSpace(in.Name),
		Category:             in.Category,
		StandardCost:         decimal.Zero,
		InventoryAccountCode: in.InventoryAccountCode,
		COGSAccountCode:      in.COGSAccountCode,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene una variante; nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		product, err = uow.Products().GetByID(ctx, id)
		return err
	})
	if err != nil || product == nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Stock variante con su saldo por ubicación; nil si no existe.
func (uc *ProductUseCase) Stock(ctx context.Context, id string) (*dto.ProductStockResponse, error) {
	var (
		product  *entity.Product
		balances []*entity.InventoryBalance
	)
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		if product, err = uow.Products().GetByID(ctx, id); err != nil || product == nil {
			return err
		}
		balances, err = uow.Balances().ListByVariant(ctx, id)
		return err
	})
	if err != nil || product == nil {
		return nil, err
	}
	out := &dto.ProductStockResponse{
		Product:  *toProductResponse(product),
		Balances: make([]dto.BalanceResponse, 0, len(balances)),
		Total:    decimal.Zero,
	}
	for _, b := range balances {
		out.Balances = append(out.Balances, dto.BalanceResponse{
			LocationID:  b.LocationID,
			Quantity:    b.Quantity,
			AverageCost: b.AverageCost,
			Value:       b.Value(),
		})
		out.Total = out.Total.Add(b.Quantity)
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                   p.ID,
		SKU:                  p.SKU,
		Name:                 p.Name,
		Category:             p.Category,
		StandardCost:         p.StandardCost,
		InventoryAccountCode: p.InventoryAccountCode,
		COGSAccountCode:      p.COGSAccountCode,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
