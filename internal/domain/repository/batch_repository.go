package repository

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// BatchRepository puerto de lotes.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// ListActiveForUpdate lotes ACTIVE con cantidad > 0, ordenados FIFO por ManufacturingDate, bloqueados.
	ListActiveForUpdate(ctx context.Context, locationID, variantID string) ([]*entity.Batch, error)
	Update(ctx context.Context, b *entity.Batch) error
}
