package repository

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// AccountRepository puerto del plan de cuentas.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByCode(ctx context.Context, code string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	Delete(ctx context.Context, id string) error
	// HasPostedLines true si la cuenta aparece en líneas de asientos POSTED o VOIDED.
	HasPostedLines(ctx context.Context, id string) (bool, error)
	// HasLines true si la cuenta aparece en cualquier línea, incluidos los borradores.
	HasLines(ctx context.Context, id string) (bool, error)
}
