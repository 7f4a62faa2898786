package accounting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AccountSeed cuenta del cargue inicial del plan de cuentas.
type AccountSeed struct {
	Code     string `mapstructure:"code" json:"code"`
	Name     string `mapstructure:"name" json:"name"`
	Type     string `mapstructure:"type" json:"type"`
	Category string `mapstructure:"category" json:"category"`
}

// ChartOfAccounts mantiene el plan de cuentas e invalida la caché de códigos en cada cambio.
type ChartOfAccounts struct {
	tx    repository.TxRunner
	cache *AccountCodeCache
	log   zerolog.Logger
}

// NewChartOfAccounts construye el servicio.
func NewChartOfAccounts(tx repository.TxRunner, cache *AccountCodeCache, log zerolog.Logger) *ChartOfAccounts {
	return &ChartOfAccounts{tx: tx, cache: cache, log: log}
}

func validSeed(s AccountSeed) bool {
	return strings.TrimSpace(s.Code) != "" && strings.TrimSpace(s.Name) != "" && entity.ValidAccountType(s.Type)
}

// Create crea una cuenta. El código es único.
func (c *ChartOfAccounts) Create(ctx context.Context, in AccountSeed) (*entity.Account, error) {
	if !validSeed(in) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	acc := &entity.Account{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(in.Code),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Accounts().Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(acc.Code)
	return acc, nil
}

// List plan de cuentas ordenado por código.
func (c *ChartOfAccounts) List(ctx context.Context) ([]*entity.Account, error) {
	var out []*entity.Account
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		out, err = uow.Accounts().List(ctx)
		return err
	})
	return out, err
}

// Rename cambia nombre y categoría; permitido aun con líneas contabilizadas.
func (c *ChartOfAccounts) Rename(ctx context.Context, id, name, category string) (*entity.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidInput
	}
	var acc *entity.Account
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		if acc, err = c.get(ctx, uow, id); err != nil {
			return err
		}
		acc.Name = strings.TrimSpace(name)
		acc.Category = category
		acc.UpdatedAt = time.Now().UTC()
		return uow.Accounts().Update(ctx, acc)
	})
	return acc, err
}

// ChangeCode cambia el código; bloqueado cuando la cuenta tiene líneas contabilizadas.
func (c *ChartOfAccounts) ChangeCode(ctx context.Context, id, code string) (*entity.Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	var acc *entity.Account
	var oldCode string
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		if acc, err = c.get(ctx, uow, id); err != nil {
			return err
		}
		if err := c.ensureUnused(ctx, uow, acc); err != nil {
			return err
		}
		oldCode = acc.Code
		acc.Code = code
		acc.UpdatedAt = time.Now().UTC()
		return uow.Accounts().Update(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(oldCode, code)
	return acc, nil
}

// Delete elimina la cuenta; bloqueado cuando cualquier asiento, incluso en borrador, la usa.
func (c *ChartOfAccounts) Delete(ctx context.Context, id string) error {
	var code string
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		acc, err := c.get(ctx, uow, id)
		if err != nil {
			return err
		}
		if err := c.ensureUnreferenced(ctx, uow, acc); err != nil {
			return err
		}
		code = acc.Code
		return uow.Accounts().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	c.cache.Invalidate(code)
	return nil
}

// Bootstrap carga el plan de cuentas estático: crea los códigos que falten y no toca los existentes.
// Retorna cuántas cuentas creó.
func (c *ChartOfAccounts) Bootstrap(ctx context.Context, seeds []AccountSeed) (int, error) {
	created := 0
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		created = 0
		now := time.Now().UTC()
		for _, s := range seeds {
			if !validSeed(s) {
				return fmt.Errorf("cuenta %q: %w", s.Code, domain.ErrInvalidInput)
			}
			existing, err := uow.Accounts().GetByCode(ctx, s.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := uow.Accounts().Create(ctx, &entity.Account{
				ID:        uuid.New().String(),
				Code:      s.Code,
				Name:      s.Name,
				Type:      s.Type,
				Category:  s.Category,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	c.cache.Invalidate()
	c.log.Info().Int("created", created).Int("total", len(seeds)).Msg("plan de cuentas cargado")
	return created, nil
}

func (c *ChartOfAccounts) get(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.Account, error) {
	acc, err := uow.Accounts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	return acc, nil
}

func (c *ChartOfAccounts) ensureUnused(ctx context.Context, uow repository.UnitOfWork, acc *entity.Account) error {
	used, err := uow.Accounts().HasPostedLines(ctx, acc.ID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s", domain.ErrAccountInUse, acc.Code)
	}
	return nil
}

func (c *ChartOfAccounts) ensureUnreferenced(ctx context.Context, uow repository.UnitOfWork, acc *entity.Account) error {
	used, err := uow.Accounts().HasLines(ctx, acc.ID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s", domain.ErrAccountInUse, acc.Code)
	}
	return nil
}
