package accounting

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

// AccountCodeCache resuelve código contable → ID con caché de proceso.
// Se inyecta explícitamente y ChartOfAccounts la invalida en cada cambio del plan de cuentas.
type AccountCodeCache struct {
	ids *lru.Cache[string, string]
}

// NewAccountCodeCache construye la caché; size <= 0 usa 1024 entradas.
func NewAccountCodeCache(size int) *AccountCodeCache {
	if size <= 0 {
		size = 1024
	}
	ids, _ := lru.New[string, string](size)
	return &AccountCodeCache{ids: ids}
}

// Resolve ID de la cuenta con el código dado. Un código ausente es un error de configuración
// (*domain.MissingAccountError), no un error de negocio.
func (c *AccountCodeCache) Resolve(ctx context.Context, uow repository.UnitOfWork, code string) (string, error) {
	if id, ok := c.ids.Get(code); ok {
		return id, nil
	}
	acc, err := uow.Accounts().GetByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("resolver cuenta %s: %w", code, err)
	}
	if acc == nil {
		return "", &domain.MissingAccountError{Code: code}
	}
	c.ids.Add(code, acc.ID)
	return acc.ID, nil
}

// Invalidate descarta los códigos indicados; sin argumentos vacía la caché.
func (c *AccountCodeCache) Invalidate(codes ...string) {
	if len(codes) == 0 {
		c.ids.Purge()
		return
	}
	for _, code := range codes {
		c.ids.Remove(code)
	}
}
