package repository

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// FiscalPeriodRepository puerto de períodos fiscales.
type FiscalPeriodRepository interface {
	// Get período del mes; nil si no existe fila (se considera abierto).
	Get(ctx context.Context, year, month int) (*entity.FiscalPeriod, error)
	Upsert(ctx context.Context, p *entity.FiscalPeriod) error
}
