package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.FiscalPeriodRepository = (*FiscalPeriodRepo)(nil)

// FiscalPeriodRepo períodos fiscales sobre PostgreSQL (usable con pool o tx).
type FiscalPeriodRepo struct {
	q Querier
}

// NewFiscalPeriodRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalPeriodRepository(q Querier) *FiscalPeriodRepo {
	return &FiscalPeriodRepo{q: q}
}

// Get período del mes; nil si nunca se abrió ni cerró.
func (r *FiscalPeriodRepo) Get(ctx context.Context, year, month int) (*entity.FiscalPeriod, error) {
	var p entity.FiscalPeriod
	err := r.q.QueryRow(ctx, `
		SELECT year, month, status, updated_at FROM fiscal_periods WHERE year = $1 AND month = $2`,
		year, month).Scan(&p.Year, &p.Month, &p.Status, &p.UpdatedAt)
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal period: %w", err)
	}
	return &p, nil
}

// Upsert inserta o actualiza el estado del mes.
func (r *FiscalPeriodRepo) Upsert(ctx context.Context, p *entity.FiscalPeriod) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO fiscal_periods (year, month, status, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (year, month)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()`, p.Year, p.Month, p.Status)
	if err != nil {
		return fmt.Errorf("upsert fiscal period: %w", translate(err))
	}
	return nil
}
