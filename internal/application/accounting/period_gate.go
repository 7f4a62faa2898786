package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

type period struct{ year, month int }

// PeriodGate controla la contabilización por mes fiscal. El estado se cachea con TTL: un cierre
// concurrente puede, como mucho, rechazar tarde un asiento, lo cual es aceptable.
// Un mes sin fila se considera abierto.
type PeriodGate struct {
	tx    repository.TxRunner
	cache *expirable.LRU[period, string]
}

// NewPeriodGate construye la compuerta; ttl <= 0 usa un minuto.
func NewPeriodGate(tx repository.TxRunner, ttl time.Duration) *PeriodGate {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PeriodGate{
		tx:    tx,
		cache: expirable.NewLRU[period, string](256, nil, ttl),
	}
}

func (g *PeriodGate) statusInTx(ctx context.Context, uow repository.UnitOfWork, date time.Time) (string, error) {
	y, m := entity.PeriodOf(date)
	key := period{y, m}
	if st, ok := g.cache.Get(key); ok {
		return st, nil
	}
	p, err := uow.Periods().Get(ctx, y, m)
	if err != nil {
		return "", fmt.Errorf("leer período %d-%02d: %w", y, m, err)
	}
	st := entity.PeriodStatusOpen
	if p != nil {
		st = p.Status
	}
	g.cache.Add(key, st)
	return st, nil
}

// EnsureOpenInTx retorna domain.ErrClosedPeriod si la fecha cae en un mes cerrado.
func (g *PeriodGate) EnsureOpenInTx(ctx context.Context, uow repository.UnitOfWork, date time.Time) error {
	st, err := g.statusInTx(ctx, uow, date)
	if err != nil {
		return err
	}
	if st == entity.PeriodStatusClosed {
		y, m := entity.PeriodOf(date)
		return fmt.Errorf("%w: %d-%02d", domain.ErrClosedPeriod, y, m)
	}
	return nil
}

// IsOpen indica si se puede contabilizar en la fecha.
func (g *PeriodGate) IsOpen(ctx context.Context, date time.Time) (bool, error) {
	var st string
	err := g.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		st, err = g.statusInTx(ctx, uow, date)
		return err
	})
	return st != entity.PeriodStatusClosed, err
}

// OpenPeriod abre el mes.
func (g *PeriodGate) OpenPeriod(ctx context.Context, year, month int) error {
	return g.set(ctx, year, month, entity.PeriodStatusOpen)
}

// ClosePeriod cierra el mes: desde ahí se rechaza crear, contabilizar o anular asientos con fecha en él.
func (g *PeriodGate) ClosePeriod(ctx context.Context, year, month int) error {
	return g.set(ctx, year, month, entity.PeriodStatusClosed)
}

func (g *PeriodGate) set(ctx context.Context, year, month int, status string) error {
	if year < 1 || month < 1 || month > 12 {
		return domain.ErrInvalidInput
	}
	err := g.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Periods().Upsert(ctx, &entity.FiscalPeriod{
			Year: year, Month: month, Status: status, UpdatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}
	g.cache.Remove(period{year, month})
	return nil
}
