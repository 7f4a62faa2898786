package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

// ConsumptionAnalysisUseCase clasificación ABC de variantes por valor consumido (salidas no anuladas).
type ConsumptionAnalysisUseCase struct {
	tx repository.TxRunner
}

// NewConsumptionAnalysisUseCase construye el caso de uso.
func NewConsumptionAnalysisUseCase(tx repository.TxRunner) *ConsumptionAnalysisUseCase {
	return &ConsumptionAnalysisUseCase{tx: tx}
}

// ClassifyConsumption ranking ABC del período [from, to].
func (uc *ConsumptionAnalysisUseCase) ClassifyConsumption(ctx context.Context, from, to time.Time) ([]inventory.ABCItem, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	var totals []repository.ConsumptionTotal
	err := uc.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		totals, err = uow.Movements().ConsumptionByVariant(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	values := make([]inventory.ConsumptionValue, 0, len(totals))
	for _, t := range totals {
		values = append(values, inventory.ConsumptionValue{ProductVariantID: t.ProductVariantID, Value: t.Value})
	}
	return inventory.ClassifyABC(values), nil
}
