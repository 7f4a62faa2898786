package inventory

import (
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AllocateFIFO reparte qty entre los lotes (ya ordenados FIFO) y retorna lo tomado de cada uno.
// El segundo valor es la cantidad que los lotes no alcanzaron a cubrir (stock sin lote).
// No modifica los lotes recibidos.
func AllocateFIFO(batches []*entity.Batch, qty decimal.Decimal) ([]entity.BatchConsumption, decimal.Decimal) {
	remaining := qty
	var out []entity.BatchConsumption
	for _, b := range batches {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		if b.Status != entity.BatchStatusActive || !b.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		take := decimal.Min(b.Quantity, remaining)
		out = append(out, entity.BatchConsumption{BatchID: b.ID, BatchNumber: b.BatchNumber, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return out, remaining
}
