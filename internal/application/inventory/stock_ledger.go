package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/inventory"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Availability resultado de bloquear una fila de saldo.
type Availability struct {
	Physical    decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
	AverageCost decimal.Decimal
}

// StockLedger bloqueo, validación y mutación de saldos. Todas sus operaciones corren en la
// transacción del caller y nunca abren la suya.
type StockLedger struct{}

// NewStockLedger construye el libro de stock.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// LockAvailabilityInTx bloquea la fila (ubicación, variante) hasta el fin de la transacción y calcula
// disponible = físico − reservas activas. Las reservas de excludeReferenceID no restan (son del propio caller).
// Sin fila, físico y costo son cero.
func (l *StockLedger) LockAvailabilityInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID, excludeReferenceID string) (Availability, error) {
	a := Availability{Physical: decimal.Zero, Reserved: decimal.Zero, Available: decimal.Zero, AverageCost: decimal.Zero}
	bal, err := uow.Balances().GetForUpdate(ctx, locationID, variantID)
	if err != nil {
		return a, err
	}
	if bal != nil {
		a.Physical = bal.Quantity
		a.AverageCost = bal.AverageCost
	}
	reserved, err := uow.Reservations().SumActive(ctx, locationID, variantID, excludeReferenceID)
	if err != nil {
		return a, err
	}
	a.Reserved = reserved
	a.Available = a.Physical.Sub(reserved)
	return a, nil
}

// LockAndValidateInTx bloquea la fila y valida que alcancen el físico y el disponible.
// Retorna el físico actual. Solo valida: la mutación es un paso aparte para que el caller valide
// todas las líneas antes de mutar ninguna.
func (l *StockLedger) LockAndValidateInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, required decimal.Decimal, excludeReferenceID string) (decimal.Decimal, error) {
	if locationID == "" || variantID == "" || !required.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	a, err := l.LockAvailabilityInTx(ctx, uow, locationID, variantID, excludeReferenceID)
	if err != nil {
		return decimal.Zero, err
	}
	shortage := &domain.StockShortageError{
		LocationID:       locationID,
		ProductVariantID: variantID,
		Required:         required,
		Physical:         a.Physical,
		Available:        a.Available,
	}
	if a.Physical.LessThan(required) {
		shortage.Kind = domain.ErrInsufficientPhysicalStock
		return a.Physical, shortage
	}
	if a.Available.LessThan(required) {
		shortage.Kind = domain.ErrInsufficientAvailableStock
		return a.Physical, shortage
	}
	return a.Physical, nil
}

// ValidateAndLockInTx LockAndValidateInTx sin excluir reservas.
func (l *StockLedger) ValidateAndLockInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	return l.LockAndValidateInTx(ctx, uow, locationID, variantID, qty, "")
}

// LockPhysicalInTx bloquea y valida solo contra el físico (mermas y ajustes negativos: la pérdida
// ya ocurrió aunque el stock esté reservado).
func (l *StockLedger) LockPhysicalInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, required decimal.Decimal) (decimal.Decimal, error) {
	if locationID == "" || variantID == "" || !required.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	a, err := l.LockAvailabilityInTx(ctx, uow, locationID, variantID, "")
	if err != nil {
		return decimal.Zero, err
	}
	if a.Physical.LessThan(required) {
		return a.Physical, &domain.StockShortageError{
			Kind:             domain.ErrInsufficientPhysicalStock,
			LocationID:       locationID,
			ProductVariantID: variantID,
			Required:         required,
			Physical:         a.Physical,
			Available:        a.Available,
		}
	}
	return a.Physical, nil
}

// IncrementStockInTx suma qty creando la fila si no existe.
func (l *StockLedger) IncrementStockInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	return uow.Balances().Increment(ctx, locationID, variantID, qty)
}

// DeductStockInTx resta qty. Supone que LockAndValidateInTx ya validó en esta transacción;
// una fila inexistente es un defecto del caller (domain.ErrBalanceRowMissing).
func (l *StockLedger) DeductStockInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if err := uow.Balances().Deduct(ctx, locationID, variantID, qty); err != nil {
		return fmt.Errorf("descontar %s de %s/%s: %w", qty, locationID, variantID, err)
	}
	return nil
}

// ReceiveAtCostInTx entrada con recálculo del costo promedio de la ubicación. Retorna el nuevo promedio.
func (l *StockLedger) ReceiveAtCostInTx(ctx context.Context, uow repository.UnitOfWork, locationID, variantID string, qty, unitCost decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() || unitCost.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if err := uow.Balances().Ensure(ctx, locationID, variantID); err != nil {
		return decimal.Zero, err
	}
	bal, err := uow.Balances().GetForUpdate(ctx, locationID, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	if bal == nil {
		return decimal.Zero, domain.ErrBalanceRowMissing
	}
	avg := inventory.ComputeWAC(bal.Quantity, bal.AverageCost, qty, unitCost)
	if err := l.IncrementStockInTx(ctx, uow, locationID, variantID, qty); err != nil {
		return decimal.Zero, err
	}
	if err := uow.Balances().SetAverageCost(ctx, locationID, variantID, avg); err != nil {
		return decimal.Zero, err
	}
	return avg, nil
}

// UpdateGlobalCostInTx recalcula el costo estándar de la variante como promedio ponderado sobre el
// stock de todas las ubicaciones, antes de sumar la entrada. Bloquea la variante.
func (l *StockLedger) UpdateGlobalCostInTx(ctx context.Context, uow repository.UnitOfWork, variantID string, qty, unitCost decimal.Decimal) (decimal.Decimal, error) {
	product, err := uow.Products().GetForUpdate(ctx, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("variante %s: %w", variantID, domain.ErrNotFound)
	}
	total, err := uow.Balances().TotalQuantity(ctx, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	cost := inventory.ComputeWAC(total, product.StandardCost, qty, unitCost)
	if err := uow.Products().UpdateStandardCost(ctx, variantID, cost); err != nil {
		return decimal.Zero, err
	}
	return cost, nil
}

// sortedKeys claves en orden determinista para adquirir bloqueos sin deadlocks.
func sortedKeys(m map[entity.BalanceKey]decimal.Decimal) []entity.BalanceKey {
	keys := make([]entity.BalanceKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []entity.BalanceKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
