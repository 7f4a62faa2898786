package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryBalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldos por (ubicación, variante) sobre inventory_balances (usable con pool o tx).
// La tabla tiene CHECK (quantity >= 0): es la última barrera contra el stock negativo.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `location_id, product_variant_id, quantity, average_cost, updated_at`

func (r *BalanceRepo) get(ctx context.Context, query, locationID, variantID string) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	err := r.q.QueryRow(ctx, query, locationID, variantID).Scan(
		&b.LocationID, &b.ProductVariantID, &b.Quantity, &b.AverageCost, &b.UpdatedAt,
	)
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Get lee el saldo sin bloquear.
func (r *BalanceRepo) Get(ctx context.Context, locationID, variantID string) (*entity.InventoryBalance, error) {
	b, err := r.get(ctx, `SELECT `+balanceColumns+` FROM inventory_balances
		WHERE location_id = $1 AND product_variant_id = $2`, locationID, variantID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, locationID, variantID string) (*entity.InventoryBalance, error) {
	b, err := r.get(ctx, `SELECT `+balanceColumns+` FROM inventory_balances
		WHERE location_id = $1 AND product_variant_id = $2
		FOR UPDATE`, locationID, variantID)
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", translate(err))
	}
	return b, nil
}

// Ensure crea la fila en cero si no existe.
func (r *BalanceRepo) Ensure(ctx context.Context, locationID, variantID string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_balances (location_id, product_variant_id, quantity, average_cost, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (location_id, product_variant_id) DO NOTHING`, locationID, variantID)
	if err != nil {
		return fmt.Errorf("ensure balance: %w", translate(err))
	}
	return nil
}

// Increment suma qty creando la fila si no existe.
func (r *BalanceRepo) Increment(ctx context.Context, locationID, variantID string, qty decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_balances (location_id, product_variant_id, quantity, average_cost, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (location_id, product_variant_id)
		DO UPDATE SET quantity = inventory_balances.quantity + EXCLUDED.quantity, updated_at = now()`,
		locationID, variantID, qty)
	if err != nil {
		return fmt.Errorf("increment balance: %w", translate(err))
	}
	return nil
}

// Deduct resta qty solo si alcanza; si no, distingue fila inexistente de faltante.
func (r *BalanceRepo) Deduct(ctx context.Context, locationID, variantID string, qty decimal.Decimal) error {
	var remaining decimal.Decimal
	err := r.q.QueryRow(ctx, `
		UPDATE inventory_balances SET quantity = quantity - $3, updated_at = now()
		WHERE location_id = $1 AND product_variant_id = $2 AND quantity >= $3
		RETURNING quantity`, locationID, variantID, qty).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errNoRows(err) {
		return fmt.Errorf("deduct balance: %w", translate(err))
	}
	current, err := r.Get(ctx, locationID, variantID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrBalanceRowMissing
	}
	return &domain.StockShortageError{
		Kind:             domain.ErrInsufficientPhysicalStock,
		LocationID:       locationID,
		ProductVariantID: variantID,
		Required:         qty,
		Physical:         current.Quantity,
		Available:        current.Quantity,
	}
}

// SetAverageCost fija el costo promedio de la fila.
func (r *BalanceRepo) SetAverageCost(ctx context.Context, locationID, variantID string, cost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_balances SET average_cost = $3, updated_at = now()
		WHERE location_id = $1 AND product_variant_id = $2`, locationID, variantID, cost)
	if err != nil {
		return fmt.Errorf("set average cost: %w", translate(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBalanceRowMissing
	}
	return nil
}

// TotalQuantity stock físico de la variante en todas las ubicaciones.
func (r *BalanceRepo) TotalQuantity(ctx context.Context, variantID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM inventory_balances WHERE product_variant_id = $1`,
		variantID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total quantity: %w", err)
	}
	return total, nil
}

// ListByVariant saldos de la variante ordenados por ubicación.
func (r *BalanceRepo) ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryBalance, error) {
	rows, err := r.q.Query(ctx, `SELECT `+balanceColumns+` FROM inventory_balances
		WHERE product_variant_id = $1 ORDER BY location_id`, variantID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryBalance
	for rows.Next() {
		var b entity.InventoryBalance
		if err := rows.Scan(&b.LocationID, &b.ProductVariantID, &b.Quantity, &b.AverageCost, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
