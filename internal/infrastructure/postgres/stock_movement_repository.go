package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log append-only de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, type, product_variant_id, from_location_id, to_location_id, quantity, cost, reference,
	batch_id, sales_order_id, goods_receipt_id, purchase_order_id, production_order_id, voids_movement_id,
	created_by, created_at`

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.ID, m.Type, m.ProductVariantID, nullString(m.FromLocationID), nullString(m.ToLocationID),
		m.Quantity, m.Cost, m.Reference, nullString(m.BatchID), nullString(m.SalesOrderID),
		nullString(m.GoodsReceiptID), nullString(m.PurchaseOrderID), nullString(m.ProductionOrderID),
		nullString(m.VoidsMovementID), nullString(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock movement: %w", translate(err))
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var from, to, batch, so, gr, po, prod, voids, createdBy *string
	err := row.Scan(
		&m.ID, &m.Type, &m.ProductVariantID, &from, &to, &m.Quantity, &m.Cost, &m.Reference,
		&batch, &so, &gr, &po, &prod, &voids, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.FromLocationID, m.ToLocationID = stringOf(from), stringOf(to)
	m.BatchID, m.SalesOrderID = stringOf(batch), stringOf(so)
	m.GoodsReceiptID, m.PurchaseOrderID = stringOf(gr), stringOf(po)
	m.ProductionOrderID, m.VoidsMovementID = stringOf(prod), stringOf(voids)
	m.CreatedBy = stringOf(createdBy)
	return &m, nil
}

func (r *StockMovementRepo) one(ctx context.Context, query string, args ...any) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := r.one(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// FindVoiding movimiento VOID que compensa a movementID. El índice único parcial impide dos.
func (r *StockMovementRepo) FindVoiding(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	m, err := r.one(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE type = 'VOID' AND voids_movement_id = $1`, movementID)
	if err != nil {
		return nil, fmt.Errorf("find voiding movement: %w", err)
	}
	return m, nil
}

// ListUntil movimientos de la variante que tocan la ubicación hasta asOf, en orden cronológico.
func (r *StockMovementRepo) ListUntil(ctx context.Context, locationID, variantID string, asOf time.Time) ([]*entity.StockMovement, error) {
	list, err := r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE product_variant_id = $2 AND created_at <= $3
		  AND (from_location_id = $1 OR to_location_id = $1)
		ORDER BY created_at, id`, locationID, variantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list movements until: %w", err)
	}
	return list, nil
}

// ListByProductionOrder movimientos de una orden de producción.
func (r *StockMovementRepo) ListByProductionOrder(ctx context.Context, productionOrderID string) ([]*entity.StockMovement, error) {
	list, err := r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE production_order_id = $1 ORDER BY created_at, id`, productionOrderID)
	if err != nil {
		return nil, fmt.Errorf("list production movements: %w", err)
	}
	return list, nil
}

// ConsumptionByVariant valor consumido por salidas OUT no anuladas en [from, to].
func (r *StockMovementRepo) ConsumptionByVariant(ctx context.Context, from, to time.Time) ([]repository.ConsumptionTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.product_variant_id, SUM(m.quantity), SUM(m.quantity * COALESCE(m.cost, 0))
		FROM stock_movements m
		WHERE m.type = 'OUT' AND m.created_at BETWEEN $1 AND $2
		  AND NOT EXISTS (SELECT 1 FROM stock_movements v WHERE v.type = 'VOID' AND v.voids_movement_id = m.id)
		GROUP BY m.product_variant_id
		ORDER BY m.product_variant_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("consumption by variant: %w", err)
	}
	defer rows.Close()
	var out []repository.ConsumptionTotal
	for rows.Next() {
		var t repository.ConsumptionTotal
		if err := rows.Scan(&t.ProductVariantID, &t.Quantity, &t.Value); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
