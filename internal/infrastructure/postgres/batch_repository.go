package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, batch_number, product_variant_id, location_id, quantity, manufacturing_date,
	expiry_date, status, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.BatchNumber, &b.ProductVariantID, &b.LocationID, &b.Quantity,
		&b.ManufacturingDate, &b.ExpiryDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote; el número de lote es único.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `INSERT INTO batches (`+batchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.BatchNumber, b.ProductVariantID, b.LocationID, b.Quantity, b.ManufacturingDate,
		utcPtr(b.ExpiryDate), b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch: %w", translate(err))
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// ListActiveForUpdate lotes con saldo en orden FIFO, bloqueados.
func (r *BatchRepo) ListActiveForUpdate(ctx context.Context, locationID, variantID string) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM batches
		WHERE location_id = $1 AND product_variant_id = $2 AND status = 'ACTIVE' AND quantity > 0
		ORDER BY manufacturing_date, batch_number
		FOR UPDATE`, locationID, variantID)
	if err != nil {
		return nil, fmt.Errorf("list active batches: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Update guarda cantidad y estado del lote.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE batches SET quantity = $2, status = $3, updated_at = $4 WHERE id = $1`,
		b.ID, b.Quantity, b.Status, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update batch: %w", translate(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
