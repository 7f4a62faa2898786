package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo reservas de stock sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, product_variant_id, location_id, quantity, status, reserved_for, reference_id,
	reserved_until, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var res entity.StockReservation
	err := row.Scan(&res.ID, &res.ProductVariantID, &res.LocationID, &res.Quantity, &res.Status,
		&res.ReservedFor, &res.ReferenceID, &res.ReservedUntil, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	_, err := r.q.Exec(ctx, `INSERT INTO stock_reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, res.ProductVariantID, res.LocationID, res.Quantity, res.Status, res.ReservedFor,
		res.ReferenceID, utcPtr(res.ReservedUntil), res.CreatedAt, res.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create reservation: %w", translate(err))
	}
	return nil
}

// GetForUpdate obtiene la reserva y bloquea la fila.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM stock_reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation for update: %w", translate(err))
	}
	return res, nil
}

// Update guarda cantidad pendiente y estado.
func (r *ReservationRepo) Update(ctx context.Context, res *entity.StockReservation) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_reservations SET quantity = $2, status = $3, reserved_until = $4, updated_at = $5
		WHERE id = $1`, res.ID, res.Quantity, res.Status, utcPtr(res.ReservedUntil), res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update reservation: %w", translate(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumActive total reservado ACTIVE de la clave, sin las reservas de excludeReferenceID.
func (r *ReservationRepo) SumActive(ctx context.Context, locationID, variantID, excludeReferenceID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_reservations
		WHERE location_id = $1 AND product_variant_id = $2 AND status = 'ACTIVE'
		  AND ($3 = '' OR reference_id <> $3)`, locationID, variantID, excludeReferenceID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active reservations: %w", translate(err))
	}
	return total, nil
}

// ListActiveByReference reservas ACTIVE del documento, más antiguas primero, bloqueadas.
func (r *ReservationRepo) ListActiveByReference(ctx context.Context, referenceID, locationID, variantID string) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+reservationColumns+` FROM stock_reservations
		WHERE reference_id = $1 AND location_id = $2 AND product_variant_id = $3 AND status = 'ACTIVE'
		ORDER BY created_at, id
		FOR UPDATE`, referenceID, locationID, variantID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by reference: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// ExpireBefore cancela las reservas ACTIVE vencidas.
func (r *ReservationRepo) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_reservations SET status = 'CANCELLED', updated_at = $1
		WHERE status = 'ACTIVE' AND reserved_until IS NOT NULL AND reserved_until < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("expire reservations: %w", translate(err))
	}
	return int(cmd.RowsAffected()), nil
}
