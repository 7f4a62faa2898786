package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo outbox transaccional sobre PostgreSQL (usable con pool o tx).
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta el evento en la transacción del negocio.
func (r *OutboxRepo) Enqueue(ctx context.Context, e *entity.OutboxEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox_events (id, topic, key, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)`, e.ID, e.Topic, e.Key, []byte(e.Payload), e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("enqueue outbox event: %w", translate(err))
	}
	return nil
}

// Claim marca hasta limit eventos pendientes para workerID. SKIP LOCKED permite varios workers
// sin que dos tomen el mismo evento.
func (r *OutboxRepo) Claim(ctx context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*entity.OutboxEvent, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE outbox_events SET locked_at = $2, locked_by = $1
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE published_at IS NULL AND (locked_at IS NULL OR locked_at < $3)
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, topic, key, payload, attempts, COALESCE(last_error, ''), locked_at, locked_by, created_at`,
		workerID, now, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", translate(err))
	}
	defer rows.Close()
	var list []*entity.OutboxEvent
	for rows.Next() {
		var e entity.OutboxEvent
		var payload []byte
		var lockedBy *string
		if err := rows.Scan(&e.ID, &e.Topic, &e.Key, &payload, &e.Attempts, &e.LastError,
			&e.LockedAt, &lockedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		e.LockedBy = stringOf(lockedBy)
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

// MarkPublished registra la publicación y libera el bloqueo.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE outbox_events SET published_at = $2, locked_at = NULL, locked_by = NULL WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed suma un intento, guarda el error y libera el bloqueo para reintento.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE outbox_events SET attempts = attempts + 1, last_error = $2, locked_at = NULL, locked_by = NULL
		WHERE id = $1`, id, reason)
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
