package repository

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// OutboxRepository puerto del outbox transaccional.
type OutboxRepository interface {
	Enqueue(ctx context.Context, e *entity.OutboxEvent) error
	// Claim toma hasta limit eventos pendientes no bloqueados (o con bloqueo vencido antes de staleBefore)
	// y los marca con workerID (FOR UPDATE SKIP LOCKED).
	Claim(ctx context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	// MarkFailed incrementa Attempts, guarda el error y libera el bloqueo para reintento.
	MarkFailed(ctx context.Context, id string, reason string) error
}
