// Package outbox publica después del commit los eventos escritos en la misma transacción del negocio.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Publisher adaptador de mensajería (Kafka, Pub/Sub, log).
type Publisher interface {
	Publish(ctx context.Context, event *entity.OutboxEvent) error
}

// Enqueue serializa payload y encola el evento en la transacción del caller.
func Enqueue(ctx context.Context, repo repository.OutboxRepository, topic, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outbox payload %s: %w", topic, err)
	}
	return repo.Enqueue(ctx, &entity.OutboxEvent{
		ID:        uuid.New().String(),
		Topic:     topic,
		Key:       key,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	})
}

// Processor reclama eventos pendientes, los publica y marca el resultado.
// Varios procesadores pueden correr a la vez: el reclamo usa FOR UPDATE SKIP LOCKED y un TTL de bloqueo.
type Processor struct {
	tx        repository.TxRunner
	publisher Publisher
	log       zerolog.Logger

	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

// NewProcessor construye el procesador con valores por defecto razonables.
func NewProcessor(tx repository.TxRunner, publisher Publisher, log zerolog.Logger) *Processor {
	return &Processor{
		tx:        tx,
		publisher: publisher,
		log:       log,
		WorkerID:  "outbox-" + uuid.New().String()[:8],
		BatchSize: 50,
		Interval:  2 * time.Second,
		LockTTL:   30 * time.Second,
	}
}

// Run procesa lotes cada Interval hasta que ctx se cancele.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := p.ProcessOnce(ctx); err != nil {
			p.log.Error().Err(err).Str("worker_id", p.WorkerID).Msg("outbox: fallo al reclamar eventos")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

// ProcessOnce reclama un lote y lo publica; retorna cuántos eventos quedaron publicados.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	staleBefore := now.Add(-p.LockTTL)

	var claimed []*entity.OutboxEvent
	err := p.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		claimed, err = uow.Outbox().Claim(ctx, p.WorkerID, p.BatchSize, now, staleBefore)
		return err
	})
	if err != nil {
		return 0, err
	}

	published := 0
	for _, ev := range claimed {
		if pubErr := p.publisher.Publish(ctx, ev); pubErr != nil {
			p.log.Warn().Err(pubErr).
				Str("worker_id", p.WorkerID).
				Str("event_id", ev.ID).
				Str("topic", ev.Topic).
				Int("attempts", ev.Attempts+1).
				Msg("outbox: publicación fallida, se reintentará")
			_ = p.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
				return uow.Outbox().MarkFailed(ctx, ev.ID, pubErr.Error())
			})
			continue
		}
		err := p.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			return uow.Outbox().MarkPublished(ctx, ev.ID, time.Now().UTC())
		})
		if err != nil {
			// El evento vuelve a reclamarse al vencer el TTL: entrega al menos una vez.
			p.log.Error().Err(err).Str("event_id", ev.ID).Msg("outbox: no se pudo marcar como publicado")
			continue
		}
		published++
	}
	return published, nil
}
