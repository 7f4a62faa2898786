package messaging

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/rs/zerolog"
)

var _ outbox.Publisher = LogPublisher{}

// LogPublisher escribe los eventos en el log; útil en desarrollo sin broker.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, event *entity.OutboxEvent) error {
	p.Log.Info().
		Str("event_id", event.ID).
		Str("topic", event.Topic).
		Str("key", event.Key).
		RawJSON("payload", event.Payload).
		Msg("evento publicado")
	return nil
}

func (LogPublisher) Close() error { return nil }
