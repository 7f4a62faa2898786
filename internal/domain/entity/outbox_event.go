package entity

import (
	"encoding/json"
	"time"
)

// Tópicos publicados por el outbox después del commit.
const (
	TopicMovementRecorded = "inventory.movement.recorded"
	TopicJournalPosted    = "journal.entry.posted"
	TopicJournalVoided    = "journal.entry.voided"
)

// OutboxEvent evento escrito en la misma transacción del negocio y publicado después del commit.
// Un evento sin PublishedAt sigue pendiente; LastError guarda el último fallo para diagnóstico.
type OutboxEvent struct {
	ID          string
	Topic       string
	Key         string
	Payload     json.RawMessage
	Attempts    int
	LastError   string
	LockedAt    *time.Time
	LockedBy    string
	PublishedAt *time.Time
	CreatedAt   time.Time
}
