// Package messaging publica los eventos del outbox en Kafka, Google Pub/Sub o el log.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/segmentio/kafka-go"
)

var _ outbox.Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher un writer para todos los tópicos; el tópico va en cada mensaje.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaPublisher construye el publicador sobre brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, timeout: 5 * time.Second}
}

// Publish escribe el evento; la clave conserva el orden por variante o asiento dentro de la partición.
func (p *KafkaPublisher) Publish(ctx context.Context, event *entity.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafkaMessage(event)); err != nil {
		return fmt.Errorf("kafka publish %s: %w", event.Topic, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func kafkaMessage(event *entity.OutboxEvent) kafka.Message {
	return kafka.Message{
		Topic: event.Topic,
		Key:   []byte(event.Key),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "event-type", Value: []byte(event.Topic)},
		},
	}
}
