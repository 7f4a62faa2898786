package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/pkg/config"
	"google.golang.org/api/option"
)

var _ outbox.Publisher = (*PubSubPublisher)(nil)

// PubSubPublisher publica en Google Pub/Sub; los tópicos se abren una vez y se reutilizan.
type PubSubPublisher struct {
	client *pubsub.Client
	prefix string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPubSubPublisher crea el cliente con credenciales explícitas o Application Default Credentials.
func NewPubSubPublisher(ctx context.Context, cfg config.PubSubConfig) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client %s: %w", cfg.ProjectID, err)
	}
	return &PubSubPublisher{client: client, prefix: cfg.TopicPrefix, topics: make(map[string]*pubsub.Topic)}, nil
}

func (p *PubSubPublisher) topic(name string) *pubsub.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.topics[name]
	if !ok {
		t = p.client.Topic(topicName(p.prefix, name))
		t.EnableMessageOrdering = true
		p.topics[name] = t
	}
	return t
}

// Publish espera la confirmación del servidor antes de retornar.
func (p *PubSubPublisher) Publish(ctx context.Context, event *entity.OutboxEvent) error {
	t := p.topic(event.Topic)
	res := t.Publish(ctx, pubsubMessage(event))
	if _, err := res.Get(ctx); err != nil {
		// Con orden por clave, un fallo pausa esa clave hasta reanudarla.
		t.ResumePublish(event.Key)
		return fmt.Errorf("pubsub publish %s: %w", event.Topic, err)
	}
	return nil
}

// Close detiene los tópicos abiertos y cierra el cliente.
func (p *PubSubPublisher) Close() error {
	p.mu.Lock()
	for _, t := range p.topics {
		t.Stop()
	}
	p.mu.Unlock()
	return p.client.Close()
}

// topicName "inventory.movement.recorded" -> "<prefix>inventory-movement-recorded".
func topicName(prefix, topic string) string {
	return prefix + strings.ReplaceAll(topic, ".", "-")
}

func pubsubMessage(event *entity.OutboxEvent) *pubsub.Message {
	return &pubsub.Message{
		Data:        event.Payload,
		OrderingKey: event.Key,
		Attributes: map[string]string{
			"event_id":   event.ID,
			"event_type": event.Topic,
		},
	}
}
