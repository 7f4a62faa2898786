package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	fail   map[string]bool
	topics []string
}

func (f *fakePublisher) Publish(_ context.Context, ev *entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[ev.Topic] {
		return errors.New("broker no disponible")
	}
	f.topics = append(f.topics, ev.Topic)
	return nil
}

func enqueue(t *testing.T, s *memory.Store, topic string) {
	t.Helper()
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		return outbox.Enqueue(ctx, uow.Outbox(), topic, "k", map[string]string{"id": "1"})
	}))
}

func TestProcessor_PublicaYMarca(t *testing.T) {
	s := memory.NewStore()
	enqueue(t, s, entity.TopicMovementRecorded)
	enqueue(t, s, entity.TopicJournalPosted)

	pub := &fakePublisher{}
	p := outbox.NewProcessor(s, pub, zerolog.Nop())

	n, err := p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{entity.TopicMovementRecorded, entity.TopicJournalPosted}, pub.topics, "orden de encolado")
	assert.Empty(t, s.Pending())
}

func TestProcessor_FalloQuedaPendienteConError(t *testing.T) {
	s := memory.NewStore()
	enqueue(t, s, entity.TopicJournalPosted)

	pub := &fakePublisher{fail: map[string]bool{entity.TopicJournalPosted: true}}
	p := outbox.NewProcessor(s, pub, zerolog.Nop())

	n, err := p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "broker no disponible", pending[0].LastError)
	assert.Nil(t, pending[0].LockedAt, "el bloqueo se libera para reintentar")

	// Reintento exitoso
	pub.fail = nil
	n, err = p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, s.Pending())
}
