package memory

import (
	"context"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.OutboxRepository = outboxRepo{}

type outboxRepo struct{ st *state }

func (r outboxRepo) Enqueue(_ context.Context, e *entity.OutboxEvent) error {
	if _, ok := r.st.outbox[e.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *e
	r.st.outbox[e.ID] = &c
	r.st.outboxOrder = append(r.st.outboxOrder, e.ID)
	return nil
}

func (r outboxRepo) Claim(_ context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, id := range r.st.outboxOrder {
		if len(out) >= limit {
			break
		}
		e := r.st.outbox[id]
		if e.PublishedAt != nil {
			continue
		}
		if e.LockedAt != nil && !e.LockedAt.Before(staleBefore) {
			continue
		}
		at := now
		e.LockedAt = &at
		e.LockedBy = workerID
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

func (r outboxRepo) MarkPublished(_ context.Context, id string, at time.Time) error {
	e, ok := r.st.outbox[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.PublishedAt = &at
	e.LockedAt = nil
	e.LockedBy = ""
	return nil
}

func (r outboxRepo) MarkFailed(_ context.Context, id string, reason string) error {
	e, ok := r.st.outbox[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Attempts++
	e.LastError = reason
	e.LockedAt = nil
	e.LockedBy = ""
	return nil
}

// Pending eventos aún no publicados, en orden de encolado (inspección en tests).
func (s *Store) Pending() []*entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.OutboxEvent
	for _, id := range s.state.outboxOrder {
		e := s.state.outbox[id]
		if e.PublishedAt == nil {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}
