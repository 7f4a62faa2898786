// Package audit registra la actividad de negocio en un log dedicado.
package audit

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/rs/zerolog"
)

var _ ports.ActivityLogger = (*ActivityLogger)(nil)

// ActivityLogger escribe cada evento como una línea estructurada con el campo audit=true.
type ActivityLogger struct {
	log zerolog.Logger
}

// NewActivityLogger construye el sink sobre log.
func NewActivityLogger(log zerolog.Logger) *ActivityLogger {
	return &ActivityLogger{log: log.With().Bool("audit", true).Logger()}
}

func (a *ActivityLogger) LogActivity(_ context.Context, ev entity.ActivityEvent) error {
	e := a.log.Info().
		Str("action", ev.Action).
		Str("entity", ev.Entity).
		Str("entity_id", ev.EntityID).
		Str("actor", ev.Actor).
		Time("at", ev.At)
	if len(ev.Meta) > 0 {
		e = e.Interface("meta", ev.Meta)
	}
	e.Msg("actividad")
	return nil
}
