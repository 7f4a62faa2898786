package ports

import (
	"context"

	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
)

// ActivityLogger puerto de salida del registro de auditoría.
// Se invoca después del commit y en modo best-effort: su error nunca revierte la operación de negocio.
type ActivityLogger interface {
	LogActivity(ctx context.Context, event entity.ActivityEvent) error
}

// LogBestEffort registra el evento ignorando el error del sink.
func LogBestEffort(ctx context.Context, l ActivityLogger, event entity.ActivityEvent) {
	if l == nil {
		return
	}
	_ = l.LogActivity(ctx, event)
}
