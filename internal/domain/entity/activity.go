package entity

import "time"

// ActivityEvent evento de auditoría (best-effort, fuera de la transacción).
type ActivityEvent struct {
	Action   string
	Entity   string
	EntityID string
	Actor    string
	Meta     map[string]any
	At       time.Time
}
