package ports

import "context"

// Sequencer puerto de salida para números de documento legibles (ej. "JE-000042").
// Debe ser monótono por clave; los huecos se toleran (una transacción abortada consume su número).
type Sequencer interface {
	NextSequence(ctx context.Context, key string) (string, error)
}
