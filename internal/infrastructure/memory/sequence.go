package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/manufactura-erp/internal/application/ports"
)

var _ ports.Sequencer = (*Sequence)(nil)

// Sequence generador de números por clave en memoria (un solo proceso).
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewSequence construye el generador.
func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]int64)}
}

// NextSequence retorna "<key>-<n>" con n de seis dígitos.
func (s *Sequence) NextSequence(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return fmt.Sprintf("%s-%06d", key, s.counters[key]), nil
}
