package redis

import (
	"context"
	"fmt"

	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	goredis "github.com/redis/go-redis/v9"
)

var _ ports.Sequencer = (*Sequence)(nil)

// Sequence números de documento con INCR: monótono por clave entre todas las réplicas.
// Un número tomado por una transacción que luego aborta queda como hueco.
type Sequence struct {
	rdb    *goredis.Client
	prefix string
}

// NewSequence construye el generador; las claves quedan bajo "<prefix>seq:<key>".
func NewSequence(rdb *goredis.Client, prefix string) *Sequence {
	return &Sequence{rdb: rdb, prefix: prefix}
}

// NextSequence retorna "<key>-<n>" con n de seis dígitos.
func (s *Sequence) NextSequence(ctx context.Context, key string) (string, error) {
	n, err := s.rdb.Incr(ctx, s.prefix+"seq:"+key).Result()
	if err != nil {
		return "", fmt.Errorf("next sequence %s: %w", key, err)
	}
	return formatSequence(key, n), nil
}

func formatSequence(key string, n int64) string {
	return fmt.Sprintf("%s-%06d", key, n)
}
