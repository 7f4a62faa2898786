// Package redis adapta Redis para números de documento y bloqueos entre réplicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/manufactura-erp/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect abre el cliente y verifica la conexión con reintentos acotados por ctx.
func Connect(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	for attempt := 1; ; attempt++ {
		err := rdb.Ping(ctx).Err()
		if err == nil {
			log.Info().Str("addr", cfg.Addr).Int("attempt", attempt).Msg("redis conectado")
			return rdb, nil
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		log.Warn().Err(err).Str("addr", cfg.Addr).Int("attempt", attempt).Dur("retry_in", sleep).Msg("redis no disponible")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, fmt.Errorf("conectar redis %s: %w", cfg.Addr, err)
		case <-time.After(sleep):
		}
	}
}

// Locker bloqueo distribuido para que un job periódico corra en una sola réplica a la vez.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker construye el bloqueo sobre rdb; ttl es la vida máxima del bloqueo.
func NewLocker(rdb *goredis.Client, ttl time.Duration) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

// RunExclusive ejecuta fn si obtiene el bloqueo key; si otra réplica lo tiene retorna (false, nil).
func (l *Locker) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if err == redislock.ErrNotObtained {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	return true, fn(ctx)
}
