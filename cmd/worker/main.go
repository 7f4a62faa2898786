package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/jhoicas/manufactura-erp/internal/application/outbox"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/messaging"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/manufactura-erp/internal/infrastructure/redis"
	"github.com/jhoicas/manufactura-erp/pkg/config"
	"github.com/jhoicas/manufactura-erp/pkg/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const sweepLockKey = "reservations:expire"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	txRunner := postgres.NewTxRunner(pool)

	publisher, closer, err := newPublisher(ctx, cfg, log.Component("publisher"))
	if err != nil {
		log.Fatal().Err(err).Str("publisher", cfg.Outbox.Publisher).Msg("publicador del outbox")
	}
	defer closer.Close()

	processor := outbox.NewProcessor(txRunner, publisher, log.Component("outbox"))
	processor.BatchSize = cfg.Outbox.BatchSize
	processor.Interval = cfg.Outbox.Interval
	processor.LockTTL = cfg.Outbox.LockTTL

	reservations := inventory.NewReservationManager(txRunner, inventory.NewStockLedger(), log.Component("reservations"))

	// Sin Redis el barrido corre en cada réplica; ExpireBefore es idempotente.
	var locker *infraredis.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.Connect(ctx, cfg.Redis, log.Component("redis"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Outbox.SweepInterval)
	}

	log.Info().
		Str("worker_id", processor.WorkerID).
		Str("publisher", cfg.Outbox.Publisher).
		Dur("interval", processor.Interval).
		Msg("worker iniciado")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sweepReservations(gctx, reservations, locker, cfg.Outbox.SweepInterval, log.Component("sweeper"))
		return nil
	})
	_ = g.Wait()

	log.Info().Msg("worker detenido")
}

// newPublisher elige el destino de los eventos según OUTBOX_PUBLISHER.
func newPublisher(ctx context.Context, cfg *config.Config, log zerolog.Logger) (outbox.Publisher, io.Closer, error) {
	switch cfg.Outbox.Publisher {
	case "kafka":
		p := messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
		return p, p, nil
	case "pubsub":
		p, err := messaging.NewPubSubPublisher(ctx, cfg.PubSub)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}
	p := messaging.LogPublisher{Log: log}
	return p, p, nil
}

// sweepReservations cancela reservas vencidas cada interval hasta que ctx se cancele.
func sweepReservations(ctx context.Context, rm *inventory.ReservationManager, locker *infraredis.Locker, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		sweep := func(ctx context.Context) error {
			n, err := rm.ExpireStaleReservations(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info().Int("expired", n).Msg("reservas vencidas canceladas")
			}
			return nil
		}
		var err error
		if locker != nil {
			_, err = locker.RunExclusive(ctx, sweepLockKey, sweep)
		} else {
			err = sweep(ctx)
		}
		if err != nil {
			log.Error().Err(err).Msg("barrido de reservas")
		}
	}
}
