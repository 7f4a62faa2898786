package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	"github.com/jhoicas/manufactura-erp/internal/application/usecase"
	domacc "github.com/jhoicas/manufactura-erp/internal/domain/accounting"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/audit"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/memory"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/manufactura-erp/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/manufactura-erp/internal/interfaces/http"
	"github.com/jhoicas/manufactura-erp/pkg/config"
	"github.com/jhoicas/manufactura-erp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
	}
	txRunner := postgres.NewTxRunner(pool)

	// Números de asiento: Redis si está configurado (compartido entre réplicas), si no en proceso.
	var seq ports.Sequencer = memory.NewSequence()
	if cfg.Redis.Addr != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		rdb, err := infraredis.Connect(connectCtx, cfg.Redis, log.Component("redis"))
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		seq = infraredis.NewSequence(rdb, cfg.App.Name)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: numeración de asientos en memoria, solo válida con una réplica")
	}

	activity := audit.NewActivityLogger(log.Component("audit"))

	periodGate := accounting.NewPeriodGate(txRunner, cfg.Cache.PeriodTTL)
	codeCache := accounting.NewAccountCodeCache(cfg.Cache.AccountSize)
	journalEngine := accounting.NewJournalEngine(txRunner, periodGate, seq, activity, log.Component("journal"))
	chart := accounting.NewChartOfAccounts(txRunner, codeCache, log.Component("chart"))

	chartAccounts, err := config.LoadChart(cfg.Accounts.ChartFile)
	if err != nil {
		log.Fatal().Err(err).Msg("plan de cuentas")
	}
	if _, err := chart.Bootstrap(ctx, toSeeds(chartAccounts)); err != nil {
		log.Fatal().Err(err).Msg("carga del plan de cuentas")
	}

	autoJournal := accounting.NewAutoJournal(txRunner, journalEngine, domacc.AccountCodes{
		Inventory:         cfg.Accounts.Inventory,
		COGS:              cfg.Accounts.COGS,
		WIP:               cfg.Accounts.WIP,
		AccruedPayable:    cfg.Accounts.AccruedPayable,
		AdjustmentGain:    cfg.Accounts.AdjustmentGain,
		AdjustmentLoss:    cfg.Accounts.AdjustmentLoss,
		CategoryInventory: cfg.Accounts.CategoryInventory,
	}, codeCache, log.Component("auto_journal"))

	ledger := inventory.NewStockLedger()
	reservations := inventory.NewReservationManager(txRunner, ledger, log.Component("reservations"))
	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, ledger, reservations, autoJournal, activity, log.Component("inventory"))
	consumptionUC := inventory.NewConsumptionAnalysisUseCase(txRunner)
	productUC := usecase.NewProductUseCase(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		Reservations:     reservations,
		Consumption:      consumptionUC,
		Journal:          journalEngine,
		Chart:            chart,
		Periods:          periodGate,
		Log:              log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func toSeeds(chart []config.ChartAccount) []accounting.AccountSeed {
	out := make([]accounting.AccountSeed, 0, len(chart))
	for _, a := range chart {
		out = append(out, accounting.AccountSeed{Code: a.Code, Name: a.Name, Type: a.Type, Category: a.Category})
	}
	return out
}
