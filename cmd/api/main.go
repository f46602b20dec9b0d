package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/pos-pro/internal/application/adjustment"
	"github.com/tu-usuario/pos-pro/internal/application/alert"
	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/application/sale"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/pos-pro/internal/interfaces/http"
	"github.com/tu-usuario/pos-pro/pkg/config"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	// Repositorios atados al pool: lecturas fuera de transacción. Las
	// escrituras pasan siempre por txRunner, que ata otra instancia de cada
	// repositorio a la transacción en curso.
	productRepo := postgres.NewProductRepository(pool)
	mutationRepo := postgres.NewStockMutationRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	retry := ledger.RetryPolicy{
		Attempts: cfg.Sale.CommitRetries,
		Backoff:  time.Duration(cfg.Sale.CommitBackoffMS) * time.Millisecond,
	}
	saleUC := sale.NewUseCase(txRunner, productRepo, saleRepo, log, retry)
	adjustmentUC := adjustment.NewUseCase(txRunner, productRepo, log, retry)
	inventoryUC := inventory.NewUseCase(productRepo, mutationRepo)
	replaySvc := ledger.NewReplayService(productRepo, mutationRepo, log)

	// Dispatcher de outbox: entrega at-least-once fuera del commit. El
	// monitor de stock bajo se alimenta de los eventos stock.changed.
	dispatcher := events.NewDispatcher(outboxRepo, log, events.Config{
		PollInterval: time.Duration(cfg.Outbox.PollMS) * time.Millisecond,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	})
	monitor := alert.NewMonitor(outboxRepo, log)
	dispatcher.Subscribe(entity.EventStockChanged, monitor.Handle)

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	dispatcher.Start(dispatcherCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SaleUC:       saleUC,
		AdjustmentUC: adjustmentUC,
		InventoryUC:  inventoryUC,
		Replay:       replaySvc,
		JWTSecret:    cfg.JWT.Secret,
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

	stopDispatcher()
	dispatcher.Wait()

	log.Info().Msg("aplicación detenida")
}
