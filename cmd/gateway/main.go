package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/api"
	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/application/services"
	"github.com/DanielPopoola/payment-intake/internal/application/validation"
	"github.com/DanielPopoola/payment-intake/internal/config"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/infrastructure/gateway"
	"github.com/DanielPopoola/payment-intake/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/payment-intake/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment intake service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	paymentRepo := postgres.NewPaymentRepository(db)

	router := gateway.NewRouter(buildProcessors(cfg, logger)...)
	logger.Info("payment processors registered", "processors", router.Names())

	currencies := domain.NewCurrencySet(cfg.Intake.Currencies...)
	logger.Info("accepting currencies", "currencies", currencies.Codes())
	paymentValidator := validation.NewPaymentValidator(currencies, validation.NewDetailValidator(time.Now))

	intakeService := services.NewIntakeService(paymentValidator, router, paymentRepo, logger)
	cardService := services.NewCardService(time.Now)
	queryService := services.NewQueryService(paymentRepo)
	cancelService := services.NewCancelService(router, paymentRepo, logger, time.Now)
	refundService := services.NewRefundService(router, paymentRepo, logger, time.Now)

	h := handlers.NewHandlers(intakeService, cardService, queryService, cancelService, refundService, logger)

	doc, err := api.Load(ctx)
	if err != nil {
		logger.Error("failed to load api document", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	if err := api.RegisterDocsRoutes(mux, doc); err != nil {
		logger.Error("failed to register api docs", "error", err)
		os.Exit(1)
	}
	h.RegisterRoutes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.RequestTimeout, logger)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(
		paymentRepo,
		router,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.PendingAfter,
		logger,
		time.Now,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// buildProcessors registers the live processors that have credentials. The
// simulated processor is always registered last so every method resolves.
func buildProcessors(cfg *config.Config, logger *slog.Logger) []application.Processor {
	var processors []application.Processor
	if cfg.Stripe.Enabled() {
		processors = append(processors, gateway.NewStripeProcessor(cfg.Stripe, logger))
	}
	if cfg.PayPal.Enabled() {
		processors = append(processors, gateway.NewPayPalProcessor(cfg.PayPal, logger))
	}
	if len(processors) < 2 {
		logger.Warn("processor credentials missing, using simulated processor",
			"stripe", cfg.Stripe.Enabled(),
			"paypal", cfg.PayPal.Enabled(),
		)
	}
	return append(processors, gateway.NewSimulatedProcessor())
}
