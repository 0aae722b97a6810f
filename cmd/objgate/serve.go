package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	handlers "objgate/internal/http/handler"
	"objgate/internal/http/middleware"
	"objgate/internal/otel"
	"objgate/internal/service"
	"objgate/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	shutdownTracing, err := otel.Init(ctx, e.log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			e.log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics, err := storage.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register store metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg, "/health", "/healthz")
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	store := storage.Instrument(e.store, storeMetrics)
	svc := service.NewStorageService(store, e.log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             e.cfg.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithServerName("objgate")))
	app.Use(middleware.Logger(e.log))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	app.Get("/swagger/*", swaggerHandler(e.cfg.APIPrefix))

	handlers.RegisterHealth(app, store)
	handlers.RegisterRoutes(app.Group(e.cfg.APIPrefix), svc, handlers.Options{MaxFiles: e.cfg.MaxBatchFiles})

	if e.cfg.StaticDir != "" {
		app.Static("/", e.cfg.StaticDir)
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("starting server", zap.String("port", e.cfg.Port), zap.String("api_prefix", e.cfg.APIPrefix))
		errCh <- app.Listen(":" + e.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	e.log.Info("shutting down server")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
