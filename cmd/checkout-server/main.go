package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/internal/app"
	"github.com/goliatone/go-checkoutform/internal/config"
	"github.com/goliatone/go-checkoutform/internal/logging"
	"github.com/goliatone/go-checkoutform/internal/server"
	"github.com/goliatone/go-checkoutform/pkg/openapi"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	level := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *level != "" {
		cfg.Log.Level = *level
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Dir:    cfg.Log.Dir,
		MaxAge: cfg.Log.MaxAge,
	})
	if err != nil {
		logrus.Fatalf("configure logging: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("checkout server stopped")
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := app.Orchestrator(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := server.New(ctx, server.Options{
		Orchestrator: orch,
		Renderer:     cfg.Server.Renderer,
		BasePath:     cfg.Server.BasePath,
		AssetsPath:   cfg.Server.AssetsPath,
		Logger:       logger,
		OpenAPI:      []openapi.Option{openapi.WithTitle("Checkout")},
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.Server.Addr,
			"endpoint": srv.Endpoint(),
		}).Info("checkout server listening")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
