package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/forwarder/internal/app"
	"github.com/MrJamesThe3rd/forwarder/internal/config"
	forwarderHttp "github.com/MrJamesThe3rd/forwarder/internal/http"
	"github.com/MrJamesThe3rd/forwarder/internal/http/auth"
	catalogHandler "github.com/MrJamesThe3rd/forwarder/internal/http/catalog"
	clientHandler "github.com/MrJamesThe3rd/forwarder/internal/http/client"
	emailHandler "github.com/MrJamesThe3rd/forwarder/internal/http/email"
	filesHandler "github.com/MrJamesThe3rd/forwarder/internal/http/files"
	importHandler "github.com/MrJamesThe3rd/forwarder/internal/http/importsheet"
	invoiceHandler "github.com/MrJamesThe3rd/forwarder/internal/http/invoice"
	maintenanceHandler "github.com/MrJamesThe3rd/forwarder/internal/http/maintenance"
	patternHandler "github.com/MrJamesThe3rd/forwarder/internal/http/pattern"
	paymentHandler "github.com/MrJamesThe3rd/forwarder/internal/http/payment"
	workorderHandler "github.com/MrJamesThe3rd/forwarder/internal/http/workorder"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Bootstrap(ctx); err != nil {
		logger.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}

	handlers := forwarderHttp.Handlers{
		Invoices:    invoiceHandler.NewHandler(a.Invoices, a.Uploads, cfg.Ops.MaxAttachmentBytes),
		Payments:    paymentHandler.NewHandler(a.Payments),
		Catalog:     catalogHandler.NewHandler(a.Providers, a.CostTypes),
		Patterns:    patternHandler.NewHandler(a.Patterns),
		Clients:     clientHandler.NewHandler(a.Clients),
		WorkOrders:  workorderHandler.NewHandler(a.WorkOrders),
		Import:      importHandler.NewHandler(a.Importer),
		Email:       emailHandler.NewHandler(a.Email),
		Maintenance: maintenanceHandler.NewHandler(a.Maintenance),
		Files:       filesHandler.NewHandler(a.Uploads),
	}

	if cfg.StorageProvider() == "local" {
		handlers.Media = http.FileServer(http.Dir(cfg.Storage.LocalRoot))
	}

	var authenticator *auth.Authenticator
	if cfg.App.JWTSecret != "" {
		authenticator = auth.New(cfg.App.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, API authentication disabled")
	}

	router := forwarderHttp.New(handlers, forwarderHttp.Options{
		Auth:           authenticator,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
