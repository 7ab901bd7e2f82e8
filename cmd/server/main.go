package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpattn/listimport/internal/app"
	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/export"
	"github.com/rpattn/listimport/internal/ingestion"
	"github.com/rpattn/listimport/internal/middleware"

	"github.com/rs/cors"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	migrate := flag.Bool("migrate", true, "apply list store migrations on startup")
	flag.Parse()

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configDir)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)

	rt, err := app.Start(ctx, cfg, logger, *migrate)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rt.Close()

	// Field descriptors are loaded once per request
	service := rt.NewService(middleware.RequestFields{})

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	importHandler := middleware.LoggingMiddleware(logger)(
		middleware.FieldLoaderMiddleware(rt.Fields, cfg.Target.ListName)(ingestion.NewHTTPHandler(service)),
	)

	mux := http.NewServeMux()
	mux.Handle("/import", corsHandler.Handler(importHandler))
	mux.Handle("/import/", corsHandler.Handler(importHandler))
	mux.Handle("/import/logs/export", corsHandler.Handler(middleware.LoggingMiddleware(logger)(
		export.NewHTTPHandler(export.NewService(rt.Logs), cfg.Target.ListName, logger),
	)))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting import server", slog.String("addr", cfg.Server.Addr), slog.String("list", cfg.Target.ListName))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server exited")
}
