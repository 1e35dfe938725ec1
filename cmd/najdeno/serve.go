package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/handshake"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/notify"
	"github.com/erazemk/najdeno/internal/service"
	"github.com/erazemk/najdeno/internal/store"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := a.setupLogging()
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringP("addr", "a", ":8080", "listen address")
	cmd.Flags().String("public-url", "", "public base URL printed into QR codes (default: derived from requests)")
	_ = a.v.BindPFlag(config.KeyAddr, cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag(config.KeyPublicURL, cmd.Flags().Lookup("public-url"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", a.cfg.DB)

	// Generated on first run and kept in the database, so sessions survive restarts.
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := service.New(database, service.Options{
		Codec:    handshake.QRCodec{Size: handshake.DefaultQRSize},
		Tokens:   handshake.NewCache(a.cfg.Handshake.CacheTTL),
		Notifier: notify.NewStoreSink(database),
		Metrics:  m,
		Location: a.cfg.Display.Location,
	})

	handler := api.NewRouter(api.Config{
		DB:        database,
		Service:   svc,
		JWTSecret: jwtSecret,
		PublicURL: a.cfg.PublicURL,
		Metrics:   m,
		Limiter:   api.NewRateLimiter(a.cfg.RateLimit.MessagesPerMinute, a.cfg.RateLimit.Burst),
	})

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", a.cfg.Addr, "public_url", a.cfg.PublicURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
