// Command convertd runs the file conversion HTTP service.
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

	"github.com/hazyhaar/convertd/convert"
	"github.com/hazyhaar/convertd/history"
	"github.com/hazyhaar/convertd/server"
)

func main() {
	configPath := flag.String("config", env("CONVERTD_CONFIG", ""), "path to YAML config file")
	flag.Parse()

	cfg := &server.Config{}
	if *configPath != "" {
		loaded, err := server.LoadConfigFile(*configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Defaults()
	if addr := os.Getenv("CONVERTD_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// History DB (optional).
	var hist *history.Log
	if cfg.HistoryDB != "" {
		db, err := history.Open(cfg.HistoryDB)
		if err != nil {
			slog.Error("history db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		hist = history.New(db)

		if cfg.HistoryRetentionDays > 0 {
			go func() {
				ticker := time.NewTicker(6 * time.Hour)
				defer ticker.Stop()
				for {
					if err := history.Cleanup(ctx, db, cfg.HistoryRetentionDays); err != nil {
						slog.Warn("history cleanup", "error", err)
					}
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
					}
				}
			}()
		}
	}

	engine := convert.New(convert.Config{
		Scope:       convert.ScopeFull,
		JPEGQuality: cfg.JPEGQuality,
		WebPQuality: cfg.WebPQuality,
		MaxPages:    cfg.MaxPages,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(*cfg, engine, hist, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
