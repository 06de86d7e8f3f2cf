package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EvanZhouDev/scope-search/api"
	"github.com/EvanZhouDev/scope-search/cache"
	"github.com/EvanZhouDev/scope-search/config"
	"github.com/EvanZhouDev/scope-search/identity"
	"github.com/EvanZhouDev/scope-search/scraper"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so main can exit with a status code
// without leaking the browser process.
func run() int {
	port := flag.Int("port", 0, "port to listen on (overrides SCOPE_PORT)")
	flag.Parse()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("scope starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Launch the shared browser ────────────────────────────────
	browser, err := scraper.LaunchBrowser(cfg.Browser)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		return 1
	}
	session := scraper.NewSession(browser, cfg.Browser)
	defer session.Close()

	sc, err := scraper.New(session, identity.NewGenerator(), cfg.Scraper)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		return 1
	}

	// ── 4. Initialise cache ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Close()

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(sc, cfg, cc, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	status := 0
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		status = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.RequestTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// session.Close() runs via defer and kills Chrome.
	slog.Info("scope stopped")
	return status
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
