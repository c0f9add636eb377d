package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	webDir := flag.String("web", "", "directory holding a built frontend to serve")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Store.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", cfg.Store.Driver)
			return
		}
		if err := storage.RunMigrations(cfg.Store.Postgres.DSN(), cfg.Store.Postgres.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	opts, err := tracker.OptionsFromConfig(cfg.Analysis)
	if err != nil {
		log.Error("invalid analysis config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	reg := metrics.NewRegistry()
	m := metrics.NewManager("server", reg)

	store, err := storage.Open(ctx, cfg.Store, log, reg)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tr := tracker.New(store, opts, log, m)
	if err := tr.Load(ctx); err != nil {
		log.Error("failed to load workout log", "error", err)
		os.Exit(1)
	}

	alphaProvider := alpha.NewProvider(tr, log)
	srv := server.New(tr, alphaProvider, server.Options{
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log)

	mcpSrv := mcp.New(mcp.NewLocal(tr), Version, log)
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))

	if *webDir != "" {
		srv.SetFrontend(os.DirFS(*webDir))
		log.Info("serving frontend", "dir", *webDir)
	}

	// Start server, tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
