package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file; reads the store directly")
	serverURL := flag.String("server", "", "LiftLog server URL; queries the HTTP API instead of the store")
	flag.Parse()

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*configPath == "") == (*serverURL == "") {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp (-config config.yaml | -server <URL>)\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"))
		log.Info("using remote data source", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts, err := tracker.OptionsFromConfig(cfg.Analysis)
		if err != nil {
			log.Error("invalid analysis config", "error", err)
			os.Exit(1)
		}
		ctx := context.Background()
		store, err := storage.Open(ctx, cfg.Store, log, nil)
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		tr := tracker.New(store, opts, log, nil)
		if err := tr.Load(ctx); err != nil {
			log.Error("failed to load workout log", "error", err)
			os.Exit(1)
		}
		ds = mcp.NewLocal(tr)
	}

	if err := mcpserver.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
