package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	exportPath := flag.String("path", "", "directory holding Alpha Progression CSV exports")
	cycle := flag.Int("cycle", 0, "cycle the exports belong to (required)")
	dryRun := flag.Bool("dry-run", false, "list what would be uploaded without sending")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" || *cycle < 1 {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -path <export dir> -cycle N [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".liftlog-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// The client also names the target in the upload state, so it is built
	// even for dry runs.
	client := upload.NewClient(strings.TrimRight(*serverURL, "/"))

	if *dryRun {
		log.Info("DRY RUN mode: exports will be listed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(client, state, *exportPath, *cycle, *dryRun, log)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sets sent:        %d\n", stats.SetsSent)
	fmt.Printf("  Batches applied:  %d\n", stats.BatchesApplied)

	if len(stats.UnknownSessions) > 0 {
		fmt.Printf("\n  Sessions not in the program:\n")
		for _, s := range stats.UnknownSessions {
			fmt.Printf("    - %s\n", s)
		}
	}
	fmt.Println()
}
