package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"livescore/internal/analysis"
	"livescore/internal/archive"
	"livescore/internal/configuration"
	"livescore/internal/server"
	"livescore/internal/snapshot"
	"livescore/internal/tag"
)

// prepareLogger installs a JSON slog logger on os.Stdout as the default one.
// Unknown levels fall back to info.
func prepareLogger(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func loadRules(file string) ([]tag.Rule, error) {
	if file == "" {
		return tag.DefaultRules()
	}
	return tag.LoadFromFile(file)
}

// Exits with code 1 when the configuration, the rule table or the archive
// cannot be loaded.
func main() {
	configPath := flag.String("config", "/etc/livescore/config.yaml", "configuration file")
	flag.Parse()
	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	prepareLogger(config.Logger.Level)

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	rules, err := loadRules(config.Analysis.Rules)
	if err != nil {
		slog.Error("Unable to load tag rules", "file", config.Analysis.Rules, "error", err)
		os.Exit(1)
	}
	analyzer := analysis.NewAnalyzer(config.Analysis.Thresholds, config.Analysis.Weights, rules)

	repo := snapshot.NewRepository(config.Analysis.HistoryLength, config.Analysis.HistoryTtl)
	go repo.Serve()

	var arch archive.Archive = archive.Nop{}
	if config.Archive.File != "" {
		arch = archive.NewJSONLArchive(config.Archive.File, config.Archive.Size, config.Archive.Amount)
		slog.Info("Archiving scored products", "file", config.Archive.File)
	}

	srv := server.NewServer(
		config.Server.Address,
		config.Server.Static,
		config.Server.AllowedOrigins,
		analyzer,
		repo,
		arch,
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			appCancel()
		}
	}()
	slog.Info("Server listening " + config.Server.Address)
	<-appCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")

	repo.Stop()
	if err := arch.Close(); err != nil {
		slog.Error("Archive close", "error", err)
	}
}
