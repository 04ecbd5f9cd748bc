// Command tweetpipe loads the newest tweet export from the landing bucket,
// keeps rows in the target language and appends them to the warehouse table.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tweetpipe/internal/config"
	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/logging"
	"github.com/JonMunkholm/tweetpipe/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, logging.NewRunID())
	log := logging.FromContext(ctx)

	log.Info("configuration loaded", "config", cfg.String())

	orchestrator, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		fail(log, "failed to initialise pipeline", err)
	}

	res, err := orchestrator.Run(ctx)
	if err != nil {
		fail(log, "run failed", err)
	}

	log.Info("done", "key", res.ObjectKey, "rows_loaded", res.RowsLoaded)
}

func fail(log *slog.Logger, msg string, err error) {
	um := core.MapError(err)
	log.Error(msg, "code", um.Code, "message", um.Message, "action", um.Action, "error", err)
	os.Exit(1)
}
