// Command harvest-channels refreshes the channel list in the settings file.
// It pages through the catalog's top categories and their live-stream
// listings, merges every discovered channel name into the persisted list,
// and exits. Run it before (re)starting the watcher.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onnwee/giftwatch/config"
	"github.com/onnwee/giftwatch/harvest"
	"github.com/onnwee/giftwatch/registry"
	"github.com/onnwee/giftwatch/telemetry"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	setupLogging()

	path := config.Path()
	settings, err := config.Load(path)
	if err != nil {
		slog.Error("settings load failed", slog.String("path", path), slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()

	shutdown, err := telemetry.InitTracing("harvest-channels", version)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())

	client := &harvest.Client{
		ClientID:  settings.ClientID,
		UserAgent: "giftwatch/" + version,
	}

	log := telemetry.LoggerWithCorr(ctx)

	var channels []string
	harvestErr := error(nil)
	took := telemetry.TimeFunc(telemetry.HarvestDuration, func() {
		channels, harvestErr = client.Harvest(ctx)
	})
	if harvestErr != nil {
		telemetry.HarvestFailures.Inc()
		log.Error("harvest failed", slog.Any("err", harvestErr))
		os.Exit(1)
	}

	log.Info("found channels currently streaming",
		slog.Int("count", len(channels)), slog.Duration("took", took))

	merged, added := registry.Merge(settings.Channels, channels)
	settings.Channels = merged

	log.Info("saving channels",
		slog.Int("new", added),
		slog.Int("total", len(merged)))

	if err := settings.Save(path); err != nil {
		log.Error("settings save failed", slog.Any("err", err))
		os.Exit(1)
	}
}

// setupLogging mirrors the watcher daemon's slog configuration.
func setupLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
}
