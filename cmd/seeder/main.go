package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/metinatakli/showtime-aggregator/internal/cache"
	"github.com/metinatakli/showtime-aggregator/internal/config"
	"github.com/metinatakli/showtime-aggregator/internal/repository"
	"github.com/metinatakli/showtime-aggregator/internal/runner"
	"github.com/metinatakli/showtime-aggregator/internal/telemetry"
	"github.com/metinatakli/showtime-aggregator/internal/vcs"
)

const serviceName = "showtime-seeder"

var (
	version = vcs.Version()
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to YAML config file")
	reportPath := flag.String("report", "", "Write the run report as JSON to this path")
	verbose := flag.Bool("verbose", false, "Log skipped entries")
	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	telemetryCfg := telemetry.Config{
		ServiceName:  serviceName,
		Version:      version,
		Env:          cfg.Env,
		CollectorURL: cfg.Otel.CollectorURL,
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	logger := telemetry.NewLogger(os.Stdout, telemetryCfg, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetryCfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	db, err := repository.NewPool(ctx, repository.PoolConfig{
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleTime:  cfg.DB.MaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []runner.Option{
		runner.WithURLParams(cfg.Time.URLParams...),
	}

	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewClient(ctx, cache.ClientConfig{
			URL:          cfg.Redis.URL,
			MaxOpenConns: cfg.Redis.MaxOpenConns,
			MaxIdleConns: cfg.Redis.MaxIdleConns,
			MaxIdleTime:  cfg.Redis.MaxIdleTime,
		})
		if err != nil {
			logger.Warn("redis unavailable, API cache will not be invalidated", "error", err)
		} else {
			defer redisClient.Close()
			opts = append(opts, runner.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL)))
		}
	}

	var sources []runner.Source
	for _, s := range cfg.EnabledSources() {
		sources = append(sources, runner.Source{Name: s.Name, Path: s.Path, WebsiteURL: s.WebsiteURL})
	}

	if len(sources) == 0 {
		logger.Warn("no enabled sources configured, the store will be left empty")
	}

	r := runner.New(repository.NewPostgresStore(db), sources, logger, opts...)

	report, runErr := r.Run(ctx)
	if report != nil {
		fmt.Println(report.String())

		if *reportPath != "" {
			err = writeReport(*reportPath, report)
			if err != nil {
				logger.Error("failed to write report", "path", *reportPath, "error", err)
			}
		}
	}

	return runErr
}

func writeReport(path string, report *runner.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
