// Command worker consumes the task queue and, unless disabled, runs the
// periodic scheduler. It exits with status 3 when it asks to be recycled so
// the supervisor can start a fresh process.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/forwarder/internal/app"
	"github.com/MrJamesThe3rd/forwarder/internal/config"
	"github.com/MrJamesThe3rd/forwarder/internal/jobs"
	"github.com/MrJamesThe3rd/forwarder/internal/tasks"
)

const exitRecycle = 3

func main() {
	noBeat := flag.Bool("no-scheduler", false, "consume tasks without running the periodic scheduler")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With("component", "worker")
	slog.SetDefault(logger)

	os.Exit(run(cfg, logger, !*noBeat))
}

func run(cfg *config.Config, logger *slog.Logger, withScheduler bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	defer a.Close()

	broker, err := tasks.Open(ctx, cfg.Queue.BrokerURL, cfg.Storage.CredentialsJSON)
	if err != nil {
		logger.Error("failed to open broker", "error", err)
		return 1
	}
	defer broker.Close()

	runner := tasks.NewRunner(broker, tasks.RunnerOptions{
		Concurrency:   cfg.Queue.Concurrency,
		SoftTimeLimit: cfg.Queue.SoftTimeLimit,
		HardTimeLimit: cfg.Queue.HardTimeLimit,
		MaxTasks:      cfg.Queue.MaxTasksPerChild,
		MaxRSS:        cfg.Queue.MaxMemoryMB << 20,
	}, logger)

	j := jobs.New(a.Email, a.Invoices, a.Maintenance, a.Importer, logger)
	j.Register(runner)

	if withScheduler {
		client := tasks.NewClient(broker, cfg.Queue.MaxRetries, cfg.Queue.RetryDelay)
		scheduler := tasks.NewScheduler(client, time.Local, logger)

		if err := jobs.Schedule(scheduler); err != nil {
			logger.Error("failed to schedule jobs", "error", err)
			return 1
		}

		scheduler.Start()
		defer scheduler.Stop(context.Background())
	}

	logger.Info("worker started", "broker", cfg.Queue.BrokerURL, "concurrency", cfg.Queue.Concurrency)

	err = runner.Run(ctx)

	switch {
	case errors.Is(err, tasks.ErrRecycle):
		logger.Info("worker recycling")
		return exitRecycle
	case err != nil && !errors.Is(err, context.Canceled):
		logger.Error("worker stopped", "error", err)
		return 1
	}

	return 0
}
