package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-pos/meridian-pos/internal/app"
	"github.com/meridian-pos/meridian-pos/internal/backoffice"
	"github.com/meridian-pos/meridian-pos/internal/closing"
	"github.com/meridian-pos/meridian-pos/internal/costing"
	"github.com/meridian-pos/meridian-pos/internal/counters"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/platform/ftpx"
	"github.com/meridian-pos/meridian-pos/internal/shops"
	"github.com/meridian-pos/meridian-pos/internal/stocks"
	"github.com/meridian-pos/meridian-pos/internal/trade"
	"github.com/meridian-pos/meridian-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	connector, err := backoffice.NewClient(backoffice.Config{
		BaseURL:     cfg.BackofficeBaseURL,
		User:        cfg.BackofficeUser,
		Password:    cfg.BackofficePassword,
		Timeout:     cfg.BackofficeTimeout,
		SettleDelay: cfg.BackofficeSettleDelay,
	})
	if err != nil {
		logger.Error("init back-office client", slog.Any("error", err))
		os.Exit(1)
	}

	deliverer := ftpx.NewClient(ftpx.Config{
		Addr:     cfg.FTPAddr,
		User:     cfg.FTPUser,
		Password: cfg.FTPPassword,
		Dir:      cfg.FTPDir,
		Timeout:  cfg.FTPTimeout,
	})

	counterRepo := counters.NewRepository(pool)

	shopRepo := shops.NewRepository(pool)
	shopService := shops.NewService(shopRepo, counterRepo, cfg.ShopEmailDomain)
	shopSyncer := shops.NewSyncer(shopService, shopRepo, connector, logger)

	costingRepo := costing.NewRepository(pool)
	costingService := costing.NewService(costingRepo, logger)

	stockRepo := stocks.NewRepository(pool)
	stockService := stocks.NewService(stockRepo, logger)

	tradeRepo := trade.NewRepository(pool)
	closingService := closing.NewService(tradeRepo, deliverer, connector, logger)

	shopSyncJob := jobs.NewShopSyncJob(shopSyncer, logger, nil)
	costJob := jobs.NewCostRecomputeJob(costingService, logger, nil)
	snapshotJob := jobs.NewStockSnapshotJob(stockService, logger, nil)
	closingJob := jobs.NewClosingRunJob(closingService, logger, nil)

	shopSyncTask, err := jobs.NewShopSyncTask("")
	if err != nil {
		logger.Error("build shop sync task", slog.Any("error", err))
		os.Exit(1)
	}
	costTask, err := jobs.NewCostRecomputeTask("")
	if err != nil {
		logger.Error("build cost recompute task", slog.Any("error", err))
		os.Exit(1)
	}
	snapshotTask, err := jobs.NewStockSnapshotTask("")
	if err != nil {
		logger.Error("build stock snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskShopSync, Handler: shopSyncJob.Handle},
			{Type: jobs.TaskCostRecompute, Handler: costJob.Handle},
			{Type: jobs.TaskStockSnapshot, Handler: snapshotJob.Handle},
			{Type: jobs.TaskClosingRun, Handler: closingJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 0 * * *", Task: shopSyncTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 1 * * *", Task: costTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 6 1 * *", Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
