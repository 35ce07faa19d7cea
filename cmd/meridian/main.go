package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-pos/meridian-pos/internal/app"
	"github.com/meridian-pos/meridian-pos/internal/backoffice"
	"github.com/meridian-pos/meridian-pos/internal/closing"
	"github.com/meridian-pos/meridian-pos/internal/counters"
	"github.com/meridian-pos/meridian-pos/internal/platform/cache"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/platform/ftpx"
	"github.com/meridian-pos/meridian-pos/internal/products"
	"github.com/meridian-pos/meridian-pos/internal/shops"
	"github.com/meridian-pos/meridian-pos/internal/trade"
	"github.com/meridian-pos/meridian-pos/internal/trends"
	"github.com/meridian-pos/meridian-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

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

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo, counterRepo)
	productHandler := products.NewHandler(logger, productService)

	shopRepo := shops.NewRepository(pool)
	shopService := shops.NewService(shopRepo, counterRepo, cfg.ShopEmailDomain)
	shopSyncer := shops.NewSyncer(shopService, shopRepo, connector, logger)
	shopHandler := shops.NewHandler(logger, shopService, shopSyncer)

	tradeRepo := trade.NewRepository(pool)
	tradeService := trade.NewService(tradeRepo, counterRepo)
	tradeHandler := trade.NewHandler(logger, tradeService)

	trendCache := cache.New(redisClient, cfg.CacheTTL)
	trendRepo := trends.NewRepository(pool)
	trendService := trends.NewService(trendRepo, trendCache)
	trendHandler := trends.NewHandler(logger, trendService)

	closingService := closing.NewService(tradeRepo, deliverer, connector, logger)
	closingHandler := closing.NewHandler(logger, closingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ProductsHandler: productHandler,
		ShopsHandler:    shopHandler,
		TradeHandler:    tradeHandler,
		TrendsHandler:   trendHandler,
		ClosingHandler:  closingHandler,
		JobHandler:      jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
