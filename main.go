package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"educenter_backend/internals/cache"
	"educenter_backend/internals/configs"
	database "educenter_backend/internals/databases"
	budgetService "educenter_backend/internals/features/finance/budget/service"
	scheduler "educenter_backend/internals/features/users/auth/scheduler"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/logging"
	middlewares "educenter_backend/internals/middlewares"
	"educenter_backend/internals/observability"
	routes "educenter_backend/internals/route"
	"educenter_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	lg, err := logging.Init(configs.GetEnv("LOG_LEVEL", "info"), configs.GetEnv("APP_ENV", "dev"))
	if err != nil {
		panic(err)
	}
	defer lg.Closer()

	cfg, err := configs.Load()
	if err != nil {
		zap.S().Fatalw("config", "err", err)
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		zap.S().Warnw("sentry disabled", "err", err)
	}
	defer flush()

	dbtime.SetCenterOffset(cfg.CenterUTCOffsetHours)

	db, err := database.ConnectDB(cfg)
	if err != nil {
		zap.S().Fatalw("db connect", "err", err)
	}
	database.TunePool(db)

	if cfg.MigrateOnStart {
		sqlDB, err := db.DB()
		if err != nil {
			zap.S().Fatalw("db handle", "err", err)
		}
		if err := database.Migrate(sqlDB); err != nil {
			zap.S().Fatalw("migrate", "err", err)
		}
	}
	if err := seeds.RunAllSeeds(db, cfg); err != nil {
		zap.S().Fatalw("seed", "err", err)
	}
	database.WarmUpQueries(db)

	var rc *cache.RedisCache
	if cfg.RedisURL != "" {
		if rc, err = cache.NewRedisCache(context.Background(), cfg.RedisURL); err != nil {
			zap.S().Warnw("redis unavailable, currency rate is not cached", "err", err)
			rc = nil
		}
	}
	rates := budgetService.NewCurrencyClient(cfg.CurrencyURL, cfg.CurrencyTimeout, cfg.FallbackUSDRate, rc)

	jobs := cron.New()
	if _, err := scheduler.RegisterBlacklistCleanup(jobs, db); err != nil {
		zap.S().Fatalw("cron", "err", err)
	}
	if rc != nil {
		if _, err := jobs.AddFunc("@every 1h", func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.CurrencyTimeout)
			defer cancel()
			if err := rates.Refresh(ctx); err != nil {
				zap.S().Warnw("currency refresh failed", "err", err)
			}
		}); err != nil {
			zap.S().Fatalw("cron", "err", err)
		}
	}
	jobs.Start()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          middlewares.ErrorHandler,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	routes.SetupRoutes(app, db, routes.Options{
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
		Env:       cfg.Env,
		Rates:     rates,
	})

	go func() {
		zap.S().Infow("listening", "port", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			zap.S().Fatalw("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down")

	<-jobs.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zap.S().Warnw("shutdown", "err", err)
	}
	if rc != nil {
		_ = rc.Close()
	}
	database.Close(db)
}
