package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/metrics"
)

func ConnectDB(cfg *configs.Config) (*gorm.DB, error) {
	zap.S().Infow("connecting to postgres", "host", cfg.DBHost, "db", cfg.DBName)

	level := gormLogger.Warn
	if !cfg.IsProd() {
		level = gormLogger.Info
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(level),
	})
	if err != nil {
		return nil, err
	}
	zap.S().Info("db connected")
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Warnw("pool tune failed", "err", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// WarmUpQueries fills the pool in the background once the server is up.
func WarmUpQueries(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			zap.S().Warnw("warm-up ping failed", "err", err)
			return
		}
		var n int64
		_ = db.WithContext(ctx).Raw("SELECT COUNT(*) FROM groups WHERE status = 'active'").Scan(&n).Error
	}()
}

// Ping records the latency in db_ping_seconds.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	start := time.Now()
	err = sqlDB.PingContext(ctx)
	metrics.ObserveDBPing(time.Since(start))
	return err
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
