//go:build testutil

// Package testdb starts a disposable Postgres with the goose migrations
// applied. Tests that need row locks or real constraint errors use it.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"educenter_backend/internals/constants"
	database "educenter_backend/internals/databases"
	roleSeed "educenter_backend/internals/seeds/roles"
)

type Handle struct {
	DB    *gorm.DB
	SQL   *sql.DB
	Roles map[constants.Role]uint
	stop  func(context.Context) error
}

func (h *Handle) Close() {
	if h.SQL != nil {
		_ = h.SQL.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
}

func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:17-alpine"),
		postgres.WithDatabase("educenter"),
		postgres.WithUsername("educenter"),
		postgres.WithPassword("educenter"),
	)
	if err != nil {
		return nil, err
	}
	h := &Handle{stop: pg.Terminate}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		h.Close()
		return nil, err
	}
	if h.SQL, err = sql.Open("postgres", uri); err != nil {
		h.Close()
		return nil, err
	}
	if err := waitReady(ctx, h.SQL); err != nil {
		h.Close()
		return nil, err
	}
	if err := database.Migrate(h.SQL); err != nil {
		h.Close()
		return nil, err
	}

	h.DB, err = gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: h.SQL}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		h.Close()
		return nil, err
	}
	if h.Roles, err = roleSeed.SeedRoles(h.DB); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func waitReady(ctx context.Context, db *sql.DB) error {
	dead := time.Now().Add(20 * time.Second)
	for time.Now().Before(dead) {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("db not ready")
}
