package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
	SQL *sql.DB
}

type Options struct {
	MaxOpen      int
	MaxIdle      int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	PingAttempts uint
	Logger       *slog.Logger
}

// Open connects to Postgres through the pgx stdlib driver and pings it,
// retrying while the database comes up.
func Open(ctx context.Context, databaseURL string, opts Options) (*DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpen)
	db.SetMaxIdleConns(opts.MaxIdle)
	db.SetConnMaxLifetime(opts.MaxLifetime)
	db.SetConnMaxIdleTime(opts.MaxIdleTime)

	if err := ping(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{SQL: db}, nil
}

func ping(ctx context.Context, db *sql.DB, opts Options) error {
	attempts := opts.PingAttempts
	if attempts == 0 {
		attempts = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	err := retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			logger.WarnContext(ctx, "failed ping to database",
				slog.Any("err", err),
				slog.Uint64("attempt", uint64(attempt)),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, d.SQL, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.SQL.Close()
}
