package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"example.com/note-keeper/internal/auth"
	"example.com/note-keeper/internal/config"
	"example.com/note-keeper/internal/db"
	"example.com/note-keeper/internal/logging"
	"example.com/note-keeper/internal/notes"
	"example.com/note-keeper/internal/security"
	"example.com/note-keeper/internal/server"
	"example.com/note-keeper/internal/stringsx"
	"example.com/note-keeper/internal/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("note-keeper stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	dbConn, err := db.Open(ctx, cfg.DatabaseURL, db.Options{
		MaxOpen:      cfg.MaxOpenConns,
		MaxIdle:      cfg.MaxIdleConns,
		MaxLifetime:  cfg.ConnMaxLifetime,
		MaxIdleTime:  cfg.ConnMaxIdleTime,
		PingAttempts: cfg.PingAttempts,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if cfg.AutoMigrate {
		if err := dbConn.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("schema up to date")
	}

	codec, err := security.NewTokenCodec(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	hasher := security.NewHasher(security.HasherParams{MemoryKiB: cfg.PasswordHashMemoryKiB})
	accounts := users.NewService(users.NewRepository(dbConn.SQL), hasher, codec)

	repo, err := notes.NewRepository(ctx, dbConn.SQL)
	if err != nil {
		return err
	}
	defer repo.Close()

	gate := auth.NewGate(codec, accounts, logger)
	handler := server.NewRouter(server.Deps{
		Logger:         logger,
		AllowedOrigins: stringsx.SplitList(cfg.CORSAllowedOrigins),
		Gate:           gate,
		Auth:           auth.NewHandlers(accounts, gate, logger),
		Notes:          notes.NewHandlers(repo, logger),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("note-keeper listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
