package main

import (
	"context"
	"dialog-hub/auth"
	"dialog-hub/contract"
	"dialog-hub/errors"
	"dialog-hub/infrastructure/http/server"
	"dialog-hub/infrastructure/presence"
	"dialog-hub/internal"
	"dialog-hub/repositories"
	"dialog-hub/repositories/sqlstore"
	"dialog-hub/runtime"
	"dialog-hub/runtime/workers"
	"dialog-hub/services"
	"dialog-hub/session"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialog-hub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// stores groups the persistence ports of the selected driver.
type stores struct {
	dialogs     contract.IDialogStore
	messages    contract.IMessageLog
	revocations contract.IRevocationList
	close       func()
}

func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment alone may be complete
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	store, err := openStores(ctx, config, logger)
	if err != nil {
		if stderrors.Is(err, errors.ErrUnknownDriver) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	defer store.close()

	// 3. Delivery core
	changes := make(chan runtime.PresenceChange, 1024)
	registry := runtime.NewRegistry(config.RegistryShards)
	router := runtime.NewRouter(logger, store.dialogs, store.messages, registry, config.MaxBodyLength).
		WithPresenceChanges(changes)
	unread := runtime.NewUnread(store.dialogs, store.messages)
	chat := services.NewChatService(router, unread, registry, store.dialogs)

	// 4. Background workers
	monitor := workers.NewProcessMonitor(logger, config.MonitorInterval)
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewIdleReaper(logger, registry, config.IdleTimeout, config.ReaperInterval),
		monitor,
	)
	if config.RedisAddr != "" {
		client, err := presence.Dial(ctx, config.RedisAddr)
		if err != nil {
			return exitRuntime, err
		}
		mirror := presence.NewRedisMirror(client, config.PresenceTTL)
		defer func() { _ = mirror.Close() }()
		sup.Add(workers.NewPresenceMirrorWorker(logger, mirror, changes, registry.OnlineUsers, config.PresenceTTL/2))
		logger.Info("Presence mirrored to Redis", "address", config.RedisAddr)
	}
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(ctx)
	}()

	// 5. HTTP
	validator := auth.NewJWTValidator(config.JWTSecret, store.revocations).WithLeeway(5 * time.Second)
	srv := server.NewServer(logger, validator, router, registry, chat, monitor, server.Config{
		Session: session.Options{
			QueueSize:           config.OutboundQueueSize,
			WriteTimeout:        config.WriteTimeout,
			MaxProtocolFailures: config.MaxProtocolFailures,
		},
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Listen(config.Address()); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		sup.Stop()
		<-supervisorDone
		return exitRuntime, err
	}

	// 7. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supervisorDone
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func openStores(ctx context.Context, config internal.Config, logger *slog.Logger) (stores, error) {
	switch config.StoreDriver {
	case internal.DriverBadger:
		db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			internal.StartInspector(logger, db, config.DebugPort)
		}
		dialogs, err := repositories.NewDialogRepository(db, logger)
		if err != nil {
			_ = db.Close()
			return stores{}, err
		}
		return stores{
			dialogs:     dialogs,
			messages:    repositories.NewMessageRepository(db, logger),
			revocations: repositories.NewRevocationRepository(db),
			close: func() {
				logger.Info("Closing BadgerDB...")
				_ = dialogs.Close()
				_ = db.Close()
			},
		}, nil
	case internal.DriverSQLite:
		db, err := sqlstore.Open(config.SQLiteFilepath)
		if err != nil {
			return stores{}, err
		}
		return stores{
			dialogs:     sqlstore.NewDialogStore(db),
			messages:    sqlstore.NewMessageLog(db),
			revocations: sqlstore.NewRevocationList(db),
			close: func() {
				logger.Info("Closing SQLite...")
				_ = db.Close()
			},
		}, nil
	default:
		return stores{}, fmt.Errorf("%w: %q", errors.ErrUnknownDriver, config.StoreDriver)
	}
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
