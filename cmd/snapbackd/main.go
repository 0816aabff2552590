package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/snapback/internal/api"
	"github.com/edvin/snapback/internal/archive"
	"github.com/edvin/snapback/internal/config"
	"github.com/edvin/snapback/internal/core"
	"github.com/edvin/snapback/internal/db"
	"github.com/edvin/snapback/internal/drive"
	"github.com/edvin/snapback/internal/logging"
	"github.com/edvin/snapback/internal/logstream"
	"github.com/edvin/snapback/internal/metrics"
	"github.com/edvin/snapback/internal/model"
	"github.com/edvin/snapback/internal/mongotool"
	"github.com/edvin/snapback/internal/scheduler"
	"github.com/edvin/snapback/internal/store"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPoolMetrics(pool)

	var stream logstream.Stream
	if cfg.RedisAddr != "" {
		rs := logstream.NewRedisStream(cfg.RedisAddr, cfg.RedisPassword)
		if err := rs.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rs.Close()
		stream = rs
		logger.Info().Str("addr", cfg.RedisAddr).Msg("log channels backed by redis streams")
	} else {
		stream = logstream.NewMemoryStream()
		logger.Info().Msg("log channels backed by in-process streams")
	}

	hub := logstream.NewHub(logger, stream, model.LogChannelBackup, model.LogChannelRestore)
	go hub.Run(ctx)

	driveClient := drive.NewClient(logger, drive.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})

	st := store.NewStore(pool)
	backupLogs := logstream.NewLogger(logger, stream, model.LogChannelBackup, "backup-service")
	restoreLogs := logstream.NewLogger(logger, stream, model.LogChannelRestore, "restore-service")

	services := core.NewServices(cfg, backupLogs, restoreLogs,
		st, driveClient, mongotool.New(logger), archive.Engine{})

	sched := scheduler.New(logger, services.Backup, cfg.BackupSchedule)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.BackupSchedule).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	srv := api.NewServer(logger, pool, st, services, hub, cfg)

	// No write timeout: manual backup and restore runs are synchronous and
	// the log stream endpoint holds its connection open.
	httpServer := &http.Server{
		Addr:        cfg.HTTPListenAddr,
		Handler:     srv,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting backup service")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
