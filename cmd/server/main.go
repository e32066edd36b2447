package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"canchero/internal/api"
	"canchero/internal/booking"
	"canchero/internal/cache"
	"canchero/internal/config"
	"canchero/internal/db"
	"canchero/internal/metrics"
	"canchero/internal/model"
	"canchero/internal/slots"
	"canchero/internal/timezone"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CANCHERO_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	tz, err := timezone.New(cfg.BookingTimezone())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load timezone")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ensure configured courts exist before serving.
	if len(cfg.Courts) > 0 {
		seeds := make([]model.Court, 0, len(cfg.Courts))
		for _, c := range cfg.Courts {
			if !model.ValidCourtType(c.Type) {
				logger.Fatal().Str("court", c.Name).Str("type", c.Type).Msg("unknown court type in config")
			}
			seeds = append(seeds, model.Court{Name: c.Name, Type: c.Type, Description: c.Description})
		}
		if err := database.SyncCourts(ctx, seeds); err != nil {
			logger.Fatal().Err(err).Msg("failed to sync courts from config")
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	availCache := cache.New(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

	if cfg.Backup.Enabled {
		go startBackupLoop(ctx, database, cfg, &logger)
	}

	engine := slots.NewEngine(database, tz, cfg.SlotOptions())
	bookingSvc := booking.NewService(database, engine, tz, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(database, bookingSvc, engine, tz, availCache, &logger, api.Options{
		Port:      cfg.ServerPort(),
		APIKeys:   cfg.Server.APIKeys,
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
	})

	logger.Info().Str("timezone", cfg.BookingTimezone()).Msg("canchero started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}
}

func startBackupLoop(ctx context.Context, database *db.DB, cfg *config.Config, logger *zerolog.Logger) {
	dir := cfg.BackupPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("failed to create backup directory")
		return
	}

	// First backup shortly after startup, then on the configured interval.
	timer := time.NewTimer(time.Minute)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			runBackupTask(database, dir, cfg.BackupRetention(), logger)
			timer.Reset(cfg.BackupInterval())
		}
	}
}

func runBackupTask(database *db.DB, dir string, retention time.Duration, logger *zerolog.Logger) {
	dest := filepath.Join(dir, fmt.Sprintf("canchero_%s.db", time.Now().Format("20060102_150405")))
	if err := database.Backup(dest); err != nil {
		logger.Error().Err(err).Msg("database backup failed")
		return
	}
	logger.Info().Str("file", dest).Msg("database backup created")

	deleted, err := database.CleanupBackups(dir, retention)
	if err != nil {
		logger.Error().Err(err).Msg("backup cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("old backups removed")
	}
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.Ping(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
