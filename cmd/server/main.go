package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shrtn/internal/config"
	"shrtn/internal/handlers"
	"shrtn/internal/logger"
	"shrtn/internal/metrics"
	"shrtn/internal/repository"
	"shrtn/internal/services"
	"shrtn/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shrtn",
		Usage: "session-authenticated URL shortener",
		Action: func(c *cli.Context) error {
			return Run(c.Context)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "migrate the database and start the HTTP server (default)",
				Action: func(c *cli.Context) error {
					return Run(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "bring the database schema up to date and exit",
				Action: func(c *cli.Context) error {
					return Migrate(c.Context)
				},
			},
		},
	}
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(logger.Config{Production: cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func Migrate(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repository.Migrate(ctx, db, cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("database schema is up to date")
	return nil
}

func Run(ctx context.Context) error {
	// 1. Load Config and Logger
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 2. Initialize Database
	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// 3. Run Migrations
	log.Info("running database migrations")
	if err := repository.Migrate(ctx, db, cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 4. Initialize Redis
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
		if err != nil {
			log.Warn("redis unavailable, alias cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
		}
	}

	// 5. Session secret
	if cfg.SessionSecret == "" {
		cfg.SessionSecret, err = randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Warn("SESSION_SECRET is not set, using a random key; sessions end when the process exits")
	}
	sessionManager, err := session.NewManager([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.RememberTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	// 6. Initialize Services
	m := metrics.New()
	store := repository.NewStore(db)
	cache := services.NewLinkCache(rdb, cfg.CacheTTL, log)
	shortenerService := services.NewShortenerService(store, cache, m, log, cfg.AliasMaxAttempts)
	accountService := services.NewAccountService(store, m, log)
	qrService := services.NewQRService()

	// 7. Initialize Handler and Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(cfg, log, store, shortenerService, accountService, sessionManager, qrService, m)
	r, err := h.SetupRouter()
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
