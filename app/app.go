// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"einvoice-gateway/config"
	"einvoice-gateway/db"
	"einvoice-gateway/handler"
	"einvoice-gateway/logger"
	"einvoice-gateway/metrics"
	"einvoice-gateway/repository"
	"einvoice-gateway/router"
	"einvoice-gateway/service"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App is the fully wired gateway client.
type App struct {
	DB        *sql.DB
	Redis     *redis.Client
	Router    http.Handler
	Tokens    *service.TokenService
	Gateway   *service.GatewayService
	Refresher *service.TokenRefresher
}

// New wires every layer on top of an open database and Redis client.
func New(cfg config.Config, database *sql.DB, redisClient *redis.Client) *App {
	gw := cfg.Gateway

	tokenRepo := repository.NewTokenRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	settings := service.NewSettingsService(settingsRepo, tokenRepo, gw)

	sink := logger.NewSink(
		logger.NewRedisRing(redisClient, logger.DefaultRingKey, gw.LogCapacity),
		settings.DebugEnabled,
	)
	m := metrics.New("einvoice_gateway")
	httpClient := &http.Client{Timeout: gw.Timeout}

	locker := service.NewRedisRefreshLock(redisClient, service.DefaultRefreshLockKey, gw.LockTTL)
	tokens := service.NewTokenService(tokenRepo, locker, settings, httpClient, sink, m, service.TokenOptions{
		Timeout:      gw.Timeout,
		LockWait:     gw.LockWait,
		ExpiryMargin: gw.ExpiryMargin,
	})
	gateway := service.NewGatewayService(tokens, settings, httpClient, sink, m, service.GatewayOptions{
		Timeout:           gw.Timeout,
		RequestsPerSecond: gw.RequestsPerSecond,
		Burst:             gw.Burst,
	})

	r := router.NewRouter(router.Deps{
		Gateway:  handler.NewGatewayHandler(gateway),
		Admin:    handler.NewAdminHandler(tokens, settings, sink),
		Verifier: service.NewAuthService(cfg.JWT.SecretKey),
		Metrics:  m.Handler(),
	})

	return &App{
		DB:        database,
		Redis:     redisClient,
		Router:    r,
		Tokens:    tokens,
		Gateway:   gateway,
		Refresher: service.NewTokenRefresher(tokens, gw.RefreshInterval),
	}
}

func Run() {
	logger.Init()
	config.LoadConfig(".")
	logger.SetLevel(config.AppConfig.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	a := New(config.AppConfig, database, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		a.Refresher.Run(ctx)
	}()

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("Failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}
	<-refresherDone

	logger.Log.Info("Server exited properly")
}
