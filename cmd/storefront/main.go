package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/events"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/storage"
	"github.com/fjod/storefront/internal/storefront"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/fjod/storefront/pkg/shutdown"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	st, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()
	slog.Info("storage ready", "driver", cfg.StorageDriver)

	var sinks events.Multi
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		sinks = append(sinks, kp)
		slog.Info("publishing order events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.DialConfig(cfg.RabbitMQURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer conn.Close()
		rp, err := events.NewRabbitPublisher(conn, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer rp.Close()
		sinks = append(sinks, rp)
		slog.Info("publishing order events to rabbitmq", "exchange", cfg.RabbitMQExchange)
	}

	var publisher events.Publisher = events.NopPublisher{}
	switch len(sinks) {
	case 0:
	case 1:
		publisher = sinks[0]
	default:
		publisher = sinks
	}

	deps := storefront.Deps{
		Storage:   st,
		Rules:     pricing.NewRules(cfg.FreeShippingThreshold, cfg.ShippingFee, cfg.TaxRate),
		Publisher: publisher,
		Checkout: checkout.Options{
			AutofillAddress: cfg.AutofillAddress,
			SubmitTimeout:   cfg.SubmitTimeout,
		},
		Placeholders: cfg.DevPlaceholders,
		IdleTTL:      cfg.SessionIdleTTL,
	}

	otp := auth.NewOTPService(auth.OTPConfig{
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		DevCode:     cfg.OTPDevCode,
	}, auth.LogSender{}, auth.DevIdentity{})
	defer otp.Close()

	routerCfg := h.RouterConfig{
		OTP:              otp,
		RequestTimeout:   cfg.RequestTimeout,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}

	// Backend-backed parts are only assigned when a backend exists; a nil
	// interface is what selects mock mode downstream.
	if cfg.MockOrders() {
		slog.Warn("BACKEND_URL not set: orders are mocked in session storage and the catalog is disabled")
	} else {
		client, err := backend.NewClient(cfg.BackendURL, backend.NewHTTPClient(cfg.BackendTimeout, circuitbreaker.Options{
			MaxFailures: uint32(cfg.BreakerMaxFailures),
			OpenTimeout: cfg.BreakerOpenTimeout,
		}))
		if err != nil {
			return err
		}

		productCache, closeCache, err := openCatalogCache(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeCache()

		catalogService := catalog.NewService(client, productCache)
		deps.Backend = client
		routerCfg.Accounts = client
		routerCfg.Catalog = catalogService
		routerCfg.Products = catalogService
		routerCfg.AllOrders = client
		slog.Info("backend configured", "url", cfg.BackendURL)
	}

	registry := storefront.NewRegistry(deps)
	defer registry.Close()
	routerCfg.Sessions = registry

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:      h.NewRouter(routerCfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("storefront starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStorage(), func() {}, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		st, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := st.RunMigrations(); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	case config.DriverPostgres:
		st, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := st.RunMigrations(); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	case config.DriverRedis:
		client, err := connectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStorage(client, cfg.RedisTTL), func() { client.Close() }, nil

	case config.DriverMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		st := storage.NewMongoStorage(db)
		if err := st.CreateIndexes(ctx); err != nil {
			db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		return st, func() { db.Client().Disconnect(context.Background()) }, nil

	case config.DriverFirestore:
		client, err := storage.ConnectFirestore(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewFirestoreStorage(client), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func openCatalogCache(ctx context.Context, cfg config.Config) (cache.ProductCache, func(), error) {
	if cfg.CatalogCacheAddr == "" {
		return cache.NopCache{}, func() {}, nil
	}
	client, err := connectRedis(ctx, cfg.CatalogCacheAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("catalog cache enabled", "addr", cfg.CatalogCacheAddr, "ttl", cfg.CatalogCacheTTL)
	return cache.NewRedisCache(client, cfg.CatalogCacheTTL), func() { client.Close() }, nil
}

func connectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}
	return client, nil
}
