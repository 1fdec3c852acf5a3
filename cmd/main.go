package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/adapter/memory"
	"github.com/YelzhanWeb/plates/internal/adapter/metrics"
	"github.com/YelzhanWeb/plates/internal/adapter/postgres"
	"github.com/YelzhanWeb/plates/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/plates/internal/app/catalog"
	"github.com/YelzhanWeb/plates/internal/app/nutrition"
	"github.com/YelzhanWeb/plates/internal/app/order"
	"github.com/YelzhanWeb/plates/internal/app/plate"
	"github.com/YelzhanWeb/plates/internal/app/user"
	"github.com/YelzhanWeb/plates/internal/config"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/plates/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/plates/internal/adapter/http"
)

var version = "dev"

const (
	modeAPI                    = "api"
	modeNotificationSubscriber = "notification-subscriber"
)

type repositories struct {
	ingredients interfaces.IngredientRepository
	plates      interfaces.PlateRepository
	orders      interfaces.OrderRepository
	users       interfaces.UserRepository
	close       func()
}

func main() {
	mode := flag.String("mode", modeAPI, "Service mode: api, notification-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lgr := logger.New("plates", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case modeAPI:
		err = runAPI(ctx, cfg, lgr)
	case modeNotificationSubscriber:
		err = runNotificationSubscriber(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil {
		lgr.Error("service_failed", "Service stopped with error", "runtime", map[string]interface{}{"mode": *mode}, err)
		os.Exit(1)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	repos, err := openRepositories(ctx, cfg.Database, lgr)
	if err != nil {
		return err
	}
	defer repos.close()

	publisher, closePublisher, err := openPublisher(cfg.RabbitMQ, lgr)
	if err != nil {
		return err
	}
	defer closePublisher()

	m := metrics.New()

	catalogService := catalog.NewService(repos.ingredients, lgr)
	if err := catalogService.Seed(ctx); err != nil {
		return err
	}

	services := httpAdapter.Services{
		Catalog:   catalogService,
		Nutrition: nutrition.NewService(catalogService, domain.DefaultTarget),
		Plates:    plate.NewService(repos.plates, repos.users, catalogService, m, lgr),
		Orders:    order.NewService(repos.orders, repos.plates, publisher, m, lgr),
		Users:     user.NewService(repos.users, lgr),
	}

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()

	limiter := httpAdapter.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, lgr)
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter.StartCleanup(limiterCtx, seconds(cfg.RateLimit.CleanupInterval), seconds(cfg.RateLimit.ClientIdle))
	}

	handler := httpAdapter.NewRouter(services, m, lgr, httpAdapter.RouterConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestTimeout:    seconds(cfg.Server.WriteTimeout),
		Version:           version,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		RateLimiter:       limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  seconds(cfg.Server.ReadTimeout),
		WriteTimeout: seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  seconds(cfg.Server.IdleTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		lgr.Info("service_started", fmt.Sprintf("Plates API started on %s", server.Addr), "startup", map[string]interface{}{
			"port":    cfg.Server.Port,
			"driver":  cfg.Database.Driver,
			"version": version,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Plates API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lgr.Info("shutdown_complete", "Plates API stopped", "shutdown", nil)
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host":     cfg.RabbitMQ.Host,
		"exchange": cfg.RabbitMQ.Exchange,
	})

	consumer := rabbitmq.NewConsumer(conn, cfg.RabbitMQ.Exchange, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	if err := consumer.ConsumeNotifications(ctx, notificationHandler.HandleNotification); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume notifications: %w", err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return nil
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, lgr logger.Logger) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore()
		lgr.Info("storage_ready", "Using in-memory storage", "startup", nil)
		return &repositories{
			ingredients: store.Ingredients(),
			plates:      store.Plates(),
			orders:      store.Orders(),
			users:       store.Users(),
			close:       func() {},
		}, nil
	}

	if cfg.Migrate {
		schemaVersion, err := postgres.Migrate(cfg.MigrateURL())
		if err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		lgr.Info("db_migrated", "Database schema is up to date", "startup", map[string]interface{}{"version": schemaVersion})
	}

	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Host,
		"db":   cfg.Database,
	})

	return &repositories{
		ingredients: postgres.NewIngredientRepository(db),
		plates:      postgres.NewPlateRepository(db),
		orders:      postgres.NewOrderRepository(db),
		users:       postgres.NewUserRepository(db),
		close:       db.Close,
	}, nil
}

func openPublisher(cfg config.RabbitMQConfig, lgr logger.Logger) (interfaces.EventPublisher, func(), error) {
	if !cfg.Enabled {
		lgr.Info("events_disabled", "RabbitMQ disabled, order events are not published", "startup", nil)
		return rabbitmq.NewNopPublisher(), func() {}, nil
	}

	conn, err := rabbitmq.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host":     cfg.Host,
		"exchange": cfg.Exchange,
	})

	return rabbitmq.NewPublisher(conn, cfg.Exchange), func() { conn.Close() }, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
