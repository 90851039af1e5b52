package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/ai"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/api/handler"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/api/router"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/config"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/handlers"
	jobstorage "github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/storage"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/notify"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/shared/logger"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/shared/postgresql"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established")

	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		appLogger.Info("RabbitMQ connection established")
	}

	jobStore := jobstorage.NewStorage(dbClient.GetDB(), appLogger.Logger)
	notificationStore := notify.NewStorage(dbClient.GetDB(), appLogger.Logger)
	emitter := notify.NewEmitter(notificationStore, appLogger.Logger)

	processor := jobs.NewProcessor(&jobs.Config{
		Store:      jobStore,
		Notifier:   emitter,
		Logger:     appLogger.Logger,
		JobTimeout: cfg.Worker.JobTimeout,
	})

	generator := ai.NewClient(&ai.Config{
		BaseURL:        cfg.AI.BaseURL,
		APIKey:         os.Getenv(cfg.AI.APIKeyEnv),
		Model:          cfg.AI.Model,
		RequestTimeout: cfg.AI.RequestTimeout,
	}, appLogger.Logger)

	handlers.RegisterAll(processor, generator, appLogger.Logger)

	inlineRunner := jobs.NewInlineRunner(processor, appLogger.Logger, cfg.Worker.JobTimeout)

	// Safety-net poller: picks up jobs whose inline trigger was lost
	// (process restart between create and trigger).
	poller := jobs.NewPoller(&jobs.PollerConfig{
		Processor:  processor,
		Sweeper:    jobStore,
		Logger:     appLogger.Logger,
		Interval:   cfg.Worker.PollInterval,
		BatchSize:  cfg.Worker.BatchSize,
		StaleAfter: cfg.Worker.StaleAfter,
	})

	watcher := jobs.NewWatcher(&jobs.WatcherConfig{
		Lister:         jobStore,
		Logger:         appLogger.Logger,
		ActiveInterval: cfg.Watch.ActiveInterval,
		IdleInterval:   cfg.Watch.IdleInterval,
	})

	deps := &handler.Dependencies{
		Logger:        appLogger.Logger,
		Processor:     processor,
		InlineRunner:  inlineRunner,
		Watcher:       watcher,
		JobLister:     jobStore,
		Notifications: notificationStore,
	}
	if rabbitClient != nil {
		deps.Publisher = rabbitClient
	}

	engine := router.SetupRouter(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening",
			slog.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("HTTP server error",
			slog.Any("error", err),
		)
		return err
	}

	// Stop the poller before canceling the shared context so an
	// in-flight tick gets its grace period instead of an instant abort.
	poller.Stop()
	cancel()

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP server shutdown timeout exceeded",
			slog.Any("error", err),
		)
	}

	appLogger.Info("API service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		Migrate:         cfg.Migrate,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
