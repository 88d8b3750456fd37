package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/EricGoj/Middleware/internal/app/issues"
	"github.com/EricGoj/Middleware/internal/app/jiraevents"
	"github.com/EricGoj/Middleware/internal/app/tasks"
	"github.com/EricGoj/Middleware/internal/config"
	http_issues "github.com/EricGoj/Middleware/internal/handler/http/issues"
	http_tasks "github.com/EricGoj/Middleware/internal/handler/http/tasks"
	http_webhook "github.com/EricGoj/Middleware/internal/handler/http/webhook"
	"github.com/EricGoj/Middleware/internal/infrastructure/database"
	"github.com/EricGoj/Middleware/internal/infrastructure/jira"
	"github.com/EricGoj/Middleware/internal/infrastructure/kafka"
	"github.com/EricGoj/Middleware/internal/notify"
	"github.com/EricGoj/Middleware/internal/outbox"
	postgres_issue_repo "github.com/EricGoj/Middleware/internal/repository/issue_repo/postgres"
	postgres_outbox_repo "github.com/EricGoj/Middleware/internal/repository/outbox_repo/postgres"
	postgres_task_repo "github.com/EricGoj/Middleware/internal/repository/task_repo/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Task Bridge starting...")

	appLogger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.DBHost,
		Port:     cfg.DBConfig.DBPort,
		User:     cfg.DBConfig.DBUser,
		Password: cfg.DBConfig.DBPassword,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.DBSSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}

	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()

	appLogger.Info("Running database migrations...")
	migrateDSN := "postgres://" + cfg.GetDBMigrationConnectionString()
	m, err := migrate.New(cfg.MigrationsPath, migrateDSN)
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	kafkaProducer := kafka.NewProducer(cfg.GetKafkaBrokers(), appLogger)
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("Error closing Kafka producer", zap.Error(err))
		} else {
			appLogger.Info("Kafka producer closed.")
		}
	}()
	appLogger.Info("Kafka producer created successfully.")

	jiraClient := jira.NewClient(jira.Config{
		BaseURL:    cfg.JiraBaseURL,
		Email:      cfg.JiraEmail,
		APIToken:   cfg.JiraAPIToken,
		ProjectKey: cfg.JiraProjectKey,
	}, appLogger.With(zap.String("component", "JiraClient")))

	taskRepository := postgres_task_repo.NewTaskRepository(db, appLogger)
	issueRepository := postgres_issue_repo.NewIssueRepository(db, appLogger)
	outboxRepository := postgres_outbox_repo.NewOutboxRepository(db, postgres_outbox_repo.RetryPolicy{
		MaxRetries: cfg.OutboxMaxRetries,
		Backoff:    cfg.OutboxRetryBackoff,
	}, appLogger)

	publisher := notify.NewKafkaPublisher(kafkaProducer, cfg.KafkaEventsTopic, appLogger.With(zap.String("component", "EventPublisher")))

	taskService := tasks.NewTaskService(taskRepository, jiraClient, publisher, cfg.JiraIssueType, appLogger.With(zap.String("component", "TaskService")))
	issueService := issues.NewIssueService(issueRepository, jiraClient, publisher, appLogger.With(zap.String("component", "IssueService")))
	webhookService := jiraevents.NewService(publisher, appLogger.With(zap.String("component", "JiraEventService")))

	processor := outbox.NewProcessor(
		outboxRepository,
		issueRepository,
		jiraClient,
		cfg.JiraIssueType,
		cfg.OutboxPollInterval,
		cfg.OutboxPollTimeout,
		cfg.OutboxBatchSize,
		appLogger.With(zap.String("component", "SyncProcessor")),
	)

	processorCtx, stopProcessor := context.WithCancel(context.Background())
	go processor.Run(processorCtx)
	appLogger.Info("Transactional sync event processor started.")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	http_tasks.RegisterRoutes(r, taskService, appLogger)
	http_issues.RegisterRoutes(r, issueService, appLogger)
	http_webhook.RegisterRoutes(r, webhookService, cfg.JiraWebhookSecret, appLogger)

	serverAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Task Bridge started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down Task Bridge...")
	stopProcessor()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Task Bridge graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Task Bridge stopped.")
}
