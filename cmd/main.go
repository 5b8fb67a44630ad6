/**
 * @description
 * This is the main entry point for the account-service. Its responsibility
 * is to initialize all necessary components, start the outbox relay that
 * delivers notifications for committed mutations, and serve the command
 * endpoints.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Establishes and manages a connection pool to the PostgreSQL database.
 * - Wires up the command handlers and dispatcher with their dependencies.
 * - Runs the outbox relay and a scheduled retention sweep of settled rows.
 * - Starts the HTTP server and implements graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic and storage.
 * - pgxpool for database connection, godotenv for local config, cron for
 *   the retention schedule.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/parabank/account-service/internal/api"
	"github.com/parabank/account-service/internal/app"
	"github.com/parabank/account-service/internal/config"
	"github.com/parabank/account-service/internal/numbering"
	"github.com/parabank/account-service/internal/store"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}
	dbConfig.MaxConns = 50
	dbConfig.MinConns = 5
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Set up dependencies.
	accountRepo := store.NewPostgresAccountRepository(dbpool)
	customerRepo := store.NewPostgresCustomerRepository(dbpool)
	outboxRepo := store.NewPostgresOutboxRepository(dbpool)
	uow := store.NewPostgresUnitOfWork(dbpool)
	generator := numbering.NewGenerator(accountRepo)

	policy := app.NotificationPolicy{
		OnCreate: cfg.NotifyOnCreate,
		OnUpdate: cfg.NotifyOnUpdate,
		OnDelete: cfg.NotifyOnDelete,
	}
	service := app.NewAccountService(uow, customerRepo, generator, policy, cfg.NotificationChannel)
	dispatcher := app.NewDispatcher(service)

	// Start the outbox relay.
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	relay := app.NewOutboxRelay(outboxRepo, cfg.RabbitMQURL, app.RelaySettings{
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: time.Duration(cfg.OutboxPollIntervalMs) * time.Millisecond,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	})
	go func() {
		log.Printf("Starting outbox relay for channel '%s'...", cfg.NotificationChannel)
		relay.Run(relayCtx)
	}()

	// Schedule the nightly retention sweep of settled outbox rows.
	retention := time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		purged, err := outboxRepo.PurgePublishedOutbox(ctx, retention)
		if err != nil {
			log.Printf("Outbox retention sweep error: %v", err)
			return
		}
		log.Printf("Outbox retention sweep removed %d settled rows", purged)
	}); err != nil {
		log.Fatalf("Failed to schedule outbox retention sweep: %v", err)
	}
	scheduler.Start()

	// Setup and start HTTP server.
	router := api.NewRouter(dispatcher)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	log.Println("Account service is running with command API and outbox relay.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down account-service...")

	stopRelay()
	<-scheduler.Stop().Done()

	// Create a context with a timeout for shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the HTTP server.
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
