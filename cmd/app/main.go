package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storefront/cmd"
	"storefront/internal/adapters/out/postgres"
	"storefront/internal/jobs"
	"storefront/internal/pkg/metrics"
	"storefront/internal/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "storefront"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(serviceName, configs.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialise tracing: %v", err)
	}

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.AutoMigrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	metrics.Register()

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}

	e := startWebServer(app, configs.HTTPPort)

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err = app.Close(); err != nil {
		logger.Error("Closing connections failed", "error", err)
	}
	if err = shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Flushing spans failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	// .env is optional, the environment wins
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", "storefront"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		NotifyDelivery: envString("NOTIFY_DELIVERY", cmd.DeliveryLog),
		AWSRegion:      envString("AWS_REGION", ""),
		SNSTopicARN:    envString("SNS_TOPIC_ARN", ""),

		StoreName:           envString("STORE_NAME", "Nuestra tienda"),
		WhatsAppCountryCode: envString("WHATSAPP_COUNTRY_CODE", "51"),

		DispatchSchedule:    envString("NOTIFY_DISPATCH_SCHEDULE", jobs.DefaultDispatchSchedule),
		JanitorSchedule:     envString("NOTIFY_JANITOR_SCHEDULE", jobs.DefaultJanitorSchedule),
		Retention:           envDuration("NOTIFY_RETENTION", 168*time.Hour),
		BatchSize:           envInt("NOTIFY_BATCH_SIZE", 10),
		MaxAttempts:         envInt("NOTIFY_MAX_ATTEMPTS", 3),
		IntentTimeout:       envDuration("NOTIFY_INTENT_TIMEOUT", 5*time.Second),
		DispatchConcurrency: envInt("NOTIFY_DISPATCH_CONCURRENCY", 1),
		DrainOnWrite:        envBool("NOTIFY_DRAIN_ON_WRITE", true),

		JaegerEndpoint: envString("JAEGER_ENDPOINT", ""),
	}
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func startWebServer(app *cmd.CompositionRoot, port string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	app.CreateHTTPServer().Register(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	return e
}
