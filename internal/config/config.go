// Package config loads server settings from the environment
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

// Event backends
const (
	EventsLog   = "log"
	EventsKafka = "kafka"
	EventsAMQP  = "amqp"
	EventsNone  = "none"
)

// Config holds application configuration
type Config struct {
	GRPCAddr string
	HTTPAddr string
	LogLevel string

	StoreBackend string
	DBConnStr    string
	DBMigrate    bool
	BoltPath     string

	JWTSecret string
	JWTTTL    time.Duration

	EventsBackend string // Comma separated, e.g. "log,kafka"
	KafkaBrokers  []string
	KafkaTopic    string
	AMQPURL       string
	AMQPExchange  string

	AuditSchedule string
	SummaryMonths int

	// SeedDemoOwner, when set, receives demo wallets and a goal on startup
	SeedDemoOwner string

	// parse failures collected by Load and reported by Validate
	problems []string
}

// Load reads the configuration from environment variables, applying defaults.
// Malformed values are reported by Validate rather than here.
func Load() *Config {
	cfg := &Config{
		GRPCAddr:      getEnv("GRPC_ADDR", ":8080"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8081"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StoreBackend:  getEnv("STORE_BACKEND", StoreMemory),
		DBConnStr:     dbConnectionString(),
		BoltPath:      getEnv("BOLT_PATH", "nestegg.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		EventsBackend: getEnv("EVENTS_BACKEND", EventsLog),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "ledger_events"),
		AMQPURL:       getEnv("AMQP_URL", ""),
		AMQPExchange:  getEnv("AMQP_EXCHANGE", "nestegg"),
		AuditSchedule: getEnv("AUDIT_SCHEDULE", "@every 1h"),
		SeedDemoOwner: getEnv("SEED_DEMO_OWNER", ""),
	}

	var err error
	if cfg.DBMigrate, err = strconv.ParseBool(getEnv("DB_MIGRATE", "true")); err != nil {
		cfg.problems = append(cfg.problems, fmt.Sprintf("invalid DB_MIGRATE %q: must be a boolean", os.Getenv("DB_MIGRATE")))
	}
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		cfg.problems = append(cfg.problems, fmt.Sprintf("invalid JWT_TTL %q: %v", os.Getenv("JWT_TTL"), err))
	}
	if cfg.SummaryMonths, err = strconv.Atoi(getEnv("SUMMARY_MONTHS", "6")); err != nil {
		cfg.problems = append(cfg.problems, fmt.Sprintf("invalid SUMMARY_MONTHS %q: must be a number", os.Getenv("SUMMARY_MONTHS")))
	}

	return cfg
}

// Validate validates the configuration and returns every problem found in one error
func (c *Config) Validate() error {
	errors := append([]string(nil), c.problems...)

	for name, addr := range map[string]string{"GRPC_ADDR": c.GRPCAddr, "HTTP_ADDR": c.HTTPAddr} {
		if _, port, err := net.SplitHostPort(addr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, addr, err))
		} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s port '%s': must be between 0 and 65535", name, port))
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL '%s'", c.LogLevel))
	}

	validStores := []string{StoreMemory, StorePostgres, StoreBolt}
	if !slices.Contains(validStores, c.StoreBackend) {
		errors = append(errors, fmt.Sprintf("invalid STORE_BACKEND '%s': must be one of %v", c.StoreBackend, validStores))
	}
	if c.StoreBackend == StorePostgres && c.DBConnStr == "" {
		errors = append(errors, "database connection string is required when using postgres backend")
	}
	if c.StoreBackend == StoreBolt && c.BoltPath == "" {
		errors = append(errors, "BOLT_PATH cannot be empty when using bolt backend")
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if c.JWTTTL < 0 {
		errors = append(errors, "JWT_TTL cannot be negative")
	}

	validEvents := []string{EventsLog, EventsKafka, EventsAMQP, EventsNone}
	sinks := c.EventSinks()
	if len(sinks) == 0 {
		errors = append(errors, "EVENTS_BACKEND cannot be empty")
	}
	for _, sink := range sinks {
		if !slices.Contains(validEvents, sink) {
			errors = append(errors, fmt.Sprintf("invalid EVENTS_BACKEND '%s': must be one of %v", sink, validEvents))
		}
	}
	if len(sinks) > 1 && slices.Contains(sinks, EventsNone) {
		errors = append(errors, "EVENTS_BACKEND 'none' cannot be combined with other backends")
	}
	if slices.Contains(sinks, EventsKafka) {
		if len(c.KafkaBrokers) == 0 {
			errors = append(errors, "KAFKA_BROKERS is required when using kafka events")
		}
		if c.KafkaTopic == "" {
			errors = append(errors, "KAFKA_TOPIC cannot be empty when using kafka events")
		}
	}
	if slices.Contains(sinks, EventsAMQP) {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil || c.AMQPURL == "" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s'", c.AMQPURL))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when using amqp events")
		}
	}

	if c.AuditSchedule != "" {
		if _, err := cron.ParseStandard(c.AuditSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AUDIT_SCHEDULE '%s': %v", c.AuditSchedule, err))
		}
	}

	if c.SeedDemoOwner != "" {
		if _, err := uuid.Parse(c.SeedDemoOwner); err != nil {
			errors = append(errors, fmt.Sprintf("invalid SEED_DEMO_OWNER '%s': must be a UUID", c.SeedDemoOwner))
		}
	}

	if c.SummaryMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid SUMMARY_MONTHS %d: must be at least 1", c.SummaryMonths))
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// EventSinks returns the event backends named in EVENTS_BACKEND, without duplicates
func (c *Config) EventSinks() []string {
	var sinks []string
	for _, sink := range splitList(c.EventsBackend) {
		if !slices.Contains(sinks, sink) {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// dbConnectionString prefers DB_CONN_STR and falls back to the individual DB_* keys
func dbConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "nestegg"),
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv treats an empty variable as unset
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
