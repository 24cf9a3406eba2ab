package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GRPCAddr:      ":8080",
		HTTPAddr:      ":8081",
		LogLevel:      "info",
		StoreBackend:  StoreMemory,
		BoltPath:      "nestegg.db",
		JWTSecret:     "secret",
		JWTTTL:        time.Hour,
		EventsBackend: EventsLog,
		KafkaTopic:    "ledger_events",
		AMQPExchange:  "nestegg",
		AuditSchedule: "@every 1h",
		SummaryMonths: 6,
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"GRPC_ADDR", "HTTP_ADDR", "LOG_LEVEL", "STORE_BACKEND", "DB_CONN_STR", "DB_MIGRATE", "BOLT_PATH",
		"JWT_TTL", "EVENTS_BACKEND", "KAFKA_BROKERS", "KAFKA_TOPIC", "AMQP_EXCHANGE", "AUDIT_SCHEDULE", "SUMMARY_MONTHS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.True(t, cfg.DBMigrate)
	assert.Equal(t, "nestegg.db", cfg.BoltPath)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, EventsLog, cfg.EventsBackend)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "ledger_events", cfg.KafkaTopic)
	assert.Equal(t, "nestegg", cfg.AMQPExchange)
	assert.Equal(t, "@every 1h", cfg.AuditSchedule)
	assert.Equal(t, 6, cfg.SummaryMonths)
}

func TestLoad_MalformedValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_MIGRATE", "maybe")
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("SUMMARY_MONTHS", "six")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DB_MIGRATE")
	assert.Contains(t, err.Error(), "invalid JWT_TTL")
	assert.Contains(t, err.Error(), "invalid SUMMARY_MONTHS")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":9090")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9091")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_CONN_STR", "host=db dbname=nestegg")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_TOPIC", "ledger")
	t.Setenv("AUDIT_SCHEDULE", "*/5 * * * *")
	t.Setenv("SUMMARY_MONTHS", "12")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "127.0.0.1:9091", cfg.HTTPAddr)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, "host=db dbname=nestegg", cfg.DBConnStr)
	assert.False(t, cfg.DBMigrate)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 12, cfg.SummaryMonths)
}

func TestLoad_DBConnectionFromParts(t *testing.T) {
	t.Setenv("DB_CONN_STR", "")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_NAME", "ledger")

	cfg := Load()
	assert.Contains(t, cfg.DBConnStr, "host=pg")
	assert.Contains(t, cfg.DBConnStr, "dbname=ledger")
}

func TestConfig_EventSinks(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"log", []string{EventsLog}},
		{"log,kafka", []string{EventsLog, EventsKafka}},
		{" kafka , amqp ,kafka", []string{EventsKafka, EventsAMQP}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := &Config{EventsBackend: tt.raw}
			assert.Equal(t, tt.want, cfg.EventSinks())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad grpc address", func(c *Config) { c.GRPCAddr = "8080" }, "invalid GRPC_ADDR"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid LOG_LEVEL"},
		{"unknown store", func(c *Config) { c.StoreBackend = "sqlite" }, "invalid STORE_BACKEND"},
		{"postgres without connection", func(c *Config) { c.StoreBackend = StorePostgres }, "database connection string is required"},
		{"bolt without path", func(c *Config) { c.StoreBackend = StoreBolt; c.BoltPath = "" }, "BOLT_PATH cannot be empty"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"unknown events", func(c *Config) { c.EventsBackend = "sns" }, "invalid EVENTS_BACKEND"},
		{"kafka without brokers", func(c *Config) { c.EventsBackend = EventsKafka }, "KAFKA_BROKERS is required"},
		{"log and kafka", func(c *Config) { c.EventsBackend = "log, kafka"; c.KafkaBrokers = []string{"kafka:9092"} }, ""},
		{"list with unknown events", func(c *Config) { c.EventsBackend = "log,sns" }, "invalid EVENTS_BACKEND 'sns'"},
		{"list needing brokers", func(c *Config) { c.EventsBackend = "log,kafka" }, "KAFKA_BROKERS is required"},
		{"none combined", func(c *Config) { c.EventsBackend = "none,log" }, "'none' cannot be combined"},
		{"empty events list", func(c *Config) { c.EventsBackend = " , " }, "EVENTS_BACKEND cannot be empty"},
		{"amqp bad scheme", func(c *Config) { c.EventsBackend = EventsAMQP; c.AMQPURL = "http://rabbit" }, "invalid AMQP URL scheme"},
		{"amqp missing url", func(c *Config) { c.EventsBackend = EventsAMQP }, "invalid AMQP URL"},
		{"bad schedule", func(c *Config) { c.AuditSchedule = "every hour" }, "invalid AUDIT_SCHEDULE"},
		{"zero months", func(c *Config) { c.SummaryMonths = 0 }, "invalid SUMMARY_MONTHS"},
		{"demo owner not a uuid", func(c *Config) { c.SeedDemoOwner = "demo" }, "invalid SEED_DEMO_OWNER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.SummaryMonths = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "invalid SUMMARY_MONTHS")
}
