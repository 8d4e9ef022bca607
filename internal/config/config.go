package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Auth. An empty AuthPasswordHash disables authentication.
	JWTSecret        string
	JWTExpirationDur time.Duration
	AuthPasswordHash string

	// Events. An empty AMQPURL keeps events in-process only.
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Observability. An empty endpoint disables the OTLP exporter; an empty
	// MetricsAPIKey leaves /metrics open.
	OTLPEndpoint  string
	MetricsAPIKey string

	// Reports
	ReportIncludePrincipalTotal bool
	ReportAbsoluteOutflows      bool
	ReportTargetsGroup          string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "3333"),
		Env:  getEnv("ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fluxo"),
		DBPassword: getEnv("DB_PASSWORD", "fluxo"),
		DBName:     getEnv("DB_NAME", "fluxo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "fluxo.db"),

		JWTSecret:        getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "fluxo.ledger"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger.events"),

		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),

		ReportIncludePrincipalTotal: getEnvBool("REPORT_INCLUDE_PRINCIPAL_TOTAL", true),
		ReportAbsoluteOutflows:      getEnvBool("REPORT_ABSOLUTE_OUTFLOWS", false),
		ReportTargetsGroup:          getEnv("REPORT_TARGETS_GROUP", ""),
	}

	expStr := getEnv("JWT_EXPIRES_IN", "12h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 12h\n", expStr)
		expDur = 12 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// AuthEnabled reports whether the API requires a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.AuthPasswordHash != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, v, defaultValue)
		return defaultValue
	}
	return b
}
