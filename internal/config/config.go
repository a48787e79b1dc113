package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	ServerPort string

	// Database settings
	DatabaseURL string

	// Token settings
	JWTSecretKey     string
	JWTAlgorithm     string
	JWTExpireMinutes int

	// DevEnvironment selects the in-memory store instead of PostgreSQL.
	DevEnvironment bool

	// OpenTelemetry settings
	OTLPEndpoint string
	ServiceName  string
	Environment  string
}

// Load returns configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first when
// present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecretKey:     getEnv("JWT_SECRET_KEY", ""),
		JWTAlgorithm:     getEnv("JWT_ALGORITHM", "HS256"),
		JWTExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
		DevEnvironment:   getEnvBool("DEV_ENVIRONMENT", false),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:      getEnv("OTEL_SERVICE_NAME", "todo-service"),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
