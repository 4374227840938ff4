package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDriver    = "sqlite3"
	defaultSQLiteDSN = "file:tournament.db?_busy_timeout=5000"
)

// Config holds the runtime settings of the tournament server.
type Config struct {
	DBDriver     string
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// The match executor is the only client allowed to report results.
	ExecutorID         string
	ExecutorSecretHash string

	CORSAllowedOrigins []string
	SettingsFile       string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	database, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	secretHash := os.Getenv("EXECUTOR_SECRET_HASH")
	if secretHash == "" {
		return nil, fmt.Errorf("EXECUTOR_SECRET_HASH environment variable is not set")
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	return &Config{
		DBDriver:           database.DBDriver,
		DatabaseURL:        database.DatabaseURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		ExecutorID:         getEnv("EXECUTOR_ID", "match-executor"),
		ExecutorSecretHash: secretHash,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SettingsFile:       os.Getenv("TOURNAMENT_SETTINGS_FILE"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

// DatabaseConfig is the part of Config needed by tools that only touch the
// catalog tables.
type DatabaseConfig struct {
	DBDriver    string
	DatabaseURL string
}

func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() (*DatabaseConfig, error) {
	driver := getEnv("DB_DRIVER", defaultDriver)
	if driver != "postgres" && driver != "sqlite3" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		if driver == "postgres" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		dbURL = defaultSQLiteDSN
	}
	return &DatabaseConfig{DBDriver: driver, DatabaseURL: dbURL}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
