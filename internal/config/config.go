package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort    int
	CORSOrigins []string

	// Database Configuration. An empty DatabaseURL runs the service without
	// a review database; all duplicate endpoints then report not_configured.
	DatabaseURL  string
	DBLogLevel   string
	StoreTimeout time.Duration

	// User storage (sqlite file and JWT secret live here)
	UserDataDir string

	// Authentication Configuration
	AdminUsername  string
	AdminPassword  string
	JWTSecret      string
	JWTExpiryHours int

	// Rate limits for the unauthenticated auth endpoints
	LoginPerMinute    int
	RegisterPerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 8000)
	cfg.CORSOrigins = getEnvAsList("CORS_ORIGINS")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBLogLevel = getEnvOrDefault("DB_LOG_LEVEL", "warn")
	cfg.StoreTimeout = time.Duration(getEnvAsIntOrDefault("STORE_TIMEOUT_SECONDS", 10)) * time.Second

	cfg.UserDataDir = getEnvOrDefault("USER_DATA_DIR", "./data")

	// Admin bootstrap is skipped when either value is missing
	cfg.AdminUsername = os.Getenv("ADMIN_USER")
	cfg.AdminPassword = os.Getenv("ADMIN_PW")
	cfg.JWTExpiryHours = getEnvAsIntOrDefault("JWT_EXPIRY_HOURS", 24)
	cfg.JWTSecret = loadOrGenerateJWTSecret(filepath.Join(cfg.UserDataDir, ".jwt_secret"))

	cfg.LoginPerMinute = getEnvAsIntOrDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 5)
	cfg.RegisterPerMinute = getEnvAsIntOrDefault("RATE_LIMIT_REGISTER_PER_MINUTE", 3)

	return cfg, nil
}

// DatabaseConfigured reports whether a review database is set up
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

// UserDatabasePath returns the sqlite file that stores reviewer accounts
func (c *Config) UserDatabasePath() string {
	return filepath.Join(c.UserDataDir, "users.db")
}

// loadOrGenerateJWTSecret loads JWT secret from file or generates a new one
func loadOrGenerateJWTSecret(secretPath string) string {
	// First check if JWT_SECRET env var is set (allows override)
	if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" {
		log.Printf("Using JWT secret from environment variable")
		return envSecret
	}

	if data, err := os.ReadFile(secretPath); err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			log.Printf("Loaded JWT secret from %s", secretPath)
			return secret
		}
	}

	secret := generateSecureSecret(32) // 256 bits

	if err := os.MkdirAll(filepath.Dir(secretPath), 0755); err != nil {
		log.Printf("Warning: Could not create directory for JWT secret: %v", err)
		return secret
	}

	if err := os.WriteFile(secretPath, []byte(secret), 0600); err != nil {
		log.Printf("Warning: Could not save JWT secret to file: %v", err)
	} else {
		log.Printf("Generated and saved new JWT secret to %s", secretPath)
	}

	return secret
}

// generateSecureSecret generates a cryptographically secure random string
func generateSecureSecret(bytes int) string {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		log.Printf("Warning: Could not generate secure random bytes: %v", err)
		return "fallback-insecure-secret-please-set-jwt-secret-env"
	}
	return hex.EncodeToString(b)
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated environment variable, dropping blanks
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
