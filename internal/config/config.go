package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTPublicKey   *rsa.PublicKey
	DatabaseURL    string
	Port           string
	RedisAddress   string
	RedisPassword  string
	RequestTimeout time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFile        string
	LogJSON        bool
	// Migrate applies the embedded schema on startup.
	Migrate bool
}

// LoadDotEnv loads a .env file when one exists. Real environment variables
// take precedence over the file.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		return nil, errors.New("DB_CONNECTION_STRING environment variable is required")
	}

	publicKey, err := loadPublicKey(getenv("PUBLIC_KEY_PATH", "/etc/certs/public.pem"))
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}

	timeout, err := time.ParseDuration(getenv("REQUEST_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	return &Config{
		JWTPublicKey:   publicKey,
		DatabaseURL:    dbURL,
		Port:           getenv("PORT", "8080"),
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RequestTimeout: timeout,
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		LogJSON:        os.Getenv("LOG_FORMAT") == "json",
		Migrate:        os.Getenv("DB_MIGRATE") == "true",
	}, nil
}

func getenv(key, fallback string) string {
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

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
