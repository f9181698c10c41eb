package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort   int
	JWTSecretKey string

	// DatabaseURL опционален: без него арена живёт только в памяти.
	DatabaseURL string

	AdminUsername string
	AdminPassword string

	StartingBalance int
	MaxWager        int

	// Cloudflare R2 — опциональное зеркало снапшотов.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Configured сообщает, заданы ли все параметры архива снапшотов.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	startingBalance, err := intEnv("STARTING_BALANCE", 20)
	if err != nil {
		return nil, err
	}
	if startingBalance < 0 {
		return nil, fmt.Errorf("STARTING_BALANCE must not be negative, got %d", startingBalance)
	}

	maxWager, err := intEnv("MAX_WAGER", 10)
	if err != nil {
		return nil, err
	}
	if maxWager < 1 {
		return nil, fmt.Errorf("MAX_WAGER must be positive, got %d", maxWager)
	}

	cfg := &Config{
		ServerPort:      port,
		JWTSecretKey:    jwtKey,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AdminUsername:   adminUser,
		AdminPassword:   adminPass,
		StartingBalance: startingBalance,
		MaxWager:        maxWager,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
