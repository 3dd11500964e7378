// Package config handles configuration loading for the user service.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/user-service/internal/service"
)

// Defaults.
const (
	DefaultPort      = "4000"
	DefaultDBPath    = "users.json"
	DefaultTokenTTL  = time.Hour
	DefaultRedisPort = "6379"
)

// Config holds all configuration for the user service.
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	UsersDBPath string

	JWTSecret   string
	JWTTTL      time.Duration
	TokenHeader string

	BcryptCost  int
	HashWorkers int

	BasicAuthUsername string
	BasicAuthPassword string
	BasicAuthRealm    string

	AllowedOrigins []string

	RedisHost     string
	RedisPort     string
	RedisPassword string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var errs []error

	jwtSecret, err := getEnvRequired("JWT_SECRET")
	if err != nil {
		errs = append(errs, err)
	}

	bcryptCost, err := parseInt("BCRYPT_COST", getEnv("BCRYPT_COST", ""), service.DefaultBcryptCost)
	if err != nil {
		errs = append(errs, err)
	}

	jwtTTL, err := parseDuration("JWT_TTL", getEnv("JWT_TTL", ""), DefaultTokenTTL)
	if err != nil {
		errs = append(errs, err)
	}

	hashWorkers, err := parseInt("HASH_WORKERS", getEnv("HASH_WORKERS", ""), runtime.GOMAXPROCS(0))
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		Port:              getEnv("PORT", DefaultPort),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		UsersDBPath:       getEnv("USERS_DB_PATH", DefaultDBPath),
		JWTSecret:         jwtSecret,
		JWTTTL:            jwtTTL,
		TokenHeader:       getEnv("TOKEN_HEADER", "Authorization"),
		BcryptCost:        bcryptCost,
		HashWorkers:       hashWorkers,
		BasicAuthUsername: getEnv("BASIC_AUTH_USERNAME", ""),
		BasicAuthPassword: getEnv("BASIC_AUTH_PASSWORD", ""),
		BasicAuthRealm:    getEnv("BASIC_AUTH_REALM", ""),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "")),
		RedisHost:         getEnv("REDIS_HOST", ""),
		RedisPort:         getEnv("REDIS_PORT", DefaultRedisPort),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
	}, nil
}

// RevocationEnabled reports whether a redis denylist is configured.
func (c *Config) RevocationEnabled() bool {
	return c.RedisHost != ""
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

func parseDuration(key, value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}

func parseInt(key, value string, defaultValue int) (int, error) {
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
