package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	DB       DBConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	CORS     []string
}

type DBConfig struct {
	Driver     string
	SQLitePath string
	User       string
	Password   string
	Host       string
	Name       string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type StripeConfig struct {
	SecretKey string
}

// MongoURI builds the Atlas connection string from the credential parts.
func (d DBConfig) MongoURI() string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "bistro.db"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASS"),
			Host:       getEnv("DB_HOST", "cluster0.kgqetuh.mongodb.net"),
			Name:       getEnv("DB_NAME", "bistroDb"),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("ACCESS_TOKEN_SECRET"),
			TokenTTL: ttl,
		},
		Stripe: StripeConfig{
			// STIPE_SECRET_KEY is the spelling older deployments were configured with
			SecretKey: getEnv("STRIPE_SECRET_KEY", os.Getenv("STIPE_SECRET_KEY")),
		},
		CORS: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is not set")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	switch c.DB.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.DB.User == "" || c.DB.Password == "" {
			return errors.New("DB_USER and DB_PASS are required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	return nil
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
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
