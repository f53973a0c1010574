package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	Environment        string
	LogLevel           string
	Version            string
	CORSAllowedOrigins []string
}

// Database is optional; an empty URL selects the in-memory stores.
type Database struct {
	URL string
}

// RedisConfig holds connection settings for the session store and rate limiter.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the audit event stream.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Auth holds token signing and lifetime settings.
type Auth struct {
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	Issuer           string
}

// Email configures outbound mail. An empty SMTPHost logs messages instead of sending.
type Email struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromAddress  string
}

// RateLimit configures the token bucket guarding credential endpoints.
type RateLimit struct {
	Capacity  int
	RefillPer time.Duration
}

// Bootstrap describes the admin account created on first start.
type Bootstrap struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Config is the full process configuration.
type Config struct {
	Server        Server
	Database      Database
	Redis         RedisConfig
	Kafka         Kafka
	Auth          Auth
	Email         Email
	RateLimit     RateLimit
	Bootstrap     Bootstrap
	EncryptionKey string
	FrontendURL   string
	AWSRegion     string
}

// IsProduction reports whether production-only checks apply.
func (c Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

const (
	devJWTSecret        = "dev-secret-key-change-in-production"
	devJWTRefreshSecret = "dev-refresh-secret-change-in-production"
	devEncryptionKey    = "dev-encryption-key-change-in-production"
)

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", EnvDevelopment)
	cfg := Config{
		Server: Server{
			Addr:               getEnv("FRONTDESK_ADDR", ":3000"),
			Environment:        env,
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Database: Database{URL: os.Getenv("DATABASE_URL")},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "frontdesk.audit"),
		},
		Auth: Auth{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTokenTTL:   getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:           getEnv("JWT_ISSUER", "frontdesk"),
		},
		Email: Email{
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Frontdesk"),
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@frontdesk.local"),
		},
		RateLimit: RateLimit{
			Capacity:  getInt("AUTH_RATE_LIMIT_CAPACITY", 10),
			RefillPer: getDuration("AUTH_RATE_LIMIT_REFILL", 6*time.Second),
		},
		Bootstrap: Bootstrap{
			AdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
			AdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
			AdminName:     getEnv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3001"), "/"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}

	if err := cfg.applySecretDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applySecretDefaults() error {
	secrets := []struct {
		name  string
		value *string
		dev   string
	}{
		{"JWT_SECRET", &c.Auth.JWTSecret, devJWTSecret},
		{"JWT_REFRESH_SECRET", &c.Auth.JWTRefreshSecret, devJWTRefreshSecret},
		{"ENCRYPTION_KEY", &c.EncryptionKey, devEncryptionKey},
	}
	var missing []string
	for _, s := range secrets {
		if *s.value != "" {
			continue
		}
		if c.IsProduction() {
			missing = append(missing, s.name)
			continue
		}
		*s.value = s.dev
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required secrets in production: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
