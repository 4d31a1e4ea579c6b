package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	SessionSecret string
	SessionMaxAge time.Duration
	SecureCookies bool
	Location      *time.Location

	ClerkSecretKey     string
	ClerkWebhookSecret string

	FirebaseCredentials   []byte
	FirebaseCredsFile     string
	FirebaseStorageBucket string

	UploadDir      string
	PublicBaseURL  string
	MaxUploadBytes int64

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	MetricsUser string
	MetricsPass string
	PprofSecret string
}

// Load reads the process environment, after merging a .env file if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:                  orDefault(getenv("PORT"), "3333"),
		DatabaseURL:           getenv("DATABASE_URL"),
		SessionSecret:         getenv("SESSION_SECRET"),
		ClerkSecretKey:        getenv("CLERK_SECRET_KEY"),
		ClerkWebhookSecret:    getenv("CLERK_WEBHOOK_SECRET"),
		FirebaseCredsFile:     getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseStorageBucket: getenv("FIREBASE_STORAGE_BUCKET"),
		UploadDir:             orDefault(getenv("UPLOAD_DIR"), "./assets/uploads"),
		MetricsUser:           getenv("METRICS_USER"),
		MetricsPass:           getenv("METRICS_PASS"),
		PprofSecret:           getenv("PPROF_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET environment variable is not set")
	}

	var err error
	if cfg.AutoMigrate, err = parseBool(getenv, "AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.SecureCookies, err = parseBool(getenv, "SECURE_COOKIES", false); err != nil {
		return nil, err
	}

	cfg.SessionMaxAge = 30 * 24 * time.Hour
	if raw := getenv("SESSION_MAX_AGE"); raw != "" {
		if cfg.SessionMaxAge, err = time.ParseDuration(raw); err != nil || cfg.SessionMaxAge <= 0 {
			return nil, fmt.Errorf("invalid SESSION_MAX_AGE %q", raw)
		}
	}

	cfg.Location = time.Local
	if tz := getenv("STREAK_TIMEZONE"); tz != "" {
		if cfg.Location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid STREAK_TIMEZONE: %w", err)
		}
	}

	if raw := getenv("FCM_SERVICE_ACCOUNT_JSON"); raw != "" {
		if cfg.FirebaseCredentials, err = base64.StdEncoding.DecodeString(raw); err != nil {
			return nil, fmt.Errorf("failed to decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
	}

	cfg.PublicBaseURL = strings.TrimRight(orDefault(getenv("PUBLIC_BASE_URL"), "http://localhost:"+cfg.Port), "/")

	cfg.MaxUploadBytes = 10 << 20
	if raw := getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if cfg.MaxUploadBytes, err = strconv.ParseInt(raw, 10, 64); err != nil || cfg.MaxUploadBytes <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", raw)
		}
	}

	cfg.AllowedOrigins = []string{"*"}
	if raw := getenv("ALLOWED_ORIGINS"); raw != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	cfg.RateLimitRPS = 5
	if raw := getenv("RATE_LIMIT_RPS"); raw != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(raw, 64); err != nil || cfg.RateLimitRPS <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", raw)
		}
	}
	cfg.RateLimitBurst = 30
	if raw := getenv("RATE_LIMIT_BURST"); raw != "" {
		if cfg.RateLimitBurst, err = strconv.Atoi(raw); err != nil || cfg.RateLimitBurst <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", raw)
		}
	}

	return cfg, nil
}

// Database returns the storage driver and its data source for DatabaseURL.
func (c *Config) Database() (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return DriverPostgres, c.DatabaseURL, nil
	case c.DatabaseURL == "sqlite::memory:":
		return DriverSQLite, ":memory:", nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		path := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite DATABASE_URL needs a file path")
		}
		return DriverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(c.DatabaseURL))
	}
}

// FirebaseEnabled reports whether any Firebase credentials were configured.
func (c *Config) FirebaseEnabled() bool {
	return len(c.FirebaseCredentials) > 0 || c.FirebaseCredsFile != ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i] + "://..."
	}
	return "..."
}
