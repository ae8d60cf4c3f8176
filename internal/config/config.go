package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultAccessTTL      = "15m"
	defaultRefreshTTL     = "168h"
	defaultListenAddr     = ":8080"
	defaultCookieSecure   = "true"
	defaultCookieSameSite = "Lax"
	defaultCookiePath     = "/"
	defaultUploadBackend  = "local"
	defaultUploadDir      = "./uploads"
	defaultStaticBase     = "/static/uploads"
	defaultAccessSecret   = "change-me-access-secret"
	defaultRefreshSecret  = "change-me-refresh-secret"
)

// Config is built once at startup and passed explicitly into constructors.
// Nothing reads the environment after this point.
type Config struct {
	AppEnv      string
	ListenAddr  string
	DatabaseDSN string

	// Access and refresh tokens are signed with distinct secrets so that
	// compromise of one class does not compromise the other.
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration

	CookieSecure   bool
	CookieSameSite string
	CookiePath     string

	UploadBackend string // "local" or "s3"
	UploadDir     string
	StaticBase    string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string // non-empty selects a path-style endpoint (MinIO etc.)
	S3AccessKey   string
	S3SecretKey   string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseDSN = getEnv("DATABASE_URL", "vidstream.db")

	cfg.AccessTokenSecret = strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET", defaultAccessSecret))
	cfg.RefreshTokenSecret = strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET", defaultRefreshSecret))

	var err error
	cfg.AccessTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))
	cfg.CookiePath = strings.TrimSpace(getEnv("COOKIE_PATH", defaultCookiePath))

	cfg.UploadBackend = strings.ToLower(strings.TrimSpace(getEnv("UPLOAD_BACKEND", defaultUploadBackend)))
	cfg.UploadDir = getEnv("UPLOAD_DIR", defaultUploadDir)
	cfg.StaticBase = getEnv("STATIC_BASE", defaultStaticBase)
	cfg.S3Bucket = strings.TrimSpace(os.Getenv("S3_BUCKET"))
	cfg.S3Region = strings.TrimSpace(os.Getenv("S3_REGION"))
	cfg.S3Endpoint = strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	cfg.S3AccessKey = strings.TrimSpace(os.Getenv("S3_ACCESS_KEY"))
	cfg.S3SecretKey = strings.TrimSpace(os.Getenv("S3_SECRET_KEY"))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.AccessTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be > 0")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if cfg.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}
	sameSite := strings.ToLower(cfg.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}
	if cfg.UploadBackend != "local" && cfg.UploadBackend != "s3" {
		return fmt.Errorf("UPLOAD_BACKEND must be local or s3")
	}
	if cfg.UploadBackend == "s3" && cfg.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET must be set when UPLOAD_BACKEND=s3")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.AccessTokenSecret, defaultAccessSecret) {
			return fmt.Errorf("in prod/release ACCESS_TOKEN_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenSecret, defaultRefreshSecret) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_SECRET must be set and not default")
		}
		if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
			return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
