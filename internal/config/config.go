// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// minSessionSecretLength は署名鍵として使うSESSION_SECRETの最小長（バイト）。
const minSessionSecretLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// OAuth
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" required:"true"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" required:"true"`

	// Session
	SessionSecret       string `envconfig:"SESSION_SECRET" required:"true"`
	SessionMaxAge       int    `envconfig:"SESSION_MAX_AGE" default:"2592000"`
	PendingCookieMaxAge int    `envconfig:"PENDING_COOKIE_MAX_AGE" default:"3600"`

	// Cleanup
	PendingUserTTL  time.Duration `envconfig:"PENDING_USER_TTL" default:"24h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"24h"`

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int `envconfig:"RATE_LIMIT_GENERAL" default:"120"`
	RateLimitClaim   int `envconfig:"RATE_LIMIT_CLAIM" default:"10"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Server
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	BaseURL    string `envconfig:"BASE_URL" required:"true"`

	// Cookie
	CookieSecure bool   `ignored:"true"` // BASE_URLがhttpsの場合にtrue
	CookieDomain string `envconfig:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`
}

// IsDevelopment は開発環境かどうかを返す。
func (c *Config) IsDevelopment() bool {
	return isDevelopment(c.AppEnv)
}

// Load は環境変数からConfigを読み込む。
// 開発環境ではカレントディレクトリの.envを先に読み込む（既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	if isDevelopment(os.Getenv("APP_ENV")) {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file loaded", slog.String("error", err.Error()))
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	// 空文字で設定された必須項目
	for key, v := range map[string]string{
		"DATABASE_URL":         c.DatabaseURL,
		"GOOGLE_CLIENT_ID":     c.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": c.GoogleClientSecret,
		"GOOGLE_REDIRECT_URL":  c.GoogleRedirectURL,
		"BASE_URL":             c.BaseURL,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("required key %s missing value", key))
		}
	}
	if len(c.SessionSecret) < minSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if c.PendingCookieMaxAge <= 0 {
		errs = append(errs, errors.New("PENDING_COOKIE_MAX_AGE must be positive"))
	}
	if c.PendingUserTTL <= 0 {
		errs = append(errs, errors.New("PENDING_USER_TTL must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be positive"))
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitClaim <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_GENERAL and RATE_LIMIT_CLAIM must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func isDevelopment(env string) bool {
	return env == "" || env == "development"
}
