package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const devSecret = "secret_key_change_me"

// AppConfig is read from the environment after .env has been loaded.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"host=localhost user=postgres password=postgres dbname=innoportal port=5432 sslmode=disable TimeZone=Asia/Tashkent"`
	SiteURL     string `envconfig:"SITE_URL" default:"http://localhost:8080"`

	SessionSecret  string `envconfig:"SESSION_SECRET"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	JWTExpireHours int    `envconfig:"JWT_EXPIRE_HOURS" default:"24"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`

	AllowedEmailDomains []string      `envconfig:"ALLOWED_EMAIL_DOMAINS"`
	VerifyTokenTTL      time.Duration `envconfig:"VERIFY_TOKEN_TTL" default:"24h"`

	SMTP struct {
		Host          string `envconfig:"SMTP_HOST"`
		Port          int    `envconfig:"SMTP_PORT" default:"587"`
		User          string `envconfig:"SMTP_USER"`
		Pass          string `envconfig:"SMTP_PASS"`
		From          string `envconfig:"SMTP_FROM"`
		SkipTLSVerify bool   `envconfig:"SMTP_SKIP_TLS_VERIFY"`
	} `envconfig:""`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

func (c AppConfig) Production() bool {
	return c.AppEnv == "production"
}

// Load decodes the environment. Missing secrets fall back to a development value outside
// production; the returned warnings list which ones did.
func Load() (AppConfig, []string, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	for i, d := range cfg.AllowedEmailDomains {
		cfg.AllowedEmailDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}

	var warnings []string
	for name, secret := range map[string]*string{"SESSION_SECRET": &cfg.SessionSecret, "JWT_SECRET": &cfg.JWTSecret} {
		if *secret != "" {
			continue
		}
		if cfg.Production() {
			return cfg, nil, fmt.Errorf("%s must be set in production", name)
		}
		*secret = devSecret
		warnings = append(warnings, name+" not set, using development secret")
	}
	return cfg, warnings, nil
}
