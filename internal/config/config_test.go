package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", " Inno.uz ,mail.uz")

	cfg, warnings, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.JWTExpireHours != 24 {
		t.Errorf("unexpected defaults: port=%s hours=%d", cfg.Port, cfg.JWTExpireHours)
	}
	if cfg.VerifyTokenTTL != 24*time.Hour {
		t.Errorf("VerifyTokenTTL = %v", cfg.VerifyTokenTTL)
	}
	if cfg.SessionSecret != devSecret || cfg.JWTSecret != devSecret {
		t.Error("dev secrets should be filled in")
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
	if len(cfg.AllowedEmailDomains) != 2 || cfg.AllowedEmailDomains[0] != "inno.uz" {
		t.Errorf("domains not normalised: %v", cfg.AllowedEmailDomains)
	}
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("JWT_SECRET", "")

	if _, _, err := Load(); err == nil {
		t.Fatal("expected an error for missing JWT_SECRET in production")
	}
}
