package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_PASSWORD_HASH", "")
	t.Setenv("REPORT_INCLUDE_PRINCIPAL_TOTAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3333" {
		t.Errorf("expected default port 3333, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.AuthEnabled() {
		t.Error("expected auth disabled without a password hash")
	}
	if !cfg.ReportIncludePrincipalTotal {
		t.Error("expected Principal included in system total by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("AUTH_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("REPORT_ABSOLUTE_OUTFLOWS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.DBDriver)
	}
	if cfg.JWTExpirationDur != 30*time.Minute {
		t.Errorf("expected 30m expiry, got %s", cfg.JWTExpirationDur)
	}
	if !cfg.AuthEnabled() {
		t.Error("expected auth enabled")
	}
	if !cfg.ReportAbsoluteOutflows {
		t.Error("expected absolute outflows")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "forever")
	t.Setenv("REPORT_ABSOLUTE_OUTFLOWS", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTExpirationDur != 12*time.Hour {
		t.Errorf("expected 12h fallback, got %s", cfg.JWTExpirationDur)
	}
	if cfg.ReportAbsoluteOutflows {
		t.Error("expected fallback to false")
	}
}
