package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/learnhub/course-portal/internal/core/domain"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, map[string]string{})

	if cfg.Port != "8000" {
		t.Fatalf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.LoginMode != domain.LoginCredentials {
		t.Fatalf("expected credentials login, got %q", cfg.LoginMode)
	}
	if cfg.APIAuthMode != APIAuthToken {
		t.Fatalf("expected token api auth, got %q", cfg.APIAuthMode)
	}
	if cfg.EditPolicy != domain.PolicyAnyEducator {
		t.Fatalf("expected any_educator policy, got %q", cfg.EditPolicy)
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttls: %v %v", cfg.SessionTTL, cfg.TokenTTL)
	}
	if cfg.SecretKey != DevelopmentSecret || cfg.JWTSecret != DevelopmentSecret {
		t.Fatalf("expected placeholder secrets, got %q / %q", cfg.SecretKey, cfg.JWTSecret)
	}
	if cfg.Store.Driver != DriverPostgres || !cfg.Store.AutoMigrate {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.AuditEnabled() {
		t.Fatalf("audit should be disabled without MONGO_URI")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg := load(t, map[string]string{
		"SECRET_KEY":            "cookie-secret",
		"JWT_SECRET":            "jwt-secret",
		"LOGIN_MODE":            "assertion",
		"COURSE_EDIT_POLICY":    "owner_only",
		"SESSION_TTL":           "30m",
		"SQL_CONNECTION_STRING": "postgres://localhost/courses",
		"MONGO_URI":             "mongodb://localhost:27017",
	})

	if cfg.JWTSecret != "jwt-secret" {
		t.Fatalf("expected explicit jwt secret, got %q", cfg.JWTSecret)
	}
	if cfg.LoginMode != domain.LoginAssertion || cfg.EditPolicy != domain.PolicyOwnerOnly {
		t.Fatalf("unexpected modes: %q %q", cfg.LoginMode, cfg.EditPolicy)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
	if !cfg.AuditEnabled() {
		t.Fatalf("audit should be enabled with MONGO_URI")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing dsn", map[string]string{}, "SQL_CONNECTION_STRING"},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo"}, "MONGO_URI"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"bad login mode", map[string]string{"SQL_CONNECTION_STRING": "x", "LOGIN_MODE": "magic"}, "LOGIN_MODE"},
		{"bad api mode", map[string]string{"SQL_CONNECTION_STRING": "x", "API_AUTH_MODE": "header"}, "API_AUTH_MODE"},
		{"bad policy", map[string]string{"SQL_CONNECTION_STRING": "x", "COURSE_EDIT_POLICY": "nobody"}, "COURSE_EDIT_POLICY"},
		{"placeholder secret in production", map[string]string{"SQL_CONNECTION_STRING": "x", "ENV": "production"}, "SECRET_KEY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := load(t, tc.env).Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
