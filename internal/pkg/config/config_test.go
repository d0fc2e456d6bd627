package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "pokedex", DBName: "pokedex", SSLMode: "disable"},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Auth:     AuthConfig{JWTSecret: "secret", UserCacheTTL: 30},
		Push:     PushConfig{BulkTimeout: time.Minute},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Auth.JWTSecret = ""
	cfg.Push.BulkTimeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "auth.jwt_secret", "push.bulk_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "x", SSLMode: "require"}
	if got := d.DSN(); got != "postgres://u:p@db:5433/x?sslmode=require" {
		t.Errorf("DSN() = %s", got)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("POKEDEX_AUTH_JWT_SECRET", "from-env")
	t.Setenv("POKEDEX_SERVER_PORT", "9090")
	t.Setenv("POKEDEX_PUSH_BULK_TIMEOUT", "45s")

	cfg, err := Load("pokedex-test")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Push.BulkTimeout != 45*time.Second {
		t.Errorf("bulk timeout = %v", cfg.Push.BulkTimeout)
	}
	if cfg.Telemetry.ServiceName != "pokedex-test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("POKEDEX_AUTH_JWT_SECRET", "")
	if _, err := Load("pokedex-test"); err == nil {
		t.Error("expected error without jwt secret")
	}
}
