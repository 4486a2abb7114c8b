package config

import "testing"

func TestLoadWithAliasEnv(t *testing.T) {
	t.Setenv("APP_CONFIG", "config/does-not-exist.yaml")
	t.Setenv("MOVURA_DB_DRIVER", "postgres")
	t.Setenv("MOVURA_DB_URL", "postgres://localhost/test")
	t.Setenv("MOVURA_LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "dev")
	t.Setenv("PEPPER", "pepper")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Pepper != "pepper" {
		t.Fatalf("pepper alias not applied")
	}
	if cfg.Sessions.Backend != "redis" {
		t.Fatalf("redis url should select the redis session backend, got %s", cfg.Sessions.Backend)
	}
	if cfg.TLSEnabled {
		t.Fatalf("tls must be forced off in dev")
	}
}

func TestValidateRejectsMissingPepper(t *testing.T) {
	cfg := &AppConfig{DBDriver: "sqlite", DBPath: "x.db", AppEnv: "dev"}
	normalizeConfig(cfg)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing pepper")
	}
}

func TestValidateRejectsRedisBackendWithoutURL(t *testing.T) {
	cfg := &AppConfig{DBDriver: "sqlite", DBPath: "x.db", AppEnv: "dev", Pepper: "p"}
	cfg.Sessions.Backend = "redis"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for redis backend without url")
	}
}

func TestEffectiveSessionTTLFallback(t *testing.T) {
	cfg := &AppConfig{}
	if cfg.EffectiveSessionTTL() <= 0 {
		t.Fatalf("ttl fallback must be positive")
	}
}
