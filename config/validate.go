package config

import (
	"fmt"
	"strings"
)

const defaultPepper = "hK3rQ0yTmVwZ9dPbXaUe7LgNs1JfCidQ4pEwRu8"

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch driver {
	case "", "postgres", "pg":
		if strings.TrimSpace(cfg.DBURL) == "" && strings.TrimSpace(cfg.DBPath) == "" {
			return fmt.Errorf("db_url must be set for postgres driver")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return fmt.Errorf("db_path must be set for sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported db_driver: %s", cfg.DBDriver)
	}
	pep := strings.TrimSpace(cfg.Pepper)
	if pep == "" {
		return fmt.Errorf("pepper must be set via env")
	}
	if !cfg.IsDev() {
		if pep == defaultPepper {
			return fmt.Errorf("default secrets are not allowed outside APP_ENV=dev")
		}
		if !cfg.TLSEnabled {
			return fmt.Errorf("tls_enabled=false is only allowed in APP_ENV=dev")
		}
	}
	if cfg.Sessions.Backend == "redis" && strings.TrimSpace(cfg.Sessions.RedisURL) == "" {
		return fmt.Errorf("sessions.redis_url must be set for the redis backend")
	}
	return nil
}
