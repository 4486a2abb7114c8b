package config

import "time"

type AppConfig struct {
	DBDriver   string        `yaml:"db_driver" env:"MOVURA_DB_DRIVER"`
	DBURL      string        `yaml:"db_url" env:"MOVURA_DB_URL"`
	DBPath     string        `yaml:"db_path" env:"MOVURA_DB_PATH"`
	ListenAddr string        `yaml:"listen_addr" env:"MOVURA_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"MOVURA_SESSION_TTL"`
	AppEnv     string        `yaml:"app_env" env:"MOVURA_APP_ENV"`
	Pepper     string        `yaml:"pepper" env:"MOVURA_PEPPER"`
	TLSEnabled bool          `yaml:"tls_enabled" env:"MOVURA_TLS_ENABLED"`
	TLSCert    string        `yaml:"tls_cert" env:"MOVURA_TLS_CERT"`
	TLSKey     string        `yaml:"tls_key" env:"MOVURA_TLS_KEY"`

	Sessions      SessionsConfig      `yaml:"sessions"`
	Security      SecurityConfig      `yaml:"security"`
	Housekeeping  HousekeepingConfig  `yaml:"housekeeping"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// SessionsConfig selects where server-side session records live. The sql
// backend is the default; redis is used when the backend says so and a URL
// is configured.
type SessionsConfig struct {
	Backend  string `yaml:"backend" env:"MOVURA_SESSIONS_BACKEND"`
	RedisURL string `yaml:"redis_url" env:"MOVURA_SESSIONS_REDIS_URL"`
}

type SecurityConfig struct {
	TrustedProxies  []string `yaml:"trusted_proxies" env:"MOVURA_TRUSTED_PROXIES"`
	LoginBurst      int      `yaml:"login_burst" env:"MOVURA_LOGIN_BURST"`
	MinSecretLength int      `yaml:"min_secret_length" env:"MOVURA_MIN_SECRET_LENGTH"`
}

type HousekeepingConfig struct {
	Enabled       bool   `yaml:"enabled" env:"MOVURA_HOUSEKEEPING_ENABLED" env-default:"true"`
	PurgeSchedule string `yaml:"purge_schedule" env:"MOVURA_HOUSEKEEPING_PURGE_SCHEDULE"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"MOVURA_METRICS_ENABLED"`
	MetricsToken   string `yaml:"metrics_token" env:"MOVURA_METRICS_TOKEN"`
}

func (c *AppConfig) IsDev() bool {
	if c == nil {
		return false
	}
	return c.AppEnv == "dev"
}

// EffectiveSessionTTL never returns zero; an unset TTL falls back to 12h so
// a missing config value cannot mint immortal tokens.
func (c *AppConfig) EffectiveSessionTTL() time.Duration {
	if c == nil || c.SessionTTL <= 0 {
		return 12 * time.Hour
	}
	return c.SessionTTL
}
