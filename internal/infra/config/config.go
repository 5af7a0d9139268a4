package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	SMTP      SMTPSettings      `mapstructure:"smtp"`
	Lifecycle LifecycleSettings `mapstructure:"lifecycle"`
}

type AppSettings struct {
	// Service is the human-readable service name used in email subjects.
	Service string `mapstructure:"service"`
	Env     string `mapstructure:"env"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// BaseURL is the externally reachable prefix embedded in confirmation
	// and reset links.
	BaseURL string `mapstructure:"base_url"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// SMTPSettings configures outbound email delivery. With an empty Host the
// service falls back to a logging notifier suitable for development.
type SMTPSettings struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromName  string `mapstructure:"from_name"`
	FromEmail string `mapstructure:"from_email"`
}

// LifecycleSettings tunes the account lifecycle engine.
type LifecycleSettings struct {
	ConfirmationWindow time.Duration `mapstructure:"confirmation_window"`
	ResetWindow        time.Duration `mapstructure:"reset_window"`
	ScryptCost         int           `mapstructure:"scrypt_cost"`
	// StrictNormalizeEmail additionally folds gmail-style dot and plus
	// aliases when normalizing addresses.
	StrictNormalizeEmail bool `mapstructure:"strict_normalize_email"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SASSYPANTS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.service",
		"app.env",
		"app.host",
		"app.port",
		"app.base_url",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"smtp.host",
		"smtp.port",
		"smtp.username",
		"smtp.password",
		"smtp.from_name",
		"smtp.from_email",
		"lifecycle.confirmation_window",
		"lifecycle.reset_window",
		"lifecycle.scrypt_cost",
		"lifecycle.strict_normalize_email",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.service", "sassypants")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 3000)
	v.SetDefault("app.base_url", "http://localhost:3000")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "sassypants")
	v.SetDefault("postgres.password", "sassypants")
	v.SetDefault("postgres.database", "sassypants")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 25)
	v.SetDefault("smtp.from_name", "sassypants")
	v.SetDefault("smtp.from_email", "noreply@localhost")

	v.SetDefault("lifecycle.confirmation_window", "24h")
	v.SetDefault("lifecycle.reset_window", "60m")
	v.SetDefault("lifecycle.scrypt_cost", 16384)
	v.SetDefault("lifecycle.strict_normalize_email", false)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "SASSYPANTS_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
