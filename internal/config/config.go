// Package config loads service configuration from an optional YAML file
// and LOOOPS_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/reconciler"
)

// Config holds everything the binaries need to wire themselves up.
type Config struct {
	HTTPAddr           string
	FetchTimeout       time.Duration
	PostedUpdatePolicy reconciler.UpdatePolicy

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

// Load reads looops.yaml from the working directory when present, then
// applies environment overrides (e.g. LOOOPS_DB_PASSWORD, LOOOPS_HTTP_ADDR).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("fetch.timeout", "25s")
	v.SetDefault("sync.posted_update_policy", string(reconciler.PostedImmutable))
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "looops")
	v.SetDefault("db.sslmode", "disable")

	v.SetConfigName("looops")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LOOOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:     v.GetString("http.addr"),
		FetchTimeout: v.GetDuration("fetch.timeout"),
	}
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetString("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.Name = v.GetString("db.name")
	cfg.DB.SSLMode = v.GetString("db.sslmode")

	policy := reconciler.UpdatePolicy(v.GetString("sync.posted_update_policy"))
	switch policy {
	case reconciler.PostedImmutable, reconciler.PostedRefresh:
		cfg.PostedUpdatePolicy = policy
	default:
		return nil, fmt.Errorf("invalid sync.posted_update_policy %q", policy)
	}

	return cfg, nil
}
