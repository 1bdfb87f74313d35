package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold"
)

// Config is the scaffold server configuration
type Config struct {
	Host            string        `yaml:"host" env:"SCAFFOLD_HOST" env-default:""`
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	Adapter         string        `yaml:"adapter" env:"SCAFFOLD_ADAPTER" env-default:"echo"`
	RoutePrefix     string        `yaml:"route_prefix" env:"SCAFFOLD_ROUTE_PREFIX" env-default:"/crud"`
	DatabaseURL     string        `yaml:"database_url" env:"DATABASE_URL"`
	Language        string        `yaml:"language" env:"SCAFFOLD_LANGUAGE" env-default:"en"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	MetricsPath     string        `yaml:"metrics_path" env:"SCAFFOLD_METRICS_PATH" env-default:"/metrics"`
	Tracing         bool          `yaml:"tracing" env:"SCAFFOLD_TRACING" env-default:"false"`
}

// Load reads the configuration from the environment, or from path first when
// it is not empty. Environment variables override file values.
func Load(path string) (*Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot express. Every problem is reported.
func (c *Config) Validate() error {
	var errs *scerrors.MultipleErrors
	switch c.Adapter {
	case "echo", "gin", "fiber", "chi":
	default:
		scerrors.AddToMultiple(&errs, scerrors.ConfigurationError("adapter", fmt.Sprintf("unknown adapter %q", c.Adapter)).
			WithSuggestion("use one of echo, gin, fiber or chi"))
	}
	if c.ShutdownTimeout <= 0 {
		scerrors.AddToMultiple(&errs, scerrors.ConfigurationError("shutdown_timeout", "shutdown timeout must be positive"))
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		scerrors.AddToMultiple(&errs, scerrors.ConfigurationError("metrics_path", fmt.Sprintf("metrics path %q must start with /", c.MetricsPath)))
	}
	return errs.ErrorOrNil()
}

// Server returns the web server settings
func (c *Config) Server() *scaffold.ServerConfig {
	return &scaffold.ServerConfig{
		Host:            c.Host,
		Port:            c.Port,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}
