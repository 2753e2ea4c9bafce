package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"dripcalc/internal/dosing"
)

// Config holds runtime configuration for the calculator service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Protocol ProtocolConfig `yaml:"protocol"`
}

// HTTPConfig controls the HTTP listener.
type HTTPConfig struct {
	Addr         string        `yaml:"addr" env:"DRIP_HTTP_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"DRIP_HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"DRIP_HTTP_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"DRIP_HTTP_IDLE_TIMEOUT"`

	// Largest accepted request body, bytes
	MaxBodySize int64 `yaml:"max_body_size" env:"DRIP_HTTP_MAX_BODY_SIZE"`

	// Most readings accepted in one decision request
	MaxBatch int `yaml:"max_batch" env:"DRIP_HTTP_MAX_BATCH"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"DRIP_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"DRIP_LOG_PRETTY"`
}

// ProtocolConfig selects the default dosing policy and the target range of
// the simple policy. Nothing else from the environment reaches the policies.
type ProtocolConfig struct {
	Policy     string  `yaml:"policy" env:"DRIP_POLICY"`
	TargetLow  float64 `yaml:"target_low" env:"DRIP_TARGET_LOW"`
	TargetHigh float64 `yaml:"target_high" env:"DRIP_TARGET_HIGH"`
}

// Registry builds the policy registry described by the protocol section.
func (p ProtocolConfig) Registry() (*dosing.Registry, error) {
	return dosing.Standard(p.Policy, p.TargetLow, p.TargetHigh)
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodySize:  1 << 20,
			MaxBatch:     100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Protocol: ProtocolConfig{
			Policy:     dosing.PolicyYale,
			TargetLow:  dosing.DefaultTargetLow,
			TargetHigh: dosing.DefaultTargetHigh,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and DRIP_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 || c.HTTP.IdleTimeout < 0 {
		return errors.New("http timeouts must not be negative")
	}
	if c.HTTP.MaxBodySize <= 0 {
		return fmt.Errorf("http.max_body_size %d must be positive", c.HTTP.MaxBodySize)
	}
	if c.HTTP.MaxBatch <= 0 {
		return fmt.Errorf("http.max_batch %d must be positive", c.HTTP.MaxBatch)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	if _, err := c.Protocol.Registry(); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	return nil
}
