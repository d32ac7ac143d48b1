// Package config loads the host CLI configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// defaults is loaded before any file or override.
const defaults = `
log_level: info
guest_log_level: trace
call_timeout: 5m
memory_limit_pages: 16384
`

// Config holds the host settings. GuestLogLevel is the least severe guest
// log line the host keeps.
type Config struct {
	// Guest is the path of the compiled guest module.
	Guest            string        `koanf:"guest"`
	LogLevel         string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	GuestLogLevel    string        `koanf:"guest_log_level" validate:"severity"`
	CallTimeout      time.Duration `koanf:"call_timeout" validate:"gte=0"`
	MemoryLimitPages uint32        `koanf:"memory_limit_pages" validate:"gte=1,lte=65536"`
}

// Load reads the defaults, then the YAML file at path (if path is not
// empty), then overrides keyed by koanf path, and validates the result.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := newValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		_, err := entities.ParseSeverity(fl.Field().String())
		return err == nil
	})
	return v
}

// GuestSeverity returns the parsed GuestLogLevel.
func (c *Config) GuestSeverity() entities.Severity {
	s, err := entities.ParseSeverity(c.GuestLogLevel)
	if err != nil {
		return entities.SeverityTrace
	}
	return s
}

// Level returns the zap level for LogLevel.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Logger builds a console logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(c.Level())
	zc.DisableStacktrace = c.Level() > zapcore.DebugLevel
	return zc.Build()
}
