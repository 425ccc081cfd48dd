package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v9"
	"github.com/wb-go/wbf/zlog"
)

// Config is read once from the environment at process start and passed into
// the handlers and services explicitly. Every key is optional.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server ServerConfig
	Limits LimitsConfig
}

type ServerConfig struct {
	Addr                 string `env:"ADDR" envDefault:":8080"`
	ReadTimeoutSec       int    `env:"READ_TIMEOUT_SEC" envDefault:"60"`
	WriteTimeoutSec      int    `env:"WRITE_TIMEOUT_SEC" envDefault:"330"`
	ShutdownTimeoutSec   int    `env:"SHUTDOWN_TIMEOUT_SEC" envDefault:"10"`
	ProcessingTimeoutSec int    `env:"PROCESSING_TIMEOUT_SEC" envDefault:"300"`
}

type LimitsConfig struct {
	MaxFileSize int64  `env:"MAX_FILE_SIZE" envDefault:"10485760"`
	MaxFiles    int    `env:"MAX_FILES" envDefault:"20"`
	TempDir     string `env:"TEMP_DIR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env config: %w", err)
	}

	if cfg.Limits.TempDir == "" {
		cfg.Limits.TempDir = os.TempDir()
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	zlog.Logger.Info().
		Str("addr", cfg.Server.Addr).
		Bool("debug", cfg.Debug).
		Int("max_files", cfg.Limits.MaxFiles).
		Int64("max_file_size", cfg.Limits.MaxFileSize).
		Str("temp_dir", cfg.Limits.TempDir).
		Msg("Config loaded successfully")

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("ADDR must not be empty")
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		return fmt.Errorf("READ_TIMEOUT_SEC must be positive")
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT_SEC must be positive")
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SEC must be positive")
	}
	if cfg.Server.ProcessingTimeoutSec <= 0 {
		return fmt.Errorf("PROCESSING_TIMEOUT_SEC must be positive")
	}
	if cfg.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if cfg.Limits.MaxFiles < 2 {
		return fmt.Errorf("MAX_FILES must be at least 2")
	}
	return nil
}
