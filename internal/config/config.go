package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Poll    PollConfig    `mapstructure:"poll"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type APIConfig struct {
	// BaseURL points at the HorusLM REST backend, e.g. https://horuslm.example.com/api.
	// An empty value is tolerated at load time; commands report it when a request is made.
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

type SessionConfig struct {
	// File is where the bearer token is persisted between runs.
	File string `mapstructure:"file" validate:"required"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"min=1s"`
}

type RetryConfig struct {
	MaxAttempts uint `mapstructure:"max_attempts" validate:"max=10"`
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".horuslm", "session.yml")
	}
	return filepath.Join(home, ".config", "horuslm", "session.yml")
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/horuslm")
	}

	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("retry.max_attempts", 3)

	// Bind deployment-provided values to environment variables only (not from config file)
	if err := v.BindEnv("api.base_url", "HORUSLM_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind HORUSLM_API_URL environment variable: %w", err)
	}
	if err := v.BindEnv("session.file", "HORUSLM_SESSION_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind HORUSLM_SESSION_FILE environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
