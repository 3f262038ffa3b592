package config

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(cfg *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		cfg.Log.LogLevel = level
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.Server.WriteTimeout = timeout
	}
}

func WithStorageDriver(driver string) Option {
	return func(cfg *Config) {
		if driver != "" {
			cfg.Storage.Driver = driver
		}
	}
}

func WithPort(port string) Option {
	return func(cfg *Config) {
		if port != "" {
			cfg.Server.Port = port
		}
	}
}
