// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds connection settings for the CLI.
type Config struct {
	Host     string
	Port     int
	Protocol string
	User     string
	Password string
	BasePath string
	Timeout  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Host:      envOr("HDFS_HOST", "localhost"),
		Port:      envInt("HDFS_PORT", 50070),
		Protocol:  envOr("HDFS_PROTOCOL", "http"),
		User:      envOr("HDFS_USER", ""),
		Password:  envOr("HDFS_PASSWORD", ""),
		BasePath:  envOr("HDFS_PATH", "/webhdfs/v1"),
		Timeout:   time.Duration(envInt("HDFS_TIMEOUT_MS", 30000)) * time.Millisecond,
		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "console"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
