// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Execution backends.
const (
	BackendProcess = "process"
	BackendDocker  = "docker"
)

// Config holds all application configuration.
type Config struct {
	Port      string
	ClientURL string

	StoreDriver string // "memory" or "sqlite"
	DBPath      string

	ExecBackend    string // "process" or "docker"
	ExecTimeout    time.Duration
	CompileTimeout time.Duration
	WorkspaceDir   string
	SandboxImage   string // Docker image used when ExecBackend is "docker"

	SweepInterval   time.Duration
	WorkspaceMaxAge time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "5000"),
		ClientURL: getEnv("CLIENT_URL", ""),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DBPath:      getEnv("DB_PATH", "./data/rooms.db"),

		ExecBackend:    strings.ToLower(getEnv("EXEC_BACKEND", BackendProcess)),
		ExecTimeout:    getEnvDuration("EXEC_TIMEOUT", 10*time.Second),
		CompileTimeout: getEnvDuration("COMPILE_TIMEOUT", 30*time.Second),
		WorkspaceDir:   getEnv("WORKSPACE_DIR", os.TempDir()),
		SandboxImage:   getEnv("SANDBOX_IMAGE", ""),

		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		WorkspaceMaxAge: getEnvDuration("WORKSPACE_MAX_AGE", 15*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreSQLite, c.StoreDriver)
	}
	if c.StoreDriver == StoreSQLite && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when STORE_DRIVER is %q", StoreSQLite)
	}
	if c.ExecBackend != BackendProcess && c.ExecBackend != BackendDocker {
		return fmt.Errorf("EXEC_BACKEND must be %q or %q, got %q", BackendProcess, BackendDocker, c.ExecBackend)
	}
	if c.ExecBackend == BackendDocker && c.SandboxImage == "" {
		return fmt.Errorf("SANDBOX_IMAGE cannot be empty when EXEC_BACKEND is %q", BackendDocker)
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("EXEC_TIMEOUT must be > 0")
	}
	if c.CompileTimeout <= 0 {
		return fmt.Errorf("COMPILE_TIMEOUT must be > 0")
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("WORKSPACE_DIR cannot be empty")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.WorkspaceMaxAge <= 0 {
		return fmt.Errorf("WORKSPACE_MAX_AGE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.ClientURL == "" ||
		strings.Contains(c.ClientURL, "localhost") ||
		strings.Contains(c.ClientURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
