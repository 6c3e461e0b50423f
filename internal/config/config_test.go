package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("Expected default store driver memory, got %s", cfg.StoreDriver)
	}
	if cfg.ExecBackend != BackendProcess {
		t.Errorf("Expected default exec backend process, got %s", cfg.ExecBackend)
	}
	if cfg.ExecTimeout != 10*time.Second {
		t.Errorf("Expected default exec timeout 10s, got %s", cfg.ExecTimeout)
	}
	if cfg.CompileTimeout != 30*time.Second {
		t.Errorf("Expected default compile timeout 30s, got %s", cfg.CompileTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/rooms.db")
	t.Setenv("EXEC_TIMEOUT", "3s")
	t.Setenv("SWEEP_INTERVAL", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("Expected sqlite store driver, got %s", cfg.StoreDriver)
	}
	if cfg.ExecTimeout != 3*time.Second {
		t.Errorf("Expected exec timeout 3s, got %s", cfg.ExecTimeout)
	}
	// Bare numbers are seconds.
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("Expected sweep interval 30s, got %s", cfg.SweepInterval)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown store driver")
	}
}

func TestLoad_RejectsDockerWithoutImage(t *testing.T) {
	t.Setenv("EXEC_BACKEND", "docker")
	t.Setenv("SANDBOX_IMAGE", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error for docker backend without image")
	}
}

func TestIsDevelopment(t *testing.T) {
	cases := []struct {
		clientURL string
		want      bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://editor.example.com", false},
	}

	for _, tc := range cases {
		cfg := &Config{ClientURL: tc.clientURL}
		if got := cfg.IsDevelopment(); got != tc.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tc.clientURL, got, tc.want)
		}
	}
}
