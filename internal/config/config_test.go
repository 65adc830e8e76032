package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Gateway.ListenAddr != ":8080" {
		t.Errorf("gateway.listen_addr = %q, want %q", cfg.Gateway.ListenAddr, ":8080")
	}
	if cfg.Classifier.Backend != "rules" {
		t.Errorf("classifier.backend = %q, want %q", cfg.Classifier.Backend, "rules")
	}
	if cfg.Moderator.CheckTimeout != 30*time.Second {
		t.Errorf("moderator.check_timeout = %v, want %v", cfg.Moderator.CheckTimeout, 30*time.Second)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
nats:
  url: "nats://file-host:4222"
classifier:
  backend: openrouter
  model: "test/model"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	// Environment beats the file.
	t.Setenv("SENTINEL_NATS_URL", "nats://env-host:4222")
	t.Setenv("SENTINEL_CLASSIFIER_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.NATS.URL != "nats://env-host:4222" {
		t.Errorf("nats.url = %q, want env override", cfg.NATS.URL)
	}
	if cfg.Classifier.Backend != "openrouter" {
		t.Errorf("classifier.backend = %q, want file value", cfg.Classifier.Backend)
	}
	if cfg.Classifier.Model != "test/model" {
		t.Errorf("classifier.model = %q, want file value", cfg.Classifier.Model)
	}
	if cfg.Classifier.APIKey != "sk-test" {
		t.Errorf("classifier.api_key = %q, want env value", cfg.Classifier.APIKey)
	}
	// Untouched keys keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis.addr = %q, want default", cfg.Redis.Addr)
	}
}
