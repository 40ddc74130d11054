package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host == "" {
		t.Fatalf("expected database.host to be set")
	}
	if cfg.RabbitMQ.Port == 0 {
		t.Fatalf("expected rabbitmq.port to be set")
	}
	if cfg.Redis.Port == 0 {
		t.Fatalf("expected redis.port to be set")
	}
}

func TestLoad_PersistBaseUnitsDefault(t *testing.T) {
	path := writeTempConfig(t, `
database:
  host: db
  port: 5432
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Inventory.PersistBaseUnits {
		t.Fatalf("expected persist_base_units to default to true")
	}
}

func TestLoad_PersistBaseUnitsOverride(t *testing.T) {
	path := writeTempConfig(t, `
inventory:
  persist_base_units: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Inventory.PersistBaseUnits {
		t.Fatalf("expected persist_base_units to be false")
	}
}

func TestLoad_UnknownSection(t *testing.T) {
	path := writeTempConfig(t, `
nonsense:
  key: value
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
