package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Python != "python3" || cfg.Concurrency != 5 || cfg.MaxAttempts != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `python: /usr/local/bin/python3.12
concurrency: 8
storage:
  endpoint: minio.local:9000
  bucket: diagrams
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Python != "/usr/local/bin/python3.12" {
		t.Fatalf("python not loaded: %q", cfg.Python)
	}
	if cfg.Concurrency != 8 {
		t.Fatalf("concurrency not loaded: %d", cfg.Concurrency)
	}
	if cfg.Storage.Endpoint != "minio.local:9000" || cfg.Storage.Bucket != "diagrams" {
		t.Fatalf("storage not loaded: %+v", cfg.Storage)
	}
	// Unset keys keep defaults.
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts default lost: %d", cfg.MaxAttempts)
	}
}

func TestLoad_EnvOutranksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: 8\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DIAGRAMGEN_CONCURRENCY", "2")
	t.Setenv("DIAGRAMGEN_PYTHON", "/opt/python")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Concurrency != 2 {
		t.Fatalf("env override lost: %d", cfg.Concurrency)
	}
	if cfg.Python != "/opt/python" {
		t.Fatalf("env override lost: %q", cfg.Python)
	}
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: [not an int\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_InvalidValuesClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: -1\nmax_attempts: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Concurrency != 5 || cfg.MaxAttempts != 3 {
		t.Fatalf("invalid values not clamped: %+v", cfg)
	}
}
