// Package config loads application settings: a YAML file overridden by
// DIAGRAMGEN_* environment variables. Model and provider settings live in
// the llm package's own config; this covers everything around the models.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Python is the sandbox interpreter path.
	Python string `yaml:"python"`

	// OutputDir receives accepted images when no bucket is configured.
	OutputDir string `yaml:"output_dir"`

	// Concurrency bounds questions rendered in parallel.
	Concurrency int `yaml:"concurrency"`

	// MaxAttempts is the per-question render budget.
	MaxAttempts int `yaml:"max_attempts"`

	// RenderTimeoutSeconds is the sandbox wall-clock limit per execution.
	RenderTimeoutSeconds int `yaml:"render_timeout_seconds"`

	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig configures optional S3-compatible object storage. An empty
// endpoint means local directory storage.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Python:               "python3",
		OutputDir:            "diagrams",
		Concurrency:          5,
		MaxAttempts:          3,
		RenderTimeoutSeconds: 25,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "diagramgen", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "diagramgen.yaml")
	}
	return filepath.Join(home, ".config", "diagramgen", "config.yaml")
}

// Load reads the file at path (DefaultPath when empty), fills gaps with
// defaults, and applies environment overrides. A missing file is not an
// error; defaults plus environment apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RenderTimeoutSeconds <= 0 {
		cfg.RenderTimeoutSeconds = 25
	}
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&c.Python, "DIAGRAMGEN_PYTHON")
	setString(&c.OutputDir, "DIAGRAMGEN_OUTPUT_DIR")
	setInt(&c.Concurrency, "DIAGRAMGEN_CONCURRENCY")
	setInt(&c.MaxAttempts, "DIAGRAMGEN_MAX_ATTEMPTS")
	setInt(&c.RenderTimeoutSeconds, "DIAGRAMGEN_RENDER_TIMEOUT")

	setString(&c.Storage.Endpoint, "DIAGRAMGEN_S3_ENDPOINT")
	setString(&c.Storage.AccessKey, "DIAGRAMGEN_S3_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "DIAGRAMGEN_S3_SECRET_KEY")
	setString(&c.Storage.Bucket, "DIAGRAMGEN_S3_BUCKET")
	if v := os.Getenv("DIAGRAMGEN_S3_SSL"); v != "" {
		c.Storage.UseSSL = v == "1" || v == "true"
	}
}
