package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry and lookup defaults.
const (
	DefaultRegistryURL = "https://data.gov.lv/dati/api/3/action/datastore_search"
	DefaultResourceID  = "25e80bf3-f107-4ab4-89ef-251b5b9374e9"
	DefaultTimeout     = 10 * time.Second
	DefaultWorkers     = 8
	DefaultAttempts    = 3
	DefaultBackoff     = 5 * time.Second
	DefaultServerAddr  = ":8080"
	DefaultMaxUploadMB = 20
	DefaultOutputFile  = "entity_ur_data.xlsx"

	configFileName = "config.yaml"
)

// Environment variables that override the config file.
const (
	EnvHome        = "URLOOKUP_HOME"
	EnvLogLevel    = "URLOOKUP_LOG_LEVEL"
	EnvLogFormat   = "URLOOKUP_LOG_FORMAT"
	EnvRegistryURL = "URLOOKUP_REGISTRY_URL"
	EnvWorkers     = "URLOOKUP_WORKERS"
	EnvTimeout     = "URLOOKUP_TIMEOUT"
)

// Validation errors.
var (
	ErrInvalidWorkers  = errors.New("lookup.workers must be >= 1")
	ErrInvalidAttempts = errors.New("lookup.attempts must be >= 1")
	ErrInvalidBackoff  = errors.New("lookup.backoff must be >= 0")
	ErrInvalidTimeout  = errors.New("registry.timeout must be > 0")
	ErrEmptyRegistry   = errors.New("registry.base_url must not be empty")
)

// Config is the full urlookup configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`

	// ConfigPath is the file the config was loaded from, empty for defaults.
	ConfigPath string `yaml:"-"`
}

// RegistryConfig points at the CKAN datastore holding the register dataset.
type RegistryConfig struct {
	BaseURL    string        `yaml:"base_url"`
	ResourceID string        `yaml:"resource_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LookupConfig controls the batch lookup engine.
type LookupConfig struct {
	Workers  int           `yaml:"workers"`
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// ServerConfig controls the upload endpoint.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// OutputConfig controls the standalone run output.
type OutputConfig struct {
	Filename string `yaml:"filename"`
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL:    DefaultRegistryURL,
			ResourceID: DefaultResourceID,
			Timeout:    DefaultTimeout,
		},
		Lookup: LookupConfig{
			Workers:  DefaultWorkers,
			Attempts: DefaultAttempts,
			Backoff:  DefaultBackoff,
		},
		Server: ServerConfig{
			Addr:        DefaultServerAddr,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Filename: DefaultOutputFile,
		},
	}
}

// New builds the effective configuration: defaults, then the config file in the
// config directory if it exists, then environment overrides. A broken config file
// is ignored so the CLI keeps working; Load reports it instead.
func New() *Config {
	cfg := Default()
	if path, err := GetConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if mergeErr := ShallowMergeYAML(cfg, path); mergeErr == nil {
				cfg.ConfigPath = path
			}
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg
}

// Load builds the effective configuration from an explicit file path.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ConfigPath = path
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides. Unparsable numeric values are ignored.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvRegistryURL); ok && v != "" {
		c.Registry.BaseURL = v
	}
	if v, ok := lookupEnv(EnvWorkers); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Lookup.Workers = n
		}
	}
	if v, ok := lookupEnv(EnvTimeout); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Registry.Timeout = d
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Registry.BaseURL == "":
		return ErrEmptyRegistry
	case c.Registry.Timeout <= 0:
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, c.Registry.Timeout)
	case c.Lookup.Workers < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Lookup.Workers)
	case c.Lookup.Attempts < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidAttempts, c.Lookup.Attempts)
	case c.Lookup.Backoff < 0:
		return fmt.Errorf("%w: got %s", ErrInvalidBackoff, c.Lookup.Backoff)
	}
	return nil
}

// Save writes the configuration as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the default config file location.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
