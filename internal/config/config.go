// Package config loads client configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in service endpoints per environment.
const (
	DevAPIURL  = "https://feiken-dev-api.weperform.com.my"
	ProdAPIURL = "https://feiken-api.weperform.com.my"
)

// Duration accepts "10s" style values in YAML, which yaml.v3 does not do for
// time.Duration itself.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds everything the scan engine needs wired up.
type Config struct {
	// Environment selects the default API URL: "development" or
	// "production".
	Environment string `yaml:"environment"`
	// APIURL overrides the environment default when set.
	APIURL string `yaml:"api_url"`
	// Timeout bounds one verification or history round trip.
	Timeout Duration `yaml:"timeout"`
	// Cooldown is the scan gate's post-attempt lock window.
	Cooldown Duration `yaml:"cooldown"`
	// DataDir holds the device id slot and sealing key.
	DataDir string `yaml:"data_dir"`
	// SealStorage encrypts the device id slot at rest.
	SealStorage bool `yaml:"seal_storage"`
}

// Default returns the development configuration with data under ~/.feiken.
func Default() Config {
	dataDir := ".feiken"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".feiken")
	}
	return Config{
		Environment: "development",
		Timeout:     Duration(10 * time.Second),
		Cooldown:    Duration(3 * time.Second),
		DataDir:     dataDir,
		SealStorage: true,
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, "config.yaml")
}

// Load reads the YAML file at path over the defaults, then applies env
// overrides. A missing file is not an error; env-only setups are common.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv maps FEIKEN_* variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("FEIKEN_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("FEIKEN_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("FEIKEN_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FEIKEN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("FEIKEN_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cooldown = Duration(d)
		}
	}
}

// Validate checks the configuration and fills environment-derived defaults.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.APIURL == "" {
		if c.Environment == "production" {
			c.APIURL = ProdAPIURL
		} else {
			c.APIURL = DevAPIURL
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout.Std())
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %v", c.Cooldown.Std())
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}
