// ABOUTME: On-disk YAML configuration for the kumactl CLI
// ABOUTME: Load with an ordered default-location search, save, delete, validate

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file exists at the given path or
// any default location.
var ErrNotFound = errors.New("config file not found")

// Config carries the connection settings for one monitoring server.
type Config struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DefaultLocations returns the ordered candidate config paths, most
// specific first.
func DefaultLocations() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return []string{
		filepath.Join(home, ".config", "kumactl", "kuma.yaml"),
		filepath.Join(home, "kuma.yaml"),
		"kuma.yaml",
		"/etc/kumactl/kuma.yaml",
	}
}

// DefaultPath is where a newly created config is written when no explicit
// path is given.
func DefaultPath() string {
	return DefaultLocations()[0]
}

// Load reads the config from path, or from the first default location
// that exists when path is empty. It returns the path actually used.
func Load(path string) (*Config, string, error) {
	if path == "" {
		for _, candidate := range DefaultLocations() {
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			path = candidate
			break
		}
		if path == "" {
			return nil, "", ErrNotFound
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, "", fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, path, nil
}

// Save writes the config to path, creating parent directories as needed.
// Credentials go to disk, so the file is not group or world readable.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Delete removes the config file at path, or the first default location
// that exists when path is empty.
func Delete(path string) (string, error) {
	if path == "" {
		for _, candidate := range DefaultLocations() {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				path = candidate
				break
			}
		}
		if path == "" {
			return "", ErrNotFound
		}
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("removing config %s: %w", path, err)
	}
	return path, nil
}

// Validate checks the config carries a usable URL and credentials.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config is missing 'url'")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config 'url' %q is not a valid http(s) URL", c.URL)
	}
	if c.User == "" {
		return errors.New("config is missing 'user'")
	}
	if c.Password == "" {
		return errors.New("config is missing 'password'")
	}
	return nil
}

// Redacted returns a copy safe to print, with the password masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Password != "" {
		out.Password = "********"
	}
	return out
}
