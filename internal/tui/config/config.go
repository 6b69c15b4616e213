// Package config holds the terminal dashboard settings
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all TUI configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	Host string     `yaml:"host"`
	TLS  bool       `yaml:"tls"`
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

// HTTPConfig for the REST API and chat streams
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// GRPCConfig for the health probe shown in the status bar
type GRPCConfig struct {
	Port int    `yaml:"port"`
	Addr string `yaml:"addr"`
}

// SessionConfig keeps the marker from the last successful access code entry
type SessionConfig struct {
	Token string `yaml:"token,omitempty"`
}

// UIConfig for UI preferences
type UIConfig struct {
	RefreshRate int `yaml:"refresh_rate_ms"`
	PageSize    int `yaml:"page_size"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			HTTP: HTTPConfig{
				Port:    8080,
				BaseURL: "http://localhost:8080",
			},
			GRPC: GRPCConfig{
				Port: 9090,
				Addr: "localhost:9090",
			},
		},
		UI: UIConfig{
			RefreshRate: 30000,
			PageSize:    15,
		},
	}
}

// Load loads configuration from file, falling back to defaults
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.resolve()
	return cfg, nil
}

// resolve fills the computed addresses from host, ports and tls
func (c *Config) resolve() {
	scheme := "http"
	if c.Server.TLS {
		scheme = "https"
	}
	if c.Server.HTTP.BaseURL == "" || c.Server.HTTP.BaseURL == Default().Server.HTTP.BaseURL {
		c.Server.HTTP.BaseURL = fmt.Sprintf("%s://%s:%d", scheme, c.Server.Host, c.Server.HTTP.Port)
	}
	if c.Server.GRPC.Addr == "" || c.Server.GRPC.Addr == Default().Server.GRPC.Addr {
		c.Server.GRPC.Addr = fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPC.Port)
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = Default().UI.PageSize
	}
}

// Save saves configuration to file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultPath is where the TUI saves its config when none was found
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devdash-tui.yaml"
	}
	return filepath.Join(home, ".config", "devdash", "tui.yaml")
}

// findConfigFile searches for config in standard locations
func findConfigFile() string {
	locations := []string{
		"./devdash-tui.yaml",
		"./configs/tui.yaml",
		DefaultPath(),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// GetHTTPBaseURL returns the computed HTTP base URL
func (c *Config) GetHTTPBaseURL() string {
	if c.Server.HTTP.BaseURL != "" {
		return c.Server.HTTP.BaseURL
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.HTTP.Port)
}

// GetGRPCAddr returns the computed gRPC address
func (c *Config) GetGRPCAddr() string {
	if c.Server.GRPC.Addr != "" {
		return c.Server.GRPC.Addr
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPC.Port)
}
