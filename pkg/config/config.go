// Package config loads the server configuration from YAML, .env files and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"devdash/pkg/database"
	"devdash/pkg/logger"
)

// EnvPrefix namespaces every environment override, e.g. DEVDASH_SERVER_PORT
const EnvPrefix = "DEVDASH"

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Database  database.Config `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Access    AccessConfig    `mapstructure:"access"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Logging   logger.Config   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
}

// RedisConfig configures the chat broker. An empty Addr selects the in-process broker.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AccessConfig configures the shared-code gate
type AccessConfig struct {
	Code          string        `mapstructure:"code"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	Issuer        string        `mapstructure:"issuer"`
	SecureCookie  bool          `mapstructure:"secure_cookie"`
}

type AnalyticsConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// CatalogConfig points at an optional replacement for the embedded video table
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ChatConfig struct {
	DoctorID       string   `mapstructure:"doctor_id"`
	SendRatePerSec float64  `mapstructure:"send_rate_per_sec"`
	SendBurst      int      `mapstructure:"send_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 9090)
	v.SetDefault("grpc.enabled", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "devdash")
	v.SetDefault("database.database", "devdash")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.timeout", 5*time.Second)

	v.SetDefault("access.session_ttl", 8*time.Hour)
	v.SetDefault("access.issuer", "devdash")
	v.SetDefault("access.secure_cookie", true)

	v.SetDefault("analytics.timezone", "UTC")

	v.SetDefault("chat.doctor_id", "doctor_1")
	v.SetDefault("chat.send_rate_per_sec", 1.0)
	v.SetDefault("chat.send_burst", 5)
	v.SetDefault("chat.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// Load reads path (optional), then .env files next to it and in the working
// directory, then DEVDASH_* variables. ACCESS_CODE is honoured without prefix.
func Load(path string) (*Config, error) {
	loadEnvFiles(path)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("access.code", EnvPrefix+"_ACCESS_CODE", "ACCESS_CODE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with. A missing
// access code is allowed: the gate then answers 500 "Server not configured".
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.GRPC.Enabled && (c.GRPC.Port <= 0 || c.GRPC.Port > 65535) {
		errs = append(errs, fmt.Errorf("grpc.port %d out of range", c.GRPC.Port))
	}
	if c.Database.Host == "" || c.Database.Database == "" {
		errs = append(errs, errors.New("database.host and database.database are required"))
	}
	if c.Access.SessionTTL <= 0 {
		errs = append(errs, errors.New("access.session_ttl must be positive"))
	}
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("analytics.timezone: %w", err))
	}
	if c.Chat.SendRatePerSec <= 0 || c.Chat.SendBurst <= 0 {
		errs = append(errs, errors.New("chat.send_rate_per_sec and chat.send_burst must be positive"))
	}
	return errors.Join(errs...)
}

// HTTPAddr is the listen address of the HTTP server
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr is the listen address of the gRPC health server
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}

// Location resolves analytics.timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadEnvFiles(configPath string) {
	var files []string
	seen := map[string]bool{}
	dirs := []string{"."}
	if configPath != "" {
		dirs = append([]string{filepath.Dir(configPath)}, dirs...)
	}
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			candidate, err := filepath.Abs(filepath.Join(dir, name))
			if err != nil || seen[candidate] {
				continue
			}
			if _, err := os.Stat(candidate); err == nil {
				seen[candidate] = true
				files = append(files, candidate)
			}
		}
	}
	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}
}
