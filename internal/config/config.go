package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Messaging MessagingConfig `yaml:"messaging"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI             string        `yaml:"uri"`
	Name            string        `yaml:"name"`
	Timeout         time.Duration `yaml:"timeout"`
	CredentialsFile string        `yaml:"credentials_file"`
	Debug           bool          `yaml:"debug"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// MessagingConfig enables order event publishing when AMQPURL is set
type MessagingConfig struct {
	AMQPURL string `yaml:"amqp_url"`
}

// AuthConfig guards admin routes when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URI:     "restaurant.db",
			Name:    "restaurant",
			Timeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads the YAML file at path over the defaults, then a .env file from
// the working directory, then environment overrides. Either file may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("METRICS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_PORT %q: %w", v, err)
		}
		c.Metrics.Port = port
	}

	// MONGODB_URI wins over DATABASE_URL when both are set
	if v, ok := lookup("DATABASE_URL"); ok {
		c.Database.URI = v
	}
	if v, ok := lookup("MONGODB_URI"); ok {
		c.Database.URI = v
	}
	if v, ok := lookup("DB_NAME"); ok {
		c.Database.Name = v
	}
	if v, ok := lookup("GOOGLE_APPLICATION_CREDENTIALS"); ok {
		c.Database.CredentialsFile = v
	}
	if v, ok := lookup("AMQP_URL"); ok {
		c.Messaging.AMQPURL = v
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("GIN_MODE"); ok {
		c.Server.Mode = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks the values main depends on
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port %d", c.Metrics.Port)
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics port %d collides with server port", c.Metrics.Port)
	}
	if strings.TrimSpace(c.Database.URI) == "" {
		return errors.New("database uri is required")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("invalid database timeout %s", c.Database.Timeout)
	}
	return nil
}
