// Package config provides configuration loading and defaults for the docker-manager-mcp server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Transport names accepted in ServerConfig.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ErrMissingBaseURL is returned by Validate when no Docker-manager base URL
// has been configured.
var ErrMissingBaseURL = errors.New("config: manager base_url is required")

// ResourceFilter holds allowlist and denylist entries for a resource category.
type ResourceFilter struct {
	Allowlist []string `yaml:"allowlist"`
	Denylist  []string `yaml:"denylist"`
}

// SafetyConfig groups name filters for containers and networks.
type SafetyConfig struct {
	Containers ResourceFilter `yaml:"containers"`
	Networks   ResourceFilter `yaml:"networks"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// ServerConfig holds the inbound MCP transport settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
	// Transport is either "stdio" or "http".
	Transport string `yaml:"transport"`
}

// ManagerConfig holds connection details for the external Docker-manager
// service every tool call is relayed to.
type ManagerConfig struct {
	BaseURL string `yaml:"base_url"`
	// Token is sent verbatim in the Authorization header.
	Token string `yaml:"token"`
	// Timeout is the HTTP request timeout in seconds. Zero disables it.
	Timeout int `yaml:"timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Config is the top-level configuration structure for the docker-manager-mcp server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Manager ManagerConfig `yaml:"manager"`
	Safety  SafetyConfig  `yaml:"safety"`
	Audit   AuditConfig   `yaml:"audit"`
	Log     LogConfig     `yaml:"log"`
}

// LoadConfig reads a YAML configuration file from path. Keys absent from the
// file keep their DefaultConfig values. On error, nil is returned for the
// config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			Transport: TransportStdio,
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "/config/audit.log",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - DOCKER_MANAGER_BASE_URL overrides cfg.Manager.BaseURL
//   - DOCKER_MANAGER_API_TOKEN overrides cfg.Manager.Token
//   - DOCKER_MCP_AUTH_TOKEN overrides cfg.Server.AuthToken
//   - DOCKER_MCP_TRANSPORT overrides cfg.Server.Transport
//   - DOCKER_MCP_LOG_LEVEL overrides cfg.Log.Level
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCKER_MANAGER_BASE_URL"); v != "" {
		cfg.Manager.BaseURL = v
	}
	if v := os.Getenv("DOCKER_MANAGER_API_TOKEN"); v != "" {
		cfg.Manager.Token = v
	}
	if v := os.Getenv("DOCKER_MCP_AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if v := os.Getenv("DOCKER_MCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("DOCKER_MCP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Manager.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.Manager.BaseURL)
	if err != nil {
		return fmt.Errorf("config: parse manager base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: manager base_url %q must be an absolute http(s) URL", c.Manager.BaseURL)
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Manager.Timeout < 0 {
		return fmt.Errorf("config: manager timeout must not be negative")
	}
	return nil
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or generated)
// and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
