// Package models defines the data types shared across VibeProxy packages.
package models

import "fmt"

// BackendConfig holds the connection settings for the proxy backend.
type BackendConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	// Service is the gRPC health service name to probe. Empty probes the
	// server's overall health.
	Service string `json:"service,omitempty"`

	// TimeoutSeconds bounds a single health probe.
	TimeoutSeconds int `json:"timeout_seconds"`

	// APIKeySecret names the secret-store key holding the backend API key.
	APIKeySecret string `json:"api_key_secret,omitempty"`
}

// Address returns the backend's host:port dial target.
func (b BackendConfig) Address() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// AppConfig represents the application configuration.
// This corresponds to <config-dir>/vibeproxy/config.json.
type AppConfig struct {
	Version int           `json:"version"`
	Backend BackendConfig `json:"backend"`
}

// NewAppConfig creates a config with default values.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Version: 1,
		Backend: BackendConfig{
			Host:           "localhost",
			Port:           8080,
			TimeoutSeconds: 5,
		},
	}
}
