// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the name of the VibeProxy directory inside the
	// platform config directory.
	AppDirName = "vibeproxy"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.json"
)

// Dir returns the per-user VibeProxy config directory. When the platform
// config directory cannot be resolved it falls back to the current working
// directory, so the application can still run in constrained environments.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, AppDirName)
}

// EnsureDir creates the given config directory if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
