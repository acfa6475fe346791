package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths contains standard filesystem paths for anvil.
type Paths struct {
	// ConfigFile is the path to the config file (~/.anvil/config.yaml).
	ConfigFile string

	// HomeDir is the anvil home directory (~/.anvil).
	HomeDir string
}

// DefaultPaths returns the default paths.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	anvilHome := filepath.Join(homeDir, ".anvil")
	return &Paths{
		ConfigFile: filepath.Join(anvilHome, "config.yaml"),
		HomeDir:    anvilHome,
	}, nil
}

// GetConfigFile returns the config file path. ANVIL_CONFIG takes precedence
// over the default location.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv("ANVIL_CONFIG"); envPath != "" {
		return envPath, nil
	}
	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
