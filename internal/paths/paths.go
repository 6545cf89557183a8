// Package paths locates the hbnb config directory and the directory holding
// the store document.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "hbnb"

// Environment overrides, consulted after flags and config.yaml.
const (
	EnvConfigDir = "HBNB_CONFIG_DIR"
	EnvDataDir   = "HBNB_DATA_DIR"
)

// userConfigDir is os.UserConfigDir, replaceable in tests.
var userConfigDir = os.UserConfigDir

// ResolveConfigDir returns the config directory: flag, then HBNB_CONFIG_DIR,
// then <user config dir>/hbnb ($XDG_CONFIG_HOME or ~/.config on Linux).
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := firstSet(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// ResolveDataDir returns the store directory: flag, then the config.yaml
// data_dir value, then HBNB_DATA_DIR, then the working directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok := firstSet(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	return os.Getwd()
}

func firstSet(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c != "" {
			return c, true
		}
	}
	return "", false
}
