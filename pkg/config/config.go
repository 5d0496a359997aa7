package config

import (
	"os"
	"path/filepath"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HomeDir returns the root ~/.talon directory.
func HomeDir() string {
	home, _ := os.UserHomeDir()
	path := filepath.Join(home, ".talon")
	_ = os.MkdirAll(path, 0o755)
	return path
}

// DefaultDataDir is where talent stores live unless data_dir is set.
func DefaultDataDir() string {
	return filepath.Join(HomeDir(), "data")
}

// DefaultConfigFile is the settings file used when --config is not given.
func DefaultConfigFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".talon.yaml")
}

// SecretsPath returns the fallback secrets file used when no OS keyring is
// reachable.
func SecretsPath() string {
	return filepath.Join(HomeDir(), "secrets.json")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
