package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	profilesFile = "profiles.json"
	cacheFile    = "cache.db"
	sessionFile  = "session.json"
)

var configDir string

// SetConfigDir points every storage path at dir. An empty dir falls back to
// $RENTADM_HOME, then ~/.config/rentadm.
func SetConfigDir(dir string) {
	configDir = dir
}

func ConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	if dir := os.Getenv("RENTADM_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rentadm"), nil
}

func ProfilesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profilesFile), nil
}

func CachePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheFile), nil
}

func SessionPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFile), nil
}

func ensureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}
