// Package project persists application state: preferences, the tool
// inventory, custom post-processor profiles, project files and chain files.
// Everything lives under ~/.slabcam unless a caller passes its own path.
package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.slabcam/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".slabcam")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path. A missing file
// gives DefaultAppConfig, and fields missing from the file keep their
// default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if err := readJSON(path, &config); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.AppConfig{}, err
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}
