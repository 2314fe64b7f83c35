package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	profiles := []model.GCodeProfile{}
	if err := readJSON(path, &profiles); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return profiles, nil
}

// RegisterCustomProfiles loads the profiles at path and makes them available
// to GetProfile. Profiles that shadow a built-in name are skipped and
// reported in the returned error; the others are still registered.
func RegisterCustomProfiles(path string) (int, error) {
	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		return 0, fmt.Errorf("load profiles %s: %w", path, err)
	}
	var errs []error
	added := 0
	for _, p := range profiles {
		if err := model.AddCustomProfile(p); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}
	return added, errors.Join(errs...)
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.GCodeProfile) error {
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.GCodeProfile, error) {
	var profile model.GCodeProfile
	if err := readJSON(path, &profile); err != nil {
		return model.GCodeProfile{}, err
	}
	if profile.Name == "" {
		return model.GCodeProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
