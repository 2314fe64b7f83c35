package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Inventory model.Inventory      `json:"inventory"`
	Profiles  []model.GCodeProfile `json:"profiles,omitempty"`
}

// ExportAllData exports preferences, tools and custom profiles to a single
// JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, inv model.Inventory, profiles []model.GCodeProfile) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Inventory: inv,
		Profiles:  profiles,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported data.
func ImportAllData(importPath string) (BackupData, error) {
	var backup BackupData
	if err := readJSON(importPath, &backup); err != nil {
		return BackupData{}, fmt.Errorf("read backup: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, errors.New("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	return backup, nil
}
