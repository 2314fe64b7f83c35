package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// DefaultInventoryPath returns the default file path for the inventory file.
// This is located at ~/.slabcam/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file. The
// first load finds no file, so the default tool set is written there and
// returned.
func LoadInventory(path string) (model.Inventory, error) {
	var inv model.Inventory
	err := readJSON(path, &inv)
	if errors.Is(err, fs.ErrNotExist) {
		inv = model.DefaultInventory()
		return inv, SaveInventory(path, inv)
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// ImportInventory merges the tools of an inventory file into existing.
// Tools whose names are already present are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, int, error) {
	var imported model.Inventory
	if err := readJSON(path, &imported); err != nil {
		return existing, 0, fmt.Errorf("import inventory: %w", err)
	}
	added := existing.Merge(imported.Tools)
	return existing, added, nil
}
