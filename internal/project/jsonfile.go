package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSON marshals v with indentation and writes it to path, creating
// missing parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON decodes the file at path into v. Fields absent from the file
// keep whatever v already holds. A missing file is reported with an error
// matching fs.ErrNotExist.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
