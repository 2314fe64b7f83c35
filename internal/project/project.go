package project

import (
	"fmt"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// ProjectExt is the file extension of saved projects.
const ProjectExt = ".slabcam"

// SaveProject writes a project file as JSON.
func SaveProject(path string, p model.Project) error {
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("save project %s: %w", path, err)
	}
	return nil
}

// LoadProject reads a project file. Settings missing from the file keep
// their defaults, and an unknown GCode profile falls back to Generic.
func LoadProject(path string) (model.Project, error) {
	p := model.NewProject()
	if err := readJSON(path, &p); err != nil {
		return model.Project{}, fmt.Errorf("load project %s: %w", path, err)
	}
	p.Settings.GCodeProfile = model.GetProfile(p.Settings.GCodeProfile).Name
	return p, nil
}
