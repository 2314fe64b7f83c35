package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new jobs
	DefaultToolName     string       `json:"default_tool_name"`
	DefaultSafeZ        float64      `json:"default_safe_z"`
	DefaultCutDepth     float64      `json:"default_cut_depth"`
	DefaultPassDepth    float64      `json:"default_pass_depth"`
	DefaultCompensation Compensation `json:"default_compensation"`
	DefaultGCodeProfile string       `json:"default_gcode_profile"`

	// Application preferences
	Verbose        bool     `json:"verbose"` // Debug logging on by default
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultToolName:     defaults.Tool.Name,
		DefaultSafeZ:        defaults.SafeZ,
		DefaultCutDepth:     defaults.CutDepth,
		DefaultPassDepth:    defaults.PassDepth,
		DefaultCompensation: defaults.Compensation,
		DefaultGCodeProfile: defaults.GCodeProfile,
		RecentProjects:      []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a CutSettings struct.
// The tool is resolved by name against inv; an unknown name keeps s.Tool.
func (c AppConfig) ApplyToSettings(s *CutSettings, inv *Inventory) {
	if inv != nil {
		if t := inv.FindToolByName(c.DefaultToolName); t != nil {
			s.Tool = *t
		}
	}
	s.SafeZ = c.DefaultSafeZ
	s.CutDepth = c.DefaultCutDepth
	s.PassDepth = c.DefaultPassDepth
	s.Compensation = c.DefaultCompensation
	s.GCodeProfile = c.DefaultGCodeProfile
}

// AddRecent moves path to the front of the recent list, keeping at most
// max entries.
func (c *AppConfig) AddRecent(path string, max int) {
	list := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			list = append(list, p)
		}
	}
	if max > 0 && len(list) > max {
		list = list[:max]
	}
	c.RecentProjects = list
}
