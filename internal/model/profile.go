package model

import "fmt"

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`        // Profile name
	Description string `json:"description"` // Profile description
	Units       string `json:"units"`       // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command

	// Motion settings
	AbsoluteMode string `json:"absolute_mode"` // G90 or equivalent
	FeedMode     string `json:"feed_mode"`     // Feed rate mode
	RapidMove    string `json:"rapid_move"`    // G0 or equivalent
	FeedMove     string `json:"feed_move"`     // G1 or equivalent
	ArcCW        string `json:"arc_cw"`        // G2 or equivalent
	ArcCCW       string `json:"arc_ccw"`       // G3 or equivalent

	// End codes
	EndCode []string `json:"end_code"` // Commands at end of file

	// Comment style
	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (if needed, e.g., ")" for Fanuc)

	// Number formatting
	DecimalPlaces int `json:"decimal_places"` // Number of decimal places for coordinates
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94", "G64 P0.01"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Inch",
		Description:   "Generic GCode in inches",
		Units:         "inches",
		StartCode:     []string{"G90", "G20", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// CustomProfiles holds user-defined profiles loaded from disk.
var CustomProfiles []GCodeProfile

// AllProfiles returns the built-in profiles followed by the custom ones.
func AllProfiles() []GCodeProfile {
	all := make([]GCodeProfile, 0, len(GCodeProfiles)+len(CustomProfiles))
	all = append(all, GCodeProfiles...)
	return append(all, CustomProfiles...)
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range AllProfiles() {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1] // Return Generic (last one)
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}

func isBuiltIn(name string) bool {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// AddCustomProfile adds p to the custom profiles, replacing any custom
// profile with the same name. Built-in names are rejected.
func AddCustomProfile(p GCodeProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if isBuiltIn(p.Name) {
		return fmt.Errorf("cannot override built-in profile %q", p.Name)
	}
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == p.Name {
			CustomProfiles[i] = p
			return nil
		}
	}
	CustomProfiles = append(CustomProfiles, p)
	return nil
}

// RemoveCustomProfile deletes the named custom profile.
func RemoveCustomProfile(name string) error {
	if isBuiltIn(name) {
		return fmt.Errorf("cannot remove built-in profile %q", name)
	}
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == name {
			CustomProfiles = append(CustomProfiles[:i], CustomProfiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile %q not found", name)
}
