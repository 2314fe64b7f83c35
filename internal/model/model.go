package model

import (
	"math"

	"github.com/google/uuid"
)

// Compensation selects which side of a profile the tool runs on.
type Compensation int

const (
	CompOn      Compensation = iota // Tool center follows the profile
	CompOutside                     // Tool runs outside a closed profile
	CompInside                      // Tool runs inside a closed profile
)

func (c Compensation) String() string {
	switch c {
	case CompOutside:
		return "Outside"
	case CompInside:
		return "Inside"
	default:
		return "On"
	}
}

// Side returns the lateral offset sign for a counter-clockwise profile:
// +1 outside, -1 inside, 0 on the line.
func (c Compensation) Side() float64 {
	switch c {
	case CompOutside:
		return 1
	case CompInside:
		return -1
	default:
		return 0
	}
}

// ParseCompensation maps "on", "outside" and "inside" (and their first
// letters) to a Compensation. Unknown values fall back to CompOn.
func ParseCompensation(s string) Compensation {
	switch s {
	case "outside", "out", "o", "Outside":
		return CompOutside
	case "inside", "in", "i", "Inside":
		return CompInside
	default:
		return CompOn
	}
}

// Tool describes a cutter.
type Tool struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Diameter     float64 `json:"diameter"`      // Cutting diameter at the tip
	TaperAngle   float64 `json:"taper_angle"`   // Included angle in degrees, 0 for straight cutters
	FeedRate     float64 `json:"feed_rate"`     // Cutting feed rate per minute
	PlungeRate   float64 `json:"plunge_rate"`   // Plunge feed rate per minute
	SpindleSpeed int     `json:"spindle_speed"` // RPM
}

// NewTool creates a straight cutter with a generated ID.
func NewTool(name string, diameter, feedRate, plungeRate float64, spindleSpeed int) Tool {
	return Tool{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Diameter:     diameter,
		FeedRate:     feedRate,
		PlungeRate:   plungeRate,
		SpindleSpeed: spindleSpeed,
	}
}

// Radius is half the tip diameter.
func (t Tool) Radius() float64 {
	return t.Diameter / 2
}

// TaperAt returns the extra cutting radius a tapered tool has at the top
// surface when its tip sits depth below it. Straight tools return 0.
func (t Tool) TaperAt(depth float64) float64 {
	if t.TaperAngle <= 0 || depth <= 0 {
		return 0
	}
	return depth * math.Tan(t.TaperAngle/2*math.Pi/180)
}

// CutSettings holds the machining parameters for one job.
type CutSettings struct {
	Tool Tool `json:"tool"`

	StockTop  float64 `json:"stock_top"`  // Z of the stock surface
	SafeZ     float64 `json:"safe_z"`     // Retract height above the stock top
	CutDepth  float64 `json:"cut_depth"`  // Total depth below the stock top, positive
	PassDepth float64 `json:"pass_depth"` // Depth per pass, positive

	Compensation Compensation `json:"compensation"` // Profile side
	Pocket       bool         `json:"pocket"`       // Clear the area inside closed profiles
	// PocketResolution is the spacing between pocket rows. Zero picks 40% of
	// the tool diameter.
	PocketResolution float64 `json:"pocket_resolution"`

	// Fixtures the cutter must keep clear of
	ClampZones     []ClampZone `json:"clamp_zones,omitempty"`
	ClampClearance float64     `json:"clamp_clearance"` // Extra distance kept from clamp zones

	// GCode post-processor profile
	GCodeProfile string `json:"gcode_profile"` // Name of the GCode profile to use
}

// ClampZone is a rectangular fixture area on the machine bed.
type ClampZone struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`      // Lower left corner
	Y      float64 `json:"y"`      // Lower left corner
	Width  float64 `json:"width"`  // Zone width
	Height float64 `json:"height"` // Zone height
}

// Collision reports a cutting position that comes too close to a clamp.
type Collision struct {
	ClampLabel string  `json:"clamp_label"`
	Line       int     `json:"line"`     // 1-based index of the offending move
	ToolX      float64 `json:"tool_x"`   // Tool center at the collision
	ToolY      float64 `json:"tool_y"`   // Tool center at the collision
	Distance   float64 `json:"distance"` // Gap between tool edge and clamp, negative when overlapping
}

// RowSpacing returns the effective pocket row spacing.
func (s CutSettings) RowSpacing() float64 {
	if s.PocketResolution > 0 {
		return s.PocketResolution
	}
	return s.Tool.Diameter * 0.4
}

// RetractZ returns the absolute Z the cutter retracts to.
func (s CutSettings) RetractZ() float64 {
	return s.StockTop + s.SafeZ
}

func DefaultSettings() CutSettings {
	return CutSettings{
		Tool:           NewTool("6mm End Mill", 6.0, 1500, 500, 18000),
		SafeZ:          5.0,
		CutDepth:       18.0,
		PassDepth:      6.0,
		Compensation:   CompOutside,
		ClampClearance: 2.0,
		GCodeProfile:   "Generic", // Default GCode profile
	}
}

// MoveKind identifies a motion command.
type MoveKind int

const (
	MoveRapid  MoveKind = iota // Positioning move
	MoveFeed                   // Straight cutting move
	MoveArcCW                  // Clockwise arc
	MoveArcCCW                 // Counter-clockwise arc
)

func (k MoveKind) String() string {
	switch k {
	case MoveFeed:
		return "Feed"
	case MoveArcCW:
		return "ArcCW"
	case MoveArcCCW:
		return "ArcCCW"
	default:
		return "Rapid"
	}
}

// Move is one motion of the tool center to an absolute target.
type Move struct {
	Kind MoveKind `json:"kind"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Z    float64  `json:"z"`
	I    float64  `json:"i,omitempty"`    // Arc center X relative to the move start
	J    float64  `json:"j,omitempty"`    // Arc center Y relative to the move start
	Feed float64  `json:"feed,omitempty"` // Feed rate, 0 for rapids
}

// Project ties a source drawing to its machining settings for save/load.
type Project struct {
	Name     string      `json:"name"`
	Source   string      `json:"source"`           // Path of the imported drawing
	Chains   string      `json:"chains,omitempty"` // Path of the saved chain file
	Settings CutSettings `json:"settings"`
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Settings: DefaultSettings(),
	}
}
