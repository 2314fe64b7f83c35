package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/project"
	"github.com/piwi3910/SlabCAM/internal/sequence"
)

// options holds the parsed command line.
type options struct {
	input       string
	projectFile string
	configDir   string
	toolTable   string

	tool    string
	side    string
	depth   float64
	pass    float64
	safeZ   float64
	top     float64
	pocket  bool
	profile string
	clamps  clampList
	order   sequence.Strategy

	output      string
	pdf         string
	labels      string
	report      string
	saveChains  string
	saveProject string
	verbose     bool

	// Names of the flags given explicitly
	set map[string]bool
}

// clampList collects repeated -clamp flags.
type clampList []model.ClampZone

func (c *clampList) String() string {
	parts := make([]string, len(*c))
	for i, z := range *c {
		parts[i] = fmt.Sprintf("%s:%g,%g,%g,%g", z.Label, z.X, z.Y, z.Width, z.Height)
	}
	return strings.Join(parts, " ")
}

func (c *clampList) Set(v string) error {
	z, err := parseClamp(v)
	if err != nil {
		return err
	}
	*c = append(*c, z)
	return nil
}

// parseClamp reads "[label:]x,y,width,height".
func parseClamp(v string) (model.ClampZone, error) {
	var z model.ClampZone
	if i := strings.Index(v, ":"); i >= 0 {
		z.Label, v = v[:i], v[i+1:]
	}
	fields := strings.Split(v, ",")
	if len(fields) != 4 {
		return z, fmt.Errorf("clamp %q: want x,y,width,height", v)
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return z, fmt.Errorf("clamp %q: %w", v, err)
		}
		nums[i] = n
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return z, fmt.Errorf("clamp %q: width and height must be positive", v)
	}
	z.X, z.Y, z.Width, z.Height = nums[0], nums[1], nums[2], nums[3]
	if z.Label == "" {
		z.Label = fmt.Sprintf("Clamp@%g,%g", z.X, z.Y)
	}
	return z, nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("slabcam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: slabcam [flags] -in drawing.dxf")
		fmt.Fprintln(stderr, "Generates contour and pocket GCode from the closed and open chains of a drawing.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.input, "in", "", "Input drawing (.dxf) or chain file ("+project.ChainExt+")")
	fs.StringVar(&o.projectFile, "project", "", "Project file ("+project.ProjectExt+") supplying input and settings")
	fs.StringVar(&o.configDir, "config", project.DefaultConfigDir(), "Configuration directory")
	fs.StringVar(&o.toolTable, "tools", "", "CSV or Excel tool table to merge into the inventory")

	fs.StringVar(&o.tool, "tool", "", "Tool name from the inventory")
	fs.StringVar(&o.side, "side", "", "Compensation: on, outside or inside")
	fs.Float64Var(&o.depth, "depth", 0, "Total cut depth")
	fs.Float64Var(&o.pass, "pass", 0, "Depth per pass")
	fs.Float64Var(&o.safeZ, "safez", 0, "Retract height above the stock top")
	fs.Float64Var(&o.top, "top", 0, "Z of the stock surface")
	fs.BoolVar(&o.pocket, "pocket", false, "Clear the inside of closed chains")
	fs.StringVar(&o.profile, "profile", "", "GCode profile name")
	fs.Var(&o.clamps, "clamp", "Clamp zone [label:]x,y,width,height (repeatable)")
	order := fs.String("order", "genetic", "Chain order: drawing, nearest or genetic")

	fs.StringVar(&o.output, "o", "", "GCode output file, - for stdout (default: input name with .nc)")
	fs.StringVar(&o.pdf, "pdf", "", "Write a toolpath preview PDF")
	fs.StringVar(&o.labels, "labels", "", "Write a PDF of QR chain labels")
	fs.StringVar(&o.report, "report", "", "Write an Excel job report")
	fs.StringVar(&o.saveChains, "save-chains", "", "Save the imported chains")
	fs.StringVar(&o.saveProject, "save-project", "", "Save the job as a project file")
	fs.BoolVar(&o.verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	strategy, err := sequence.ParseStrategy(*order)
	if err != nil {
		return o, err
	}
	o.order = strategy

	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overrides settings with every flag given explicitly.
func (o options) apply(s *model.CutSettings, inv *model.Inventory) error {
	if o.set["tool"] {
		t := inv.FindToolByName(o.tool)
		if t == nil {
			return fmt.Errorf("%w %q, have: %s", errUnknownTool, o.tool, strings.Join(inv.ToolNames(), ", "))
		}
		s.Tool = *t
	}
	if o.set["side"] {
		s.Compensation = model.ParseCompensation(strings.ToLower(o.side))
	}
	if o.set["depth"] {
		s.CutDepth = o.depth
	}
	if o.set["pass"] {
		s.PassDepth = o.pass
	}
	if o.set["safez"] {
		s.SafeZ = o.safeZ
	}
	if o.set["top"] {
		s.StockTop = o.top
	}
	if o.set["pocket"] {
		s.Pocket = o.pocket
	}
	if o.set["profile"] {
		prof := model.GetProfile(o.profile)
		if prof.Name != o.profile {
			return fmt.Errorf("%w %q, have: %s", errUnknownProfile, o.profile, strings.Join(model.GetProfileNames(), ", "))
		}
		s.GCodeProfile = prof.Name
	}
	s.ClampZones = append(s.ClampZones, o.clamps...)
	return nil
}
