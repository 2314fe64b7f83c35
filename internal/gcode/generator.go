package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

// Section is a labelled run of moves, written under its own comment.
type Section struct {
	Label string
	Moves []model.Move
}

// PlanSections returns one section per depth layer of every plan.
func PlanSections(plans []*toolpath.Plan) []Section {
	var sections []Section
	for i, plan := range plans {
		for j, l := range plan.Layers {
			sections = append(sections, Section{
				Label: fmt.Sprintf("Chain %d (%s) layer %d/%d Z%.3f", i+1, plan.ChainID, j+1, len(plan.Layers), l.Z),
				Moves: l.Moves,
			})
		}
	}
	return sections
}

// Generator writes moves as GCode for one post-processor profile.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile

	// Modal state of the last written motion
	x, y, z, feed string
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Generate produces a complete program: header, every section, footer.
// The header moves the machine to X0 Y0 at the retract height, StockTop plus
// SafeZ.
func (g *Generator) Generate(title string, sections []Section) string {
	var b strings.Builder

	moves := 0
	for _, s := range sections {
		moves += len(s.Moves)
	}
	g.writeHeader(&b, title, len(sections), moves)

	for _, s := range sections {
		if len(s.Moves) == 0 {
			continue
		}
		b.WriteString(g.comment("--- " + s.Label + " ---"))
		for _, m := range s.Moves {
			g.writeMove(&b, m)
		}
	}

	g.writeFooter(&b)
	return b.String()
}

// GeneratePlans is Generate over PlanSections.
func (g *Generator) GeneratePlans(title string, plans []*toolpath.Plan) string {
	return g.Generate(title, PlanSections(plans))
}

func (g *Generator) writeHeader(b *strings.Builder, title string, sections, moves int) {
	p := g.profile
	s := g.Settings

	b.WriteString(g.comment("SlabCAM GCode: " + title))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %s %.1f%s, Feed: %.0f, Plunge: %.0f",
		s.Tool.Name, s.Tool.Diameter, p.Units, s.Tool.FeedRate, s.Tool.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1f in %.1f passes, Compensation: %s",
		s.CutDepth, s.PassDepth, s.Compensation)))
	b.WriteString(g.comment(fmt.Sprintf("Sections: %d, Moves: %d", sections, moves)))
	b.WriteString(g.comment("Profile: " + p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", s.Tool.SpindleSpeed))
	}

	// Initial safe Z retract
	g.x, g.y, g.z, g.feed = g.format(0), g.format(0), g.format(s.RetractZ()), ""
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.x, g.y))
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.z))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.RetractZ()))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writeMove writes one move, leaving out axes and feed that are unchanged
// at the profile's precision. Straight moves that go nowhere are dropped.
// Arcs always carry X, Y, I and J.
func (g *Generator) writeMove(b *strings.Builder, m model.Move) {
	p := g.profile
	x, y, z := g.format(m.X), g.format(m.Y), g.format(m.Z)

	var word string
	switch m.Kind {
	case model.MoveFeed:
		word = p.FeedMove
	case model.MoveArcCW:
		word = p.ArcCW
	case model.MoveArcCCW:
		word = p.ArcCCW
	default:
		word = p.RapidMove
	}
	arc := m.Kind == model.MoveArcCW || m.Kind == model.MoveArcCCW

	var line strings.Builder
	line.WriteString(word)
	if arc || x != g.x {
		line.WriteString(" X" + x)
	}
	if arc || y != g.y {
		line.WriteString(" Y" + y)
	}
	if z != g.z {
		line.WriteString(" Z" + z)
	}
	if arc {
		line.WriteString(" I" + g.format(m.I) + " J" + g.format(m.J))
	} else if line.Len() == len(word) {
		return
	}
	if m.Kind != model.MoveRapid && m.Feed > 0 {
		if f := g.format(m.Feed); f != g.feed {
			line.WriteString(" F" + f)
			g.feed = f
		}
	}

	b.WriteString(line.String() + "\n")
	g.x, g.y, g.z = x, y, z
}

// comment wraps text in the profile's comment delimiters.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	s := fmt.Sprintf(format, v)
	if strings.Trim(s, "-0.") == "" {
		// Avoid "-0.000".
		return fmt.Sprintf(format, 0.0)
	}
	return s
}
