// SlabCAM: contour and pocket GCode from DXF drawings.
//
// Build:
//
//	go build -o slabcam ./cmd/slabcam
//
// Example:
//
//	slabcam -in parts.dxf -tool "6mm End Mill" -side outside -depth 18 -pass 6 -pdf parts.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/piwi3910/SlabCAM/internal/export"
	"github.com/piwi3910/SlabCAM/internal/gcode"
	"github.com/piwi3910/SlabCAM/internal/importer"
	"github.com/piwi3910/SlabCAM/internal/logging"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
	"github.com/piwi3910/SlabCAM/internal/project"
	"github.com/piwi3910/SlabCAM/internal/sequence"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

const (
	maxRecent = 10
	orderSeed = 1
)

var (
	errNoInput        = errors.New("no input: give -in or a project with a source drawing")
	errNoChains       = errors.New("no chains to cut")
	errUnknownTool    = errors.New("unknown tool")
	errUnknownProfile = errors.New("unknown gcode profile")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "slabcam:", err)
		os.Exit(1)
	}
}

// job is everything loaded before toolpaths are built.
type job struct {
	title    string
	source   string
	chains   []*path.Ring
	settings model.CutSettings
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	configPath := filepath.Join(opts.configDir, "config.json")
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.verbose || cfg.Verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer logging.SetLogger(nil)
	}
	log := logging.Logger()

	inv, err := loadInventory(opts)
	if err != nil {
		return err
	}
	if n, err := project.RegisterCustomProfiles(filepath.Join(opts.configDir, "profiles.json")); err != nil {
		log.Warn("custom profiles", "registered", n, "error", err)
	}

	j, err := loadJob(opts, cfg, &inv)
	if err != nil {
		return err
	}

	plans, err := buildPlans(ctx, j)
	if err != nil {
		return err
	}
	order := sequence.Solve(plans, opts.order, orderSeed)
	if order.Violations > 0 {
		log.Warn("outlines are cut before the chains inside them", "strategy", order.Strategy, "count", order.Violations)
	}
	log.Info("cut order", "strategy", order.Strategy, "rapid", order.Rapid)
	plans = sequence.Apply(plans, order)

	code := gcode.New(j.settings).GeneratePlans(j.title, plans)
	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(j.source, filepath.Ext(j.source)) + ".nc"
	}
	if out == "-" {
		if _, err := io.WriteString(stdout, code); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, []byte(code), 0644); err != nil {
		return fmt.Errorf("write gcode: %w", err)
	}

	collisions := gcode.CheckClampCollisions(gcode.ParseGCode(code), j.settings)
	for _, c := range collisions {
		fmt.Fprintf(stderr, "WARNING: line %d passes %.2f mm from clamp %s at X%.3f Y%.3f\n",
			c.Line, c.Distance, c.ClampLabel, c.ToolX, c.ToolY)
	}

	if err := writeExports(opts, j, plans); err != nil {
		return err
	}
	if err := saveJob(opts, &cfg, configPath, j); err != nil {
		return err
	}

	if out != "-" {
		moves := 0
		for _, p := range plans {
			moves += len(p.Moves())
		}
		fmt.Fprintf(stdout, "%s: %d chains, %d moves, %d clamp warnings -> %s\n",
			j.title, len(plans), moves, len(collisions), out)
	}
	return nil
}

// loadInventory reads the tool inventory and merges in a tool table if one
// was given.
func loadInventory(opts options) (model.Inventory, error) {
	invPath := filepath.Join(opts.configDir, "inventory.json")
	inv, err := project.LoadInventory(invPath)
	if err != nil {
		return inv, fmt.Errorf("load inventory: %w", err)
	}
	if opts.toolTable == "" {
		return inv, nil
	}

	res := importer.ImportTools(opts.toolTable)
	for _, w := range res.Warnings {
		logging.Logger().Warn("tool table", "file", opts.toolTable, "warning", w)
	}
	if len(res.Tools) == 0 {
		return inv, fmt.Errorf("tool table %s: %s", opts.toolTable, strings.Join(res.Errors, "; "))
	}
	for _, e := range res.Errors {
		logging.Logger().Warn("tool table row skipped", "file", opts.toolTable, "error", e)
	}
	if added := inv.Merge(res.Tools); added > 0 {
		logging.Logger().Info("tools added", "count", added)
		if err := project.SaveInventory(invPath, inv); err != nil {
			return inv, fmt.Errorf("save inventory: %w", err)
		}
	}
	return inv, nil
}

// loadJob resolves settings and reads the input chains.
func loadJob(opts options, cfg model.AppConfig, inv *model.Inventory) (job, error) {
	var j job
	if opts.projectFile != "" {
		p, err := project.LoadProject(opts.projectFile)
		if err != nil {
			return j, fmt.Errorf("load project: %w", err)
		}
		j.title, j.source, j.settings = p.Name, p.Source, p.Settings
		if opts.input == "" && p.Chains != "" {
			j.source = p.Chains
		}
	} else {
		j.settings = model.DefaultSettings()
		cfg.ApplyToSettings(&j.settings, inv)
	}
	if err := opts.apply(&j.settings, inv); err != nil {
		return j, err
	}

	if opts.input != "" {
		j.source = opts.input
	}
	if j.source == "" {
		return j, errNoInput
	}
	if j.title == "" {
		j.title = strings.TrimSuffix(filepath.Base(j.source), filepath.Ext(j.source))
	}

	chains, err := readChains(j.source)
	if err != nil {
		return j, err
	}
	j.chains = chains
	return j, nil
}

func readChains(source string) ([]*path.Ring, error) {
	if strings.EqualFold(filepath.Ext(source), project.ChainExt) {
		chains, err := project.LoadChains(source)
		if err != nil {
			return nil, fmt.Errorf("load chains: %w", err)
		}
		return chains, nil
	}

	res := importer.ImportDXF(source)
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("import %s: %s", source, strings.Join(res.Errors, "; "))
	}
	for _, w := range res.Warnings {
		logging.Logger().Warn("drawing", "file", source, "warning", w)
	}
	return res.Chains, nil
}

// buildPlans runs every chain through the toolpath builder. Empty chains
// are skipped; any other failure stops the job.
func buildPlans(ctx context.Context, j job) ([]*toolpath.Plan, error) {
	tj := toolpath.NewJob(j.settings)
	var plans []*toolpath.Plan
	for _, chain := range j.chains {
		plan, err := toolpath.Build(ctx, chain, tj)
		if errors.Is(err, toolpath.ErrEmptyChain) {
			logging.Logger().Warn("empty chain skipped", "chain", chain.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if len(plans) == 0 {
		return nil, errNoChains
	}
	return plans, nil
}

func writeExports(opts options, j job, plans []*toolpath.Plan) error {
	if opts.pdf != "" {
		if err := export.ExportPDF(opts.pdf, j.title, plans, j.settings); err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
	}
	if opts.labels != "" {
		if err := export.ExportLabels(opts.labels, j.title, plans, j.settings); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
	}
	if opts.report != "" {
		if err := export.ExportReport(opts.report, j.title, plans, j.settings); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}
	return nil
}

// saveJob writes the chain and project files that were asked for and
// records a saved project in the recent list.
func saveJob(opts options, cfg *model.AppConfig, configPath string, j job) error {
	if opts.saveChains != "" {
		if err := project.SaveChains(opts.saveChains, j.chains); err != nil {
			return fmt.Errorf("save chains: %w", err)
		}
	}
	if opts.saveProject == "" {
		return nil
	}

	p := model.Project{Name: j.title, Source: j.source, Chains: opts.saveChains, Settings: j.settings}
	if err := project.SaveProject(opts.saveProject, p); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	cfg.AddRecent(opts.saveProject, maxRecent)
	if err := project.SaveAppConfig(configPath, *cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
