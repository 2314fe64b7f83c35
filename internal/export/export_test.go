package export

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

func buildTestSettings() model.CutSettings {
	s := model.DefaultSettings()
	s.Tool = model.Tool{Name: "2mm Flat", Diameter: 2, FeedRate: 1000, PlungeRate: 300, SpindleSpeed: 18000}
	s.CutDepth = 4
	s.PassDepth = 2
	s.Compensation = model.CompOutside
	return s
}

func buildTestPlans(t *testing.T, settings model.CutSettings) []*toolpath.Plan {
	t.Helper()

	square := path.New(geom.Context{},
		geom.NewLine(0, 0, 10, 0),
		geom.NewLine(10, 0, 10, 10),
		geom.NewLine(10, 10, 0, 10),
		geom.NewLine(0, 10, 0, 0),
	)
	square.Closed = true

	circle := path.New(geom.Context{}, geom.NewArcCenter(geom.Pt(30, 5), 5, 0, 360))
	circle.Closed = true

	slot := path.New(geom.Context{},
		geom.NewLine(0, 20, 20, 20),
		geom.NewArcCenter(geom.Pt(20, 22), 2, 270, 180),
		geom.NewLine(20, 24, 0, 24),
	)

	var plans []*toolpath.Plan
	for _, chain := range []*path.Ring{square, circle, slot} {
		plan, err := toolpath.Build(context.Background(), chain, toolpath.NewJob(settings))
		if err != nil {
			t.Fatalf("Build(%s) returned error: %v", chain.ID, err)
		}
		plans = append(plans, plan)
	}
	return plans
}

func assertFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.pdf")
	settings := buildTestSettings()

	if err := ExportPDF(path, "Test Job", buildTestPlans(t, settings), settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	// Overview, three chains and the summary
	assertFile(t, path, 500)
}

func TestExportPDF_NoPlans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, "Empty", nil, model.DefaultSettings())
	if !errors.Is(err, ErrNoPlans) {
		t.Fatalf("expected ErrNoPlans, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written")
	}
}

func TestExportPDF_PocketAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pocket.pdf")
	settings := buildTestSettings()
	settings.Pocket = true
	settings.ClampZones = []model.ClampZone{
		{Label: "Front", X: -20, Y: -20, Width: 80, Height: 8},
		{Label: "", X: 50, Y: 0, Width: 5, Height: 5},
	}

	plans := buildTestPlans(t, settings)
	if plans[0].Layers[0].Pocket == nil {
		t.Fatal("closed chain should carry a pocket")
	}
	if err := ExportPDF(path, "Pocket Job", plans, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportPDF_ManyChains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")
	settings := buildTestSettings()

	var plans []*toolpath.Plan
	for i := 0; i < 12; i++ {
		plans = append(plans, buildTestPlans(t, settings)...)
	}
	if err := ExportPDF(path, "Many", plans, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestJobBounds(t *testing.T) {
	settings := buildTestSettings()
	plans := buildTestPlans(t, settings)[:1]

	box := jobBounds(plans, nil)
	if math.Abs(box.Min.X+1) > 1e-6 || math.Abs(box.Max.X-11) > 1e-6 {
		t.Errorf("expected X extent -1..11, got %v..%v", box.Min.X, box.Max.X)
	}

	box = jobBounds(plans, []model.ClampZone{{X: 20, Y: -5, Width: 10, Height: 2}})
	if box.Max.X != 30 || box.Min.Y != -5 {
		t.Errorf("clamp zone not covered: %+v", box)
	}

	box = jobBounds(nil, nil)
	if box.Empty() || box.Width() != 1 {
		t.Errorf("empty job should fall back to a unit box, got %+v", box)
	}
}

func TestFitView(t *testing.T) {
	v := fitView(geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(100, 50)})

	// Y is flipped: the top edge of the drawing lands at the top of the canvas.
	if got := v.y(50); got != v.offsetY {
		t.Errorf("top edge at %v, want %v", got, v.offsetY)
	}
	if got := v.y(0); got != v.offsetY+v.canvasH {
		t.Errorf("bottom edge at %v, want %v", got, v.offsetY+v.canvasH)
	}
	if got := v.x(100); got != v.offsetX+v.canvasW {
		t.Errorf("right edge at %v, want %v", got, v.offsetX+v.canvasW)
	}
	if v.canvasW > pageWidth-marginLeft-marginRight+1e-9 {
		t.Errorf("canvas wider than the page: %v", v.canvasW)
	}
}

func TestCollectChainLabels(t *testing.T) {
	settings := buildTestSettings()
	plans := buildTestPlans(t, settings)

	labels := CollectChainLabels("Job", plans, settings)
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}

	sq := labels[0]
	if sq.Index != 1 || sq.ChainID != plans[0].ChainID || !sq.Closed {
		t.Errorf("unexpected square label: %+v", sq)
	}
	if sq.Layers != 2 || sq.Depth != 4 || sq.Diameter != 2 {
		t.Errorf("unexpected job data: %+v", sq)
	}
	if math.Abs(sq.Width-12) > 1e-6 {
		t.Errorf("expected width 12, got %v", sq.Width)
	}
	if sq.Compensation != "Outside" || sq.Profile != "Generic" {
		t.Errorf("unexpected settings: %+v", sq)
	}
	if labels[2].Closed {
		t.Error("slot is an open chain")
	}
}

func TestChainLabel_JSONKeys(t *testing.T) {
	data, err := json.Marshal(ChainLabel{Job: "J", ChainID: "abc", Index: 2, Depth: 4})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"job", "chain", "index", "depth_mm", "gcode_profile"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	settings := buildTestSettings()

	if err := ExportLabels(path, "A rather long job title that will not fit", buildTestPlans(t, settings), settings); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportLabels_NoPlans(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), "Empty", nil, buildTestSettings())
	if !errors.Is(err, ErrNoPlans) {
		t.Fatalf("expected ErrNoPlans, got %v", err)
	}
}

func TestExportLabels_SecondPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	settings := buildTestSettings()

	var plans []*toolpath.Plan
	for len(plans) <= labelsPerPage {
		plans = append(plans, buildTestPlans(t, settings)...)
	}
	if err := ExportLabels(path, "Big", plans, settings); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	settings := buildTestSettings()
	plans := buildTestPlans(t, settings)

	if err := ExportReport(path, "Report Job", plans, settings); err != nil {
		t.Fatalf("ExportReport returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(chainSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", chainSheet, err)
	}
	// Three info rows, a blank row, the header and one row per chain
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][1] != "Report Job" {
		t.Errorf("expected job title, got %v", rows[0])
	}
	if rows[4][1] != "Chain" {
		t.Errorf("expected header row, got %v", rows[4])
	}
	first := rows[5]
	if first[0] != "1" || first[1] != plans[0].ChainID || first[2] != "Yes" || first[3] != "2" {
		t.Errorf("unexpected chain row: %v", first)
	}
	if first[6] != "12" || first[7] != "12" {
		t.Errorf("expected a 12 x 12 extent, got %v", first)
	}

	layers, err := f.GetRows(layerSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", layerSheet, err)
	}
	// Header plus two layers per chain
	if len(layers) != 7 {
		t.Fatalf("expected 7 layer rows, got %d", len(layers))
	}
	if layers[1][2] != "-2" || layers[2][2] != "-4" {
		t.Errorf("unexpected layer depths: %v %v", layers[1], layers[2])
	}
}

func TestExportReport_NoPlans(t *testing.T) {
	err := ExportReport(filepath.Join(t.TempDir(), "r.xlsx"), "Empty", nil, buildTestSettings())
	if !errors.Is(err, ErrNoPlans) {
		t.Fatalf("expected ErrNoPlans, got %v", err)
	}
}
