package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

const (
	chainSheet = "Chains"
	layerSheet = "Layers"
)

var (
	chainHeader = []string{"#", "Chain", "Closed", "Layers", "Length (mm)", "Moves", "Width (mm)", "Height (mm)"}
	layerHeader = []string{"Chain", "Layer", "Z", "Items", "Moves", "Pocket Rows", "Length (mm)"}
)

// ExportReport writes an Excel workbook with one row per chain on the
// Chains sheet and one row per depth layer on the Layers sheet.
func ExportReport(filename, title string, plans []*toolpath.Plan, settings model.CutSettings) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chainSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(layerSheet); err != nil {
		return err
	}

	chains := [][]interface{}{
		{"Job", title},
		{"Tool", fmt.Sprintf("%s %.2f mm", settings.Tool.Name, settings.Tool.Diameter)},
		{"Depth", settings.CutDepth},
		{},
		toRow(chainHeader),
	}
	var layers [][]interface{}
	layers = append(layers, toRow(layerHeader))

	for i, plan := range plans {
		box := plan.Bounds()
		w, h := box.Width(), box.Height()
		if box.Empty() {
			w, h = 0, 0
		}
		chains = append(chains, []interface{}{
			i + 1, plan.ChainID, yesNo(plan.Closed), len(plan.Layers),
			round2(plan.Length()), len(plan.Moves()), round2(w), round2(h),
		})

		for j, l := range plan.Layers {
			rows := 0
			if l.Pocket != nil {
				rows = l.Pocket.Len()
			}
			items, length := 0, 0.0
			if l.Contour != nil {
				items, length = l.Contour.Len(), l.Contour.Length()
			}
			layers = append(layers, []interface{}{
				plan.ChainID, j + 1, l.Z, items, len(l.Moves), rows, round2(length),
			})
		}
	}

	if err := writeRows(f, chainSheet, chains); err != nil {
		return err
	}
	if err := writeRows(f, layerSheet, layers); err != nil {
		return err
	}
	return f.SaveAs(filename)
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return fmt.Errorf("sheet %s cell %s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
