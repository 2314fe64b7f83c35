package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

// ChainLabel holds the data encoded into each chain label's QR code.
type ChainLabel struct {
	Job          string  `json:"job"`
	ChainID      string  `json:"chain"`
	Index        int     `json:"index"`
	Closed       bool    `json:"closed"`
	Compensation string  `json:"compensation"`
	Tool         string  `json:"tool"`
	Diameter     float64 `json:"tool_mm"`
	Depth        float64 `json:"depth_mm"`
	Layers       int     `json:"layers"`
	Width        float64 `json:"width_mm"`
	Height       float64 `json:"height_mm"`
	Profile      string  `json:"gcode_profile"`
}

// Label layout for Avery 5160-compatible sheets (3 columns, 10 rows on US Letter).
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectChainLabels builds one label per plan.
func CollectChainLabels(title string, plans []*toolpath.Plan, settings model.CutSettings) []ChainLabel {
	profile := model.GetProfile(settings.GCodeProfile).Name
	labels := make([]ChainLabel, 0, len(plans))
	for i, plan := range plans {
		box := plan.Bounds()
		w, h := box.Width(), box.Height()
		if box.Empty() {
			w, h = 0, 0
		}
		labels = append(labels, ChainLabel{
			Job:          title,
			ChainID:      plan.ChainID,
			Index:        i + 1,
			Closed:       plan.Closed,
			Compensation: settings.Compensation.String(),
			Tool:         settings.Tool.Name,
			Diameter:     settings.Tool.Diameter,
			Depth:        settings.CutDepth,
			Layers:       len(plan.Layers),
			Width:        w,
			Height:       h,
			Profile:      profile,
		})
	}
	return labels
}

// ExportLabels writes a sheet of QR-coded labels, one per chain, so the
// cut parts can be matched back to the job.
func ExportLabels(filename, title string, plans []*toolpath.Plan, settings model.CutSettings) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range CollectChainLabels(title, plans, settings) {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("label for chain %s: %w", label.ChainID, err)
		}
	}

	return pdf.OutputFileAndClose(filename)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info ChainLabel) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", info.Index, info.ChainID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	heading := truncate(pdf, fmt.Sprintf("%d: %s", info.Index, info.Job), textW)
	pdf.CellFormat(textW, 4.5, heading, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.1f x %.1f mm, Z-%.1f", info.Width, info.Height, info.Depth)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	tool := truncate(pdf, fmt.Sprintf("%s %.1f mm, %s", info.Tool, info.Diameter, info.Compensation), textW)
	pdf.CellFormat(textW, 3, tool, "", 1, "L", false, 0, "")

	if !info.Closed {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Open chain", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits width at the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
