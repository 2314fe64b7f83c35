// Package export writes toolpath plans to printable formats: a preview PDF
// with one page per chain, a QR-coded setup sheet and an Excel job report.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
	"github.com/piwi3910/SlabCAM/internal/pocket"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

// ErrNoPlans is returned by every exporter when there is nothing to write.
var ErrNoPlans = errors.New("export: no toolpath plans")

// chainColor represents an RGB stroke color for one chain.
type chainColor struct {
	R, G, B int
}

var chainColors = []chainColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// view maps drawing coordinates (Y up) onto a page box (Y down).
type view struct {
	box     geom.Rect
	scale   float64
	offsetX float64
	offsetY float64
	canvasW float64
	canvasH float64
}

// fitView scales box to the drawing area of a page, centered horizontally.
func fitView(box geom.Rect) view {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	w, h := math.Max(box.Width(), 1), math.Max(box.Height(), 1)
	scale := math.Min(drawWidth/w, drawHeight/h)

	v := view{box: box, scale: scale, canvasW: w * scale, canvasH: h * scale}
	v.offsetX = marginLeft + (drawWidth-v.canvasW)/2
	v.offsetY = drawAreaTop
	return v
}

func (v view) x(x float64) float64 {
	return v.offsetX + (x-v.box.Min.X)*v.scale
}

func (v view) y(y float64) float64 {
	return v.offsetY + (v.box.Max.Y-y)*v.scale
}

// ExportPDF writes a preview of the plans: an overview page with every chain
// and the clamp zones, one page per chain with its deepest layer and pocket
// rows, and a summary page.
func ExportPDF(filename, title string, plans []*toolpath.Plan, settings model.CutSettings) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderOverviewPage(pdf, title, plans, settings)

	for i, plan := range plans {
		if len(plan.Layers) == 0 {
			continue
		}
		pdf.AddPage()
		renderPlanPage(pdf, plan, settings, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, title, plans, settings)

	return pdf.OutputFileAndClose(filename)
}

// jobBounds covers every plan plus the clamp zones.
func jobBounds(plans []*toolpath.Plan, clamps []model.ClampZone) geom.Rect {
	box := geom.EmptyRect()
	for _, p := range plans {
		box = box.Union(p.Bounds())
	}
	for _, cz := range clamps {
		box = box.Extend(geom.Pt(cz.X, cz.Y)).Extend(geom.Pt(cz.X+cz.Width, cz.Y+cz.Height))
	}
	if box.Empty() {
		return geom.Rect{Max: geom.Pt(1, 1)}
	}
	return box
}

func renderOverviewPage(pdf *fpdf.Fpdf, title string, plans []*toolpath.Plan, settings model.CutSettings) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Job: "+title, "", 0, "L", false, 0, "")

	box := jobBounds(plans, settings.ClampZones)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Chains: %d | Extent: %.1f x %.1f mm | Tool: %s %.1f mm | Depth: %.1f mm",
		len(plans), box.Width(), box.Height(), settings.Tool.Name, settings.Tool.Diameter, settings.CutDepth)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	v := fitView(box)
	drawStock(pdf, v)
	drawClampZones(pdf, v, settings.ClampZones)

	for i, plan := range plans {
		if len(plan.Layers) == 0 {
			continue
		}
		col := chainColors[i%len(chainColors)]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.4)
		drawRing(pdf, v, plan.Layers[len(plan.Layers)-1].Contour)
	}

	drawDimensionAnnotations(pdf, v)
	drawChainLegend(pdf, plans, v.offsetY+v.canvasH+5)
}

func renderPlanPage(pdf *fpdf.Fpdf, plan *toolpath.Plan, settings model.CutSettings, num int) {
	deepest := plan.Layers[len(plan.Layers)-1]

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	kind := "open"
	if plan.Closed {
		kind = "closed"
	}
	title := fmt.Sprintf("Chain %d: %s (%s, %s)", num, plan.ChainID, kind, settings.Compensation)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Layers: %d | Final Z: %.2f | Path length: %.1f mm | Moves: %d",
		len(plan.Layers), deepest.Z, plan.Length(), len(plan.Moves()))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	v := fitView(plan.Bounds())
	drawStock(pdf, v)

	if deepest.Pocket != nil {
		drawPocket(pdf, v, deepest.Pocket)
	}

	col := chainColors[(num-1)%len(chainColors)]
	pdf.SetDrawColor(col.R, col.G, col.B)
	pdf.SetLineWidth(0.5)
	drawRing(pdf, v, deepest.Contour)
	drawStartMarker(pdf, v, deepest.Contour)

	drawDimensionAnnotations(pdf, v)
	drawLayerList(pdf, plan, v.offsetY+v.canvasH+5)
}

// drawStock fills the drawing extent in a wood color.
func drawStock(pdf *fpdf.Fpdf, v view) {
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(v.offsetX, v.offsetY, v.canvasW, v.canvasH, "FD")
}

// drawRing strokes every line and arc of a ring.
func drawRing(pdf *fpdf.Fpdf, v view, r *path.Ring) {
	if r == nil {
		return
	}
	for _, item := range r.Items {
		switch p := item.(type) {
		case *geom.Line:
			pdf.Line(v.x(p.P0.X), v.y(p.P0.Y), v.x(p.P1.X), v.y(p.P1.Y))
		case *geom.Arc:
			c := p.Center()
			rad := p.Radius * v.scale
			// fpdf sweeps counter-clockwise from degStart to degEnd
			start, end := p.StartAngle, p.StartAngle+p.Sweep
			if p.Sweep < 0 {
				start, end = end, start
			}
			pdf.Arc(v.x(c.X), v.y(c.Y), rad, rad, 0, start, end, "D")
		}
	}
}

// drawStartMarker marks where the ring's cut begins.
func drawStartMarker(pdf *fpdf.Fpdf, v view, r *path.Ring) {
	if r == nil || r.Len() == 0 {
		return
	}
	p0, _ := r.At(0).Ends()
	pdf.SetFillColor(200, 0, 0)
	pdf.Circle(v.x(p0.X), v.y(p0.Y), 1.2, "F")
}

// drawPocket draws every pocket span as a thin line.
func drawPocket(pdf *fpdf.Fpdf, v view, pk *pocket.Pocket) {
	pdf.SetDrawColor(90, 90, 90)
	pdf.SetLineWidth(0.15)
	for _, row := range pk.Rows {
		for _, s := range row.Spans {
			pdf.Line(v.x(s.X0), v.y(row.Y), v.x(s.X1), v.y(row.Y))
		}
	}
}

// drawClampZones renders the fixture areas the cutter must avoid.
func drawClampZones(pdf *fpdf.Fpdf, v view, zones []model.ClampZone) {
	for _, cz := range zones {
		zx := v.x(cz.X)
		zy := v.y(cz.Y + cz.Height)
		zw := cz.Width * v.scale
		zh := cz.Height * v.scale

		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(zx, zy, zw, zh, "FD")

		drawHatchPattern(pdf, zx, zy, zw, zh)

		if zw > 20 && zh > 8 {
			label := cz.Label
			if label == "" {
				label = "CLAMP"
			}
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(180, 0, 0)
			labelW := pdf.GetStringWidth(label)
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to indicate exclusion zones.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, v view) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", v.box.Width())
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(v.offsetX+(v.canvasW-wLabelW)/2, v.offsetY+v.canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f mm", v.box.Height())
	pdf.TransformBegin()
	pdf.TransformRotate(90, v.offsetX-3, v.offsetY+v.canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(v.offsetX-3-hLabelW/2, v.offsetY+v.canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawChainLegend renders a compact legend of chains at the bottom of the page.
func drawChainLegend(pdf *fpdf.Fpdf, plans []*toolpath.Plan, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Chains:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, plan := range plans {
		col := chainColors[i%len(chainColors)]
		label := fmt.Sprintf("%d: %s (%.0f mm)", i+1, plan.ChainID, plan.Length())
		if !plan.Closed {
			label += " open"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// drawLayerList lists the depth and move count of every layer.
func drawLayerList(pdf *fpdf.Fpdf, plan *toolpath.Plan, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Layers:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	for i, l := range plan.Layers {
		label := fmt.Sprintf("%d: Z%.2f, %d moves", i+1, l.Z, len(l.Moves))
		if l.Pocket != nil {
			label += fmt.Sprintf(", %d rows", l.Pocket.Len())
		}
		labelW := pdf.GetStringWidth(label) + 4
		if xPos+labelW > maxX {
			startY += 4
			xPos = marginLeft
		}
		pdf.SetXY(xPos, startY)
		pdf.CellFormat(labelW, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with per-chain statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, title string, plans []*toolpath.Plan, settings model.CutSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Toolpath Summary: "+title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Chain Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 35, 25, 25, 35, 35, 50}
	headers := []string{"#", "Chain", "Closed", "Layers", "Length", "Moves", "Extent"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	var totalLength float64
	var totalMoves int
	for i, plan := range plans {
		box := plan.Bounds()
		moves := len(plan.Moves())
		totalLength += plan.Length()
		totalMoves += moves

		rowData := []string{
			fmt.Sprintf("%d", i+1),
			plan.ChainID,
			yesNo(plan.Closed),
			fmt.Sprintf("%d", len(plan.Layers)),
			fmt.Sprintf("%.1f mm", plan.Length()),
			fmt.Sprintf("%d", moves),
			fmt.Sprintf("%.1f x %.1f mm", box.Width(), box.Height()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6

		if y > pageHeight-marginBottom-70 {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(100, 6, fmt.Sprintf("... %d more", len(plans)-i-1), "", 0, "L", false, 0, "")
			y += 6
			break
		}
	}

	y += 6
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cut Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Tool", fmt.Sprintf("%s, %.2f mm, %.0f deg taper", settings.Tool.Name, settings.Tool.Diameter, settings.Tool.TaperAngle)},
		{"Feed / Plunge", fmt.Sprintf("%.0f / %.0f mm/min", settings.Tool.FeedRate, settings.Tool.PlungeRate)},
		{"Cut Depth", fmt.Sprintf("%.2f mm", settings.CutDepth)},
		{"Pass Depth", fmt.Sprintf("%.2f mm", settings.PassDepth)},
		{"Stock Top", fmt.Sprintf("%.2f mm", settings.StockTop)},
		{"Safe Z", fmt.Sprintf("%.2f mm", settings.SafeZ)},
		{"Compensation", settings.Compensation.String()},
		{"Pocket", yesNo(settings.Pocket)},
		{"Total Length", fmt.Sprintf("%.1f mm", totalLength)},
		{"Total Moves", fmt.Sprintf("%d", totalMoves)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(120, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabCAM", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
