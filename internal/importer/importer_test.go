package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Name,Diameter,Feed\n6mm,6,1500\n3mm,3,900\n", ','},
		{"semicolon", "Name;Diameter;Feed\n6mm;6;1500\n3mm;3;900\n", ';'},
		{"tab", "Name\tDiameter\tFeed\n6mm\t6\t1500\n3mm\t3\t900\n", '\t'},
		{"pipe", "Name|Diameter|Feed\n6mm|6|1500\n3mm|3|900\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_Headers(t *testing.T) {
	mapping, ok := DetectColumns([]string{"RPM", "Tool", "Feed Rate", "Dia", "Taper Angle", "Plunge"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Name: 1, Diameter: 3, Feed: 2, Plunge: 5, RPM: 0, Taper: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"6mm", "6", "1500"})
	if ok {
		t.Error("expected no header")
	}
	if mapping.Name != 0 || mapping.Diameter != 1 || mapping.Feed != 2 || mapping.Plunge != 3 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportToolsCSVFromReader_WithHeaders(t *testing.T) {
	data := "Name,Diameter,Feed,Plunge,RPM,Taper\n" +
		"6mm End Mill,6,1500,500,18000,\n" +
		"V-Bit,0.2,800,200,16000,60\n"
	result := ImportToolsCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result.Tools))
	}

	mill := result.Tools[0]
	if mill.Name != "6mm End Mill" || mill.Diameter != 6 || mill.FeedRate != 1500 || mill.PlungeRate != 500 {
		t.Errorf("unexpected tool %+v", mill)
	}
	if mill.SpindleSpeed != 18000 || mill.TaperAngle != 0 {
		t.Errorf("unexpected tool %+v", mill)
	}
	if mill.ID == "" {
		t.Error("expected a generated ID")
	}

	if result.Tools[1].TaperAngle != 60 {
		t.Errorf("expected taper 60, got %.1f", result.Tools[1].TaperAngle)
	}
}

func TestImportToolsCSVFromReader_Defaults(t *testing.T) {
	result := ImportToolsCSVFromReader(strings.NewReader("Diameter;Feed\n3;900\n"), ';')

	if len(result.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d (errors: %v)", len(result.Tools), result.Errors)
	}
	tool := result.Tools[0]
	if tool.Name != "Tool 1" {
		t.Errorf("expected generated name, got %q", tool.Name)
	}
	if tool.PlungeRate != 300 {
		t.Errorf("expected plunge 300, got %.1f", tool.PlungeRate)
	}
	if tool.SpindleSpeed != defaultSpindleSpeed {
		t.Errorf("expected default spindle speed, got %d", tool.SpindleSpeed)
	}
}

func TestImportToolsCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportToolsCSVFromReader(strings.NewReader("6mm,6,1500\n3mm,3,900,250\n"), ',')

	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d (errors: %v)", len(result.Tools), result.Errors)
	}
	if result.Tools[1].PlungeRate != 250 {
		t.Errorf("expected plunge 250, got %.1f", result.Tools[1].PlungeRate)
	}
}

func TestImportToolsCSVFromReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid diameter", "Name,Diameter,Feed\nBad,abc,100\n"},
		{"missing feed", "Name,Diameter,Feed\nBad,6,\n"},
		{"negative diameter", "Name,Diameter,Feed\nBad,-6,100\n"},
		{"missing column", "Name,Diameter\nBad,6\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ImportToolsCSVFromReader(strings.NewReader(tt.data), ',')
			if len(result.Errors) == 0 {
				t.Error("expected an error")
			}
			if len(result.Tools) != 0 {
				t.Errorf("expected no tools, got %d", len(result.Tools))
			}
		})
	}
}

func TestImportToolsCSVFromReader_Warnings(t *testing.T) {
	data := "Name,Diameter,Feed,Plunge,RPM,Taper\nOdd,6,900,fast,-1,200\n"
	result := ImportToolsCSVFromReader(strings.NewReader(data), ',')

	if len(result.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d (errors: %v)", len(result.Tools), result.Errors)
	}
	tool := result.Tools[0]
	if tool.PlungeRate != 300 || tool.SpindleSpeed != defaultSpindleSpeed || tool.TaperAngle != 0 {
		t.Errorf("expected defaults after invalid values, got %+v", tool)
	}

	var rowWarning string
	for _, w := range result.Warnings {
		if strings.HasPrefix(w, "Line 2:") {
			rowWarning = w
		}
	}
	for _, want := range []string{"plunge", "spindle speed", "taper"} {
		if !strings.Contains(rowWarning, want) {
			t.Errorf("expected warning about %s, got %q", want, rowWarning)
		}
	}
}

func TestImportToolsCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Name,Diameter,Feed\nGood,6,1500\nBad,x,1500\n\nAlso Good,3,900\n"
	result := ImportToolsCSVFromReader(strings.NewReader(data), ',')

	if len(result.Tools) != 2 {
		t.Errorf("expected 2 tools, got %d", len(result.Tools))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3:") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportToolsCSV_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.csv")
	if err := os.WriteFile(path, []byte("Name;Diameter;Feed\n6mm;6;1500\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportTools(path)
	if len(result.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d (errors: %v)", len(result.Tools), result.Errors)
	}
	if len(result.Warnings) == 0 || result.Warnings[0] != "Detected semicolon delimiter" {
		t.Errorf("expected delimiter warning first, got %v", result.Warnings)
	}
}

func TestImportToolsCSV_FileErrors(t *testing.T) {
	if result := ImportToolsCSV("/nonexistent/tools.csv"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportToolsCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportToolsExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Feed", "Tool", "Diameter", "Angle"},
		{1500, "6mm", 6, 0},
		{800, "V-Bit", 0.2, 90},
	})

	result := ImportTools(path)
	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result.Tools))
	}
	if result.Tools[1].Name != "V-Bit" || result.Tools[1].Diameter != 0.2 || result.Tools[1].TaperAngle != 90 {
		t.Errorf("unexpected tool %+v", result.Tools[1])
	}
}

func TestImportToolsExcel_Errors(t *testing.T) {
	if result := ImportToolsExcel("/nonexistent/tools.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := createTestExcel(t, [][]interface{}{
		{"Name", "Diameter", "Feed"},
		{"Bad", "abc", 100},
	})
	if result := ImportToolsExcel(path); len(result.Errors) == 0 {
		t.Error("expected error for invalid diameter")
	}
}
