// Package importer reads drawings and tool tables into the model. Drawings
// come from DXF; tool tables come from CSV or Excel with automatic delimiter
// detection, flexible column mapping and case-insensitive headers.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// Defaults for optional tool table columns.
const (
	defaultSpindleSpeed = 18000
	plungeDivisor       = 3
)

// ToolResult holds the results of a tool table import.
type ToolResult struct {
	Tools    []model.Tool
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name     int
	Diameter int
	Feed     int
	Plunge   int
	RPM      int
	Taper    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":     {"name", "tool", "label", "description", "desc"},
	"diameter": {"diameter", "dia", "d", "size", "tool diameter"},
	"feed":     {"feed", "feed rate", "feedrate", "f"},
	"plunge":   {"plunge", "plunge rate", "plungerate", "z feed"},
	"rpm":      {"rpm", "speed", "spindle", "spindle speed", "s"},
	"taper":    {"taper", "angle", "taper angle", "included angle", "v angle"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping Name, Diameter, Feed, Plunge, RPM, Taper and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Diameter: -1, Feed: -1, Plunge: -1, RPM: -1, Taper: -1}
	slots := map[string]*int{
		"name":     &mapping.Name,
		"diameter": &mapping.Diameter,
		"feed":     &mapping.Feed,
		"plunge":   &mapping.Plunge,
		"rpm":      &mapping.RPM,
		"taper":    &mapping.Taper,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if *slots[role] == -1 {
						*slots[role] = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Diameter: 1, Feed: 2, Plunge: 3, RPM: 4, Taper: 5}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber reads an optional numeric cell. ok is false only when the
// cell is present but not a number.
func parseNumber(row []string, idx int) (v float64, present, ok bool) {
	s := getCell(row, idx)
	if s == "" {
		return 0, false, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, true, err == nil
}

// parseRow extracts a Tool from a row using the given column mapping.
// Returns the tool, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, toolCount int) (model.Tool, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Tool %d", toolCount+1)
	}

	diameter, present, ok := parseNumber(row, mapping.Diameter)
	if !present {
		return model.Tool{}, fmt.Sprintf("%s: Missing diameter value", rowLabel), ""
	}
	if !ok {
		return model.Tool{}, fmt.Sprintf("%s: Invalid diameter '%s'", rowLabel, getCell(row, mapping.Diameter)), ""
	}

	feed, present, ok := parseNumber(row, mapping.Feed)
	if !present {
		return model.Tool{}, fmt.Sprintf("%s: Missing feed value", rowLabel), ""
	}
	if !ok {
		return model.Tool{}, fmt.Sprintf("%s: Invalid feed '%s'", rowLabel, getCell(row, mapping.Feed)), ""
	}

	if diameter <= 0 || feed <= 0 {
		return model.Tool{}, fmt.Sprintf("%s: Diameter and feed must be positive", rowLabel), ""
	}

	var warnings []string
	plunge, present, ok := parseNumber(row, mapping.Plunge)
	if !ok || plunge <= 0 {
		if present {
			warnings = append(warnings, fmt.Sprintf("invalid plunge '%s'", getCell(row, mapping.Plunge)))
		}
		plunge = feed / plungeDivisor
	}

	rpm, present, ok := parseNumber(row, mapping.RPM)
	if !ok || rpm <= 0 {
		if present {
			warnings = append(warnings, fmt.Sprintf("invalid spindle speed '%s'", getCell(row, mapping.RPM)))
		}
		rpm = defaultSpindleSpeed
	}

	tool := model.NewTool(name, diameter, feed, plunge, int(rpm))

	taper, present, ok := parseNumber(row, mapping.Taper)
	switch {
	case !ok || taper < 0 || taper >= 180:
		warnings = append(warnings, fmt.Sprintf("invalid taper angle '%s', using a straight cutter", getCell(row, mapping.Taper)))
	case present:
		tool.TaperAngle = taper
	}

	var warning string
	if len(warnings) > 0 {
		warning = fmt.Sprintf("%s: %s", rowLabel, strings.Join(warnings, "; "))
	}
	return tool, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportToolsCSV imports a tool table from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportToolsCSV(path string) ToolResult {
	result := ToolResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportToolsCSVFromReader imports a tool table from a CSV reader with a
// known delimiter.
func ImportToolsCSVFromReader(reader io.Reader, delimiter rune) ToolResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ToolResult{Errors: []string{err.Error()}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Cannot read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("File is empty")
	}
	return records, nil
}

// ImportToolsExcel imports a tool table from the first sheet of an Excel file.
func ImportToolsExcel(path string) ToolResult {
	result := ToolResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportTools picks the reader by file extension.
func ImportTools(path string) ToolResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportToolsExcel(path)
	}
	return ImportToolsCSV(path)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ToolResult {
	result := ToolResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Diameter == -1 {
			missing = append(missing, "Diameter")
		}
		if mapping.Feed == -1 {
			missing = append(missing, "Feed")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still has a non-numeric diameter cell
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		tool, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Tools))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Tools = append(result.Tools, tool)
	}

	return result
}
