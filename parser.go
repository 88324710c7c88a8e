/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inlet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"github.com/xuri/excelize/v2"

	"github.com/inlethq/inlet/model"
)

// headerScanDepth is how many leading rows are searched for the header.
// Real-world exports often prepend title or metadata rows before the true
// header row.
const headerScanDepth = 5

// headerMatchMinimum is the minimum number of expected column names a row
// must contain to be treated as the header.
const headerMatchMinimum = 3

// dateFormats are tried in order against string date cells; the first
// successful parse wins. Unparsable dates become nil and are handled by the
// row validator, not the parser.
var dateFormats = []string{
	"02/01/2006",
	"02-01-2006",
	time.RFC3339,
	"2006-01-02",
}

// excelEpoch is the zero day of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseError marks input that cannot be decoded as a spreadsheet at all:
// corrupt bytes, an unsupported format, a missing header, or zero data rows.
// It is fatal to the whole batch; nothing below it aborts one.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// ParseConfig describes the tabular shape one import flow expects.
type ParseConfig struct {
	// Columns are the logical column names to locate in the header row.
	Columns []string
	// DateColumns are normalized into InputRow.Dates.
	DateColumns []string
	// SheetHint selects a worksheet by name; empty means the first sheet.
	SheetHint string
}

// ParseFile decodes spreadsheet bytes into input rows. The file type is
// detected from the filename extension first and the content second, the
// header row is located by scanning the leading rows, and every cell is
// normalized (trimmed, blank cells emptied, date columns parsed). Row
// numbers are 1-based spreadsheet line numbers.
func ParseFile(data []byte, filename string, cfg ParseConfig) ([]model.InputRow, error) {
	if len(data) == 0 {
		return nil, &ParseError{Reason: "file is empty"}
	}

	grid, err := readGrid(data, filename, cfg.SheetHint)
	if err != nil {
		return nil, err
	}

	headerIdx, columnMap := detectHeader(grid, cfg.Columns)
	if headerIdx < 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("no header row found in the first %d rows", headerScanDepth)}
	}

	dateColumns := make(map[string]bool, len(cfg.DateColumns))
	for _, c := range cfg.DateColumns {
		dateColumns[c] = true
	}

	var rows []model.InputRow
	for i := headerIdx + 1; i < len(grid); i++ {
		record := grid[i]
		if isBlankRow(record) {
			continue
		}

		row := model.InputRow{
			RowNumber: i + 1,
			Values:    make(map[string]string, len(columnMap)),
			Dates:     make(map[string]*time.Time),
		}
		for column, idx := range columnMap {
			var raw string
			if idx < len(record) {
				raw = strings.TrimSpace(record[idx])
			}
			row.Values[column] = raw
			if dateColumns[column] {
				row.Dates[column] = parseDateCell(raw)
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &ParseError{Reason: "file contains no data rows"}
	}
	return rows, nil
}

// readGrid decodes the raw bytes into a row/column grid, dispatching on the
// detected file type.
func readGrid(data []byte, filename, sheetHint string) ([][]string, error) {
	switch detectFileType(data, filename) {
	case "text/csv":
		return readCSVGrid(data)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return readXLSXGrid(data, sheetHint)
	default:
		return nil, &ParseError{Reason: "unsupported file type; expected CSV or XLSX"}
	}
}

// detectFileType attempts detection by extension first and falls back to
// content analysis.
func detectFileType(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return "text/csv"
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if mimeType := mime.TypeByExtension(ext); strings.HasPrefix(mimeType, "text/csv") {
		return "text/csv"
	}

	// XLSX files are zip archives.
	if bytes.HasPrefix(data, []byte{'P', 'K', 0x03, 0x04}) {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "text/") && looksLikeCSV(data) {
		return "text/csv"
	}
	return contentType
}

// looksLikeCSV requires at least two lines where every non-empty line has the
// same comma-delimited field count.
func looksLikeCSV(data []byte) bool {
	lines := bytes.Split(data, []byte("\n"))
	if len(lines) < 2 {
		return false
	}

	fields := bytes.Count(lines[0], []byte(",")) + 1
	for _, line := range lines[1:] {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.Count(line, []byte(","))+1 != fields {
			return false
		}
	}
	return fields > 1
}

func readCSVGrid(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // metadata rows rarely match the header width
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("reading CSV: %v", err)}
	}
	return grid, nil
}

func readXLSXGrid(data []byte, sheetHint string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("opening workbook: %v", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}
	sheet := sheets[0]
	if sheetHint != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, sheetHint) {
				sheet = s
				break
			}
		}
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("reading sheet %q: %v", sheet, err)}
	}
	return grid, nil
}

// detectHeader scans the leading rows for one containing at least
// headerMatchMinimum of the expected column names and builds the logical
// column → index map from it. Returns -1 when no row qualifies.
func detectHeader(grid [][]string, expected []string) (int, map[string]int) {
	depth := headerScanDepth
	if len(grid) < depth {
		depth = len(grid)
	}

	for i := 0; i < depth; i++ {
		columnMap := mapColumns(grid[i], expected)
		if len(columnMap) >= headerMatchMinimum {
			return i, columnMap
		}
	}
	return -1, nil
}

// mapColumns matches each header cell against the expected logical names.
// The first cell claiming a logical name wins.
func mapColumns(header []string, expected []string) map[string]int {
	columnMap := make(map[string]int)
	for idx, cell := range header {
		for _, name := range expected {
			if _, taken := columnMap[name]; taken {
				continue
			}
			if headerMatches(cell, name) {
				columnMap[name] = idx
				break
			}
		}
	}
	return columnMap
}

// headerMatches compares a header cell to an expected column name,
// case-insensitively, treating spaces and underscores as equivalent, with a
// small Levenshtein tolerance for renamed-but-similar columns.
func headerMatches(cell, expected string) bool {
	normalize := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "_", " ")
		return strings.Join(strings.Fields(s), " ")
	}
	c, e := normalize(cell), normalize(expected)
	if c == "" {
		return false
	}
	if c == e {
		return true
	}
	if len(e) < 5 {
		return false
	}
	distance := levenshtein.DistanceForStrings([]rune(c), []rune(e), levenshtein.DefaultOptions)
	return distance <= 2
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseDateCell normalizes a date cell. Numeric values are treated as Excel
// date serials; strings are tried against the supported formats in order.
// Unparsable dates yield nil, never an error.
func parseDateCell(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial > 0 && serial < 300000 { // plausible spreadsheet date range
			t := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
			return &t
		}
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	return nil
}
