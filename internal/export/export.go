// Package export writes reports to files: tabular formats (CSV, XLSX) from
// Tables, tree formats (JSON, YAML) from the report value itself.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
	YAML Format = "yaml"
)

var Formats = []Format{CSV, XLSX, JSON, YAML}

func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yml" {
		return YAML, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, xlsx, json or yaml)", s)
}

// Table is one sheet of a tabular export.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

func (t *Table) Append(row ...any) {
	t.Rows = append(t.Rows, row)
}

// FileName builds "<user>-<report>-<label>.<ext>" with anything outside
// [A-Za-z0-9._-] replaced by '_'.
func FileName(user, report, label string, f Format) string {
	parts := []string{user, report}
	if label != "" {
		parts = append(parts, label)
	}
	return sanitize(strings.Join(parts, "-")) + "." + string(f)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}

// Write encodes a report in the given format. doc is used for JSON and YAML,
// tables for CSV and XLSX.
func Write(w io.Writer, f Format, doc any, tables []Table) error {
	switch f {
	case CSV:
		return WriteCSV(w, tables)
	case XLSX:
		return WriteXLSX(w, tables)
	case JSON:
		return WriteJSON(w, doc)
	case YAML:
		return WriteYAML(w, doc)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes the tables one after another. With more than one table each
// is preceded by a row holding its name and followed by an empty row.
func WriteCSV(w io.Writer, tables []Table) error {
	writer := csv.NewWriter(w)
	for i, t := range tables {
		if len(tables) > 1 {
			if i > 0 {
				if err := writer.Write([]string{}); err != nil {
					return fmt.Errorf("write separator: %w", err)
				}
			}
			if err := writer.Write([]string{t.Name}); err != nil {
				return fmt.Errorf("write table name: %w", err)
			}
		}
		if err := writer.Write(t.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, row := range t.Rows {
			record := make([]string, len(row))
			for j, v := range row {
				record[j] = CellString(v)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes one sheet per table.
func WriteXLSX(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("new style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := map[string]bool{}
	for i, t := range tables {
		name := sheetName(t.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}

		for col, header := range t.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(name, cell, header); err != nil {
				return fmt.Errorf("set header: %w", err)
			}
		}
		for r, row := range t.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(name, cell, xlsxValue(v)); err != nil {
					return fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}

		if len(t.Header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
			if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
				return fmt.Errorf("set header style: %w", err)
			}
			lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
			if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
				return fmt.Errorf("set column width: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

const maxSheetName = 31

// sheetName cleans a table name into a valid sheet name. Sheet names are
// limited to 31 characters and compared case-insensitively, so a name already
// used gets a numeric suffix.
func sheetName(name string, i int, used map[string]bool) string {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	name = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")").Replace(name)
	base := truncate(name, maxSheetName)
	name = base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func WriteJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, doc any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// CellString renders a table cell the way CSV output shows it.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return CellString(x)
	case fmt.Stringer:
		return x.String()
	}
	return v
}
