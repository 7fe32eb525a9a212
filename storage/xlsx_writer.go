package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sreality-agents/models"
)

const sheetName = "Agents"

// maxColWidth caps auto-sized columns so link dumps don't stretch the sheet.
const maxColWidth = 60

// XLSXWriter exports agent records to a formatted Excel workbook: bold
// header, auto-sized columns, clickable listing links.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter prepares a writer targeting the given path. Intermediate
// directories are created automatically.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path}, nil
}

// Write renders all records into a new workbook and saves it.
func (w *XLSXWriter) Write(records []*models.AgentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E8F4F8"}},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: link style: %w", err)
	}

	widths := make([]int, len(columns))
	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheetName, cell, name); err != nil {
			return fmt.Errorf("xlsx: write header: %w", err)
		}
		widths[i] = len(name)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("xlsx: style header: %w", err)
	}

	linksCol := columnIndex("links")

	for rowIdx, r := range records {
		row := rowValues(r)
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("xlsx: write cell %s: %w", cell, err)
			}
			if n := cellWidth(value); n > widths[colIdx] {
				widths[colIdx] = n
			}
		}

		// Make the links cell clickable on its first URL.
		if first := firstLink(r.Links); first != "" {
			cell, _ := excelize.CoordinatesToCellName(linksCol+1, rowIdx+2)
			if err := f.SetCellHyperLink(sheetName, cell, first, "External"); err != nil {
				return fmt.Errorf("xlsx: hyperlink %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, linkStyle); err != nil {
				return fmt.Errorf("xlsx: style %s: %w", cell, err)
			}
		}
	}

	for i, width := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		w := width + 2
		if w > maxColWidth {
			w = maxColWidth
		}
		if err := f.SetColWidth(sheetName, name, name, float64(w)); err != nil {
			return fmt.Errorf("xlsx: column width: %w", err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", w.path, err)
	}
	return nil
}

// Close is a no-op; the workbook is saved whole in Write.
func (w *XLSXWriter) Close() error {
	return nil
}

// ReadXLSX loads a previously exported workbook back into agent records,
// for the merge mode. The first sheet is used.
func ReadXLSX(path string) ([]*models.AgentRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %q has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return recordsFromRows(rows)
}

func rowValues(r *models.AgentRecord) []any {
	return []any{
		r.Source, r.Name, r.Phone, r.Email, r.Brokerage, r.Region, r.City,
		r.Specialization, r.DetailText, r.Links, r.ListingCount, r.Breakdown,
	}
}

func columnIndex(name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}

func cellWidth(value any) int {
	return len(fmt.Sprintf("%v", value))
}

func firstLink(joined string) string {
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "http") {
			return part
		}
	}
	return ""
}
