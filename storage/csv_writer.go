package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sreality-agents/models"
)

// CSVWriter writes agent records to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per record.
func (c *CSVWriter) Write(records []*models.AgentRecord) error {
	for _, r := range records {
		row := []string{
			r.Source,
			r.Name,
			r.Phone,
			r.Email,
			r.Brokerage,
			r.Region,
			r.City,
			r.Specialization,
			r.DetailText,
			r.Links,
			strconv.Itoa(r.ListingCount),
			r.Breakdown,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// ReadCSV loads a previously exported CSV back into agent records, for the
// merge mode. Unknown columns are ignored; missing columns yield empty
// fields.
func ReadCSV(path string) ([]*models.AgentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return recordsFromRows(rows)
}

// recordsFromRows converts a header row plus data rows into agent records.
// Shared with the XLSX reader.
func recordsFromRows(rows [][]string) ([]*models.AgentRecord, error) {
	index := make(map[string]int)
	for i, name := range rows[0] {
		index[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]*models.AgentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		count, _ := strconv.Atoi(field(row, "listing_count"))
		records = append(records, &models.AgentRecord{
			Source:         field(row, "source"),
			Name:           field(row, "name"),
			Phone:          field(row, "phone"),
			Email:          field(row, "email"),
			Brokerage:      field(row, "brokerage"),
			Region:         field(row, "region"),
			City:           field(row, "city"),
			Specialization: field(row, "specialization"),
			DetailText:     field(row, "detail_text"),
			Links:          field(row, "links"),
			Breakdown:      field(row, "breakdown"),
			ListingCount:   count,
		})
	}
	return records, nil
}
