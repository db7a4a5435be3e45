// Package exporter writes normalized tables out as CSV or XLSX for
// download and offline use.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"smbpulse/internal/dataprocessing"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV streams a table as UTF-8 CSV with a BOM prefix. Numeric columns
// are written with their coerced values so "1,234" style cells come out as
// plain numbers.
func WriteCSV(w io.Writer, table *dataprocessing.Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	headers := table.Headers()
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i := 0; i < table.RowCount(); i++ {
		record := make([]string, len(headers))
		for j, h := range headers {
			if v, ok := table.Float(i, h); ok && table.IsNumeric(h) {
				record[j] = strconv.FormatFloat(v, 'f', -1, 64)
				continue
			}
			cell, _ := table.Cell(i, h)
			record[j] = cell
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes a table to a CSV file, creating parent directories as
// needed.
func WriteCSVFile(path string, table *dataprocessing.Table) error {
	slog.Info("writing CSV export",
		slog.String("path", path),
		slog.Int("rows", table.RowCount()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteCSV(file, table)
}
