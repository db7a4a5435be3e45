package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"smbpulse/internal/dataprocessing"
)

// sheetName is the single sheet exports are written to.
const sheetName = "데이터"

// WriteXLSX streams a table as an Excel workbook with one sheet. Numeric
// columns are written as numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, table *dataprocessing.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := table.Headers()
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}

	for i := 0; i < table.RowCount(); i++ {
		for j, h := range headers {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			var value interface{}
			if v, ok := table.Float(i, h); ok && table.IsNumeric(h) {
				value = v
			} else {
				value, _ = table.Cell(i, h)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell row %d col %d: %w", i, j, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteXLSXFile writes a table to an Excel file, creating parent
// directories as needed.
func WriteXLSXFile(path string, table *dataprocessing.Table) error {
	slog.Info("writing XLSX export",
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

	return WriteXLSX(file, table)
}
