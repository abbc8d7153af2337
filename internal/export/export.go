// Package export encodes lead result sets as downloadable tabular
// files. Rows are written incrementally so large exports never hold
// the encoded output in memory.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/edupainel/leads-panel/internal/ingest"
)

// utf8BOM makes accented characters survive Excel's CSV import
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV streams a semicolon-delimited CSV with a UTF-8 BOM. An
// empty row set still produces a valid header-only file.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(repairRow(row)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX streams an XLSX workbook with a single sheet
func WriteXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := wb.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := writeXLSXRow(sw, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeXLSXRow(sw, i+2, repairRow(row)); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(sw *excelize.StreamWriter, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell coordinates: %w", err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write sheet row %d: %w", rowNum, err)
	}
	return nil
}

// WriteTemplateXLSX writes the header-only import template workbook
func WriteTemplateXLSX(w io.Writer) error {
	header := ingest.TemplateColumns()
	return WriteXLSX(w, "modelo_upload", header, nil)
}

func repairRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = ingest.RepairMojibake(cell)
	}
	return out
}
