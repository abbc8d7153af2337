package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedFormat is returned for extensions other than
// .csv/.xlsx/.xls.
var ErrUnsupportedFormat = errors.New("unsupported file format: send CSV or XLSX")

// ErrNoRows is returned when an upload parses cleanly but carries no
// data rows (e.g. a header-only file).
var ErrNoRows = errors.New("upload has no valid rows to import")

// Table is a parsed upload: a header row plus raw string cells
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseUpload dispatches on the file extension. The reader is consumed
// fully; uploads are already size-capped by the HTTP layer.
func ParseUpload(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return parseCSV(data)
	case ".xlsx", ".xls":
		return parseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// csvDelimiters are tried in priority order. Semicolon first: it is
// the dominant delimiter in decimal-comma locales, where a comma parse
// silently shreds every row.
var csvDelimiters = []rune{';', ',', '\t', '|'}

func parseCSV(data []byte) (*Table, error) {
	text := decodeText(data)

	var fallback *Table
	for _, delim := range csvDelimiters {
		reader := csv.NewReader(strings.NewReader(text))
		reader.Comma = delim
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		records, err := reader.ReadAll()
		if err != nil || len(records) == 0 {
			continue
		}
		if len(records[0]) > 1 {
			return &Table{Header: records[0], Rows: records[1:]}, nil
		}
		if fallback == nil {
			fallback = &Table{Header: records[0], Rows: records[1:]}
		}
	}

	// A legitimate one-column CSV parses identically under every
	// delimiter; keep the first successful parse.
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("failed to parse CSV with any known delimiter")
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 when
// the bytes are not valid UTF-8.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func parseXLSX(r io.Reader) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}
