package ingest

import (
	"strings"
	"time"
)

// naSentinels are spreadsheet-tool artifacts that mean "no value"
var naSentinels = map[string]bool{
	"nan":  true,
	"nat":  true,
	"none": true,
	"null": true,
	"<na>": true,
}

// CleanString trims and strips NA sentinels. Idempotent.
func CleanString(v string) string {
	s := strings.TrimSpace(v)
	if naSentinels[strings.ToLower(s)] {
		return ""
	}
	return s
}

// ParseBool maps the accepted vocabulary to a boolean. Anything
// outside it, including blank, yields nil (SQL NULL).
func ParseBool(v string) interface{} {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "1", "sim", "s", "yes", "y":
		return true
	case "false", "f", "0", "nao", "não", "n", "no":
		return false
	default:
		return nil
	}
}

// datetimeLayouts are tried in order for datetime-typed columns.
// Brazilian day-first forms come after ISO so unambiguous input parses
// the same way twice.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseDateTime parses a datetime cell; invalid input yields nil,
// never an error.
func ParseDateTime(v string) interface{} {
	s := CleanString(v)
	if s == "" {
		return nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return nil
}

// ParseDate parses a date cell, truncating any time component
func ParseDate(v string) interface{} {
	parsed := ParseDateTime(v)
	if parsed == nil {
		return nil
	}
	t := parsed.(time.Time)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeRecord coerces one source row into the full staging schema:
// every target column present, in target order, type-appropriate
// defaults for anything the source did not provide.
func NormalizeRecord(mapping map[int]int, record []string, source string, ingestedAt time.Time) []interface{} {
	row := make([]interface{}, len(StagingColumns))
	for i, col := range StagingColumns {
		if col.Type == TypeString {
			row[i] = ""
		}
	}

	for srcIdx, dstIdx := range mapping {
		if srcIdx >= len(record) {
			continue
		}
		raw := record[srcIdx]
		switch StagingColumns[dstIdx].Type {
		case TypeBool:
			row[dstIdx] = ParseBool(raw)
		case TypeDateTime:
			row[dstIdx] = ParseDateTime(raw)
		case TypeDate:
			row[dstIdx] = ParseDate(raw)
		default:
			row[dstIdx] = CleanString(raw)
		}
	}

	row[stagingIndex["origem_upload"]] = source
	row[stagingIndex["data_ingestao"]] = ingestedAt
	return row
}
