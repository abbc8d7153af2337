package ingest

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeMarkers are byte pairs that show up when UTF-8 text was
// decoded as Latin-1 somewhere upstream ("José" -> "JosÃ©").
var mojibakeMarkers = []string{"Ã", "Â", "â€", "Ê¼"}

func mojibakeScore(s string) int {
	n := 0
	for _, m := range mojibakeMarkers {
		n += strings.Count(s, m)
	}
	return n
}

// RepairMojibake undoes UTF-8-read-as-Latin-1 corruption when the
// round-trip strictly reduces the corruption-marker count. This is a
// heuristic: text it cannot improve passes through unchanged.
func RepairMojibake(s string) string {
	before := mojibakeScore(s)
	if before == 0 {
		return s
	}

	encoded, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(encoded) {
		return s
	}
	if mojibakeScore(encoded) < before {
		return encoded
	}
	return s
}
