package leads

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Read-side and export-side limit clamps. The export cap is larger
// because exports skip pagination entirely.
const (
	DefaultLimit = 500
	MinLimit     = 50
	MaxLimit     = 5000

	DefaultExportLimit = 200000
	MinExportLimit     = 1000
	MaxExportLimit     = 500000
)

// Filters is the canonical filter set built once per request. A nil
// date or empty string/slice means "no restriction", never "match
// nothing". Immutable after ParseFilters returns.
type Filters struct {
	StatusList    []string
	OrigemList    []string
	CursoList     []string
	PoloList      []string
	ConsultorList []string

	Nome    string
	CPF     string
	Celular string
	Email   string

	DataIni *time.Time
	DataFim *time.Time

	Limit     int
	Offset    int
	SortField string
	SortDir   string
}

// sortFields is the allow-list of sort keys. Values are real column
// expressions over the join aliases; anything outside this map falls
// back to the registration date, which blocks injection through the
// sort parameter.
var sortFields = map[string]string{
	"data_inscricao": "", // resolved to the configured date expression
	"nome":           "p.nome",
	"curso":          "c.curso",
	"polo":           "po.polo",
	"status":         "s.status",
	"consultor":      "co.consultor",
	"origem":         "f.origem",
}

// ParseFilters translates raw query parameters into a Filters value.
// Pure function of its input; malformed numbers and dates degrade to
// defaults rather than erroring.
func ParseFilters(q url.Values, forExport bool) Filters {
	f := Filters{
		StatusList:    parseList(q, "status"),
		OrigemList:    parseList(q, "origem"),
		CursoList:     parseList(q, "curso"),
		PoloList:      parseList(q, "polo"),
		ConsultorList: parseList(q, "consultor"),

		Nome:    strings.TrimSpace(q.Get("nome")),
		CPF:     strings.TrimSpace(q.Get("cpf")),
		Celular: strings.TrimSpace(q.Get("celular")),
		Email:   strings.TrimSpace(q.Get("email")),

		DataIni: parseDate(q.Get("data_ini")),
		DataFim: parseDate(q.Get("data_fim")),
	}

	if forExport {
		f.Limit = clampInt(q.Get("export_limit"), DefaultExportLimit, MinExportLimit, MaxExportLimit)
	} else {
		f.Limit = clampInt(q.Get("limit"), DefaultLimit, MinLimit, MaxLimit)
		f.Offset = clampInt(q.Get("offset"), 0, 0, 1<<31-1)
	}

	f.SortField = "data_inscricao"
	if s := strings.ToLower(strings.TrimSpace(q.Get("sort"))); s != "" {
		if _, ok := sortFields[s]; ok {
			f.SortField = s
		}
	}
	f.SortDir = "DESC"
	if strings.EqualFold(strings.TrimSpace(q.Get("dir")), "asc") {
		f.SortDir = "ASC"
	}

	return f
}

// parseList accepts three encodings, tried in order:
//   - ?name=A&name=B        (repeated parameter)
//   - ?name_multi=A||B||C   (delimiter-joined)
//   - ?name_multi=A,B,C     (comma-joined)
//
// Duplicates are removed case-insensitively, keeping the first-seen
// casing. A lone ?name=A also lands here, so the legacy single-value
// form folds into a one-element list.
func parseList(q url.Values, name string) []string {
	var items []string
	for _, v := range q[name] {
		if s := strings.TrimSpace(v); s != "" {
			items = append(items, s)
		}
	}

	if len(items) == 0 {
		raw := strings.TrimSpace(q.Get(name + "_multi"))
		if raw != "" {
			sep := "||"
			if !strings.Contains(raw, sep) {
				sep = ","
			}
			for _, v := range strings.Split(raw, sep) {
				if s := strings.TrimSpace(v); s != "" {
					items = append(items, s)
				}
			}
		}
	}

	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, x := range items {
		k := strings.ToUpper(x)
		if !seen[k] {
			seen[k] = true
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseDate reads an ISO YYYY-MM-DD prefix. Anything unparseable is
// treated as absent, never as an error.
func parseDate(v string) *time.Time {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func clampInt(v string, def, min, max int) int {
	s := strings.TrimSpace(v)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
