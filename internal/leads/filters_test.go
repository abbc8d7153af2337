package leads

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListEncodings(t *testing.T) {
	// the same logical set in all three accepted encodings must
	// produce the same canonical list
	cases := map[string]url.Values{
		"repeated params": {"status": []string{"NOVO", "CONTATADO", "MATRICULADO"}},
		"pipe joined":     {"status_multi": []string{"NOVO || CONTATADO || MATRICULADO"}},
		"comma joined":    {"status_multi": []string{"NOVO, CONTATADO, MATRICULADO"}},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			f := ParseFilters(q, false)
			assert.Equal(t, []string{"NOVO", "CONTATADO", "MATRICULADO"}, f.StatusList)
		})
	}
}

func TestParseListDedupCaseInsensitive(t *testing.T) {
	q := url.Values{"curso": []string{"Direito", "DIREITO", " direito ", "Medicina"}}
	f := ParseFilters(q, false)
	assert.Equal(t, []string{"Direito", "Medicina"}, f.CursoList)
}

func TestParseListBlanksNeverAppear(t *testing.T) {
	q := url.Values{
		"polo":         []string{"", "  ", "Centro"},
		"origem_multi": []string{" || ||FACEBOOK|| "},
	}
	f := ParseFilters(q, false)
	assert.Equal(t, []string{"Centro"}, f.PoloList)
	assert.Equal(t, []string{"FACEBOOK"}, f.OrigemList)
}

func TestParseListAbsent(t *testing.T) {
	f := ParseFilters(url.Values{}, false)
	assert.Nil(t, f.StatusList)
	assert.Nil(t, f.CursoList)
}

func TestParseScalarBlankIsAbsent(t *testing.T) {
	q := url.Values{
		"nome":    []string{"   "},
		"cpf":     []string{""},
		"celular": []string{"  11999990000  "},
	}
	f := ParseFilters(q, false)
	assert.Empty(t, f.Nome)
	assert.Empty(t, f.CPF)
	assert.Equal(t, "11999990000", f.Celular)
}

func TestParseDates(t *testing.T) {
	q := url.Values{
		"data_ini": []string{"2026-01-01"},
		"data_fim": []string{"2026-01-31T23:59:59"}, // ISO prefix is enough
	}
	f := ParseFilters(q, false)
	require.NotNil(t, f.DataIni)
	require.NotNil(t, f.DataFim)
	assert.Equal(t, "2026-01-01", f.DataIni.Format("2006-01-02"))
	assert.Equal(t, "2026-01-31", f.DataFim.Format("2006-01-02"))
}

func TestParseDateInvalidIsAbsent(t *testing.T) {
	// invalid calendar dates degrade to "absent", never error
	for _, bad := range []string{"2026-13-45", "31/01/2026", "ontem", "2026"} {
		q := url.Values{"data_ini": []string{bad}}
		f := ParseFilters(q, false)
		assert.Nil(t, f.DataIni, "input %q", bad)
	}
}

func TestLimitClamps(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"10", MinLimit},
		{"999999", MaxLimit},
		{"200", 200},
	}
	for _, tc := range tests {
		f := ParseFilters(url.Values{"limit": []string{tc.in}}, false)
		assert.Equal(t, tc.want, f.Limit, "limit=%q", tc.in)
	}
}

func TestExportLimitClamps(t *testing.T) {
	f := ParseFilters(url.Values{}, true)
	assert.Equal(t, DefaultExportLimit, f.Limit)
	assert.Zero(t, f.Offset)

	f = ParseFilters(url.Values{"export_limit": []string{"10"}}, true)
	assert.Equal(t, MinExportLimit, f.Limit)

	f = ParseFilters(url.Values{"export_limit": []string{"9999999"}}, true)
	assert.Equal(t, MaxExportLimit, f.Limit)
}

func TestOffsetClamp(t *testing.T) {
	f := ParseFilters(url.Values{"offset": []string{"-5"}}, false)
	assert.Zero(t, f.Offset)

	f = ParseFilters(url.Values{"offset": []string{"150"}}, false)
	assert.Equal(t, 150, f.Offset)
}

func TestSortAllowList(t *testing.T) {
	f := ParseFilters(url.Values{"sort": []string{"nome"}, "dir": []string{"asc"}}, false)
	assert.Equal(t, "nome", f.SortField)
	assert.Equal(t, "ASC", f.SortDir)

	// anything outside the allow-list falls back to the date field
	f = ParseFilters(url.Values{"sort": []string{"1; DROP TABLE leads"}}, false)
	assert.Equal(t, "data_inscricao", f.SortField)
	assert.Equal(t, "DESC", f.SortDir)
}
