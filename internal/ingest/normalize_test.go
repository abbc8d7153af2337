package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ana", CleanString("  Ana  "))
	assert.Equal(t, "", CleanString("nan"))
	assert.Equal(t, "", CleanString("NaT"))
	assert.Equal(t, "", CleanString("None"))
	assert.Equal(t, "", CleanString("<NA>"))
	assert.Equal(t, "", CleanString("   "))
	// idempotent
	assert.Equal(t, "Ana", CleanString(CleanString("  Ana  ")))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"sim", "S", "yes", "Y", "true", "T", "1"} {
		assert.Equal(t, true, ParseBool(v), "input %q", v)
	}
	for _, v := range []string{"nao", "não", "N", "no", "false", "F", "0"} {
		assert.Equal(t, false, ParseBool(v), "input %q", v)
	}
	for _, v := range []string{"", "talvez", "2", "nan"} {
		assert.Nil(t, ParseBool(v), "input %q", v)
	}
}

func TestParseDateTime(t *testing.T) {
	got := ParseDateTime("2026-01-15 10:30:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), got)

	got = ParseDateTime("15/01/2026")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), got)

	assert.Nil(t, ParseDateTime("2026-13-45"))
	assert.Nil(t, ParseDateTime("amanhã"))
	assert.Nil(t, ParseDateTime(""))
	assert.Nil(t, ParseDateTime("nan"))
}

func TestParseDateTruncatesTime(t *testing.T) {
	got := ParseDate("2026-01-15 10:30:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "nome", NormalizeHeader("  Nome  "))
	assert.Equal(t, "data_inscricao_dt", NormalizeHeader("Data-Inscricao DT"))
	assert.Equal(t, "empresa_conveniada", NormalizeHeader(`"Empresa Conveniada"`))
}

func TestMapHeaderDropsUnknownAndSystemColumns(t *testing.T) {
	m := MapHeader([]string{"Nome", "CPF", "coluna_misteriosa", "origem_upload", "data_ingestao"})
	assert.Len(t, m, 2)
	assert.Equal(t, stagingIndex["nome"], m[0])
	assert.Equal(t, stagingIndex["cpf"], m[1])
}

// Scenario: a 3-column file still produces the full target schema,
// with everything else defaulted by type.
func TestNormalizeRecordPartialColumns(t *testing.T) {
	mapping := MapHeader([]string{"Nome", "CPF", "Status"})
	ingestedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	row := NormalizeRecord(mapping, []string{" Ana Souza ", "12345678901", "NOVO"}, "UPLOAD_TESTE", ingestedAt)

	require.Len(t, row, len(StagingColumns))
	assert.Equal(t, "Ana Souza", row[stagingIndex["nome"]])
	assert.Equal(t, "12345678901", row[stagingIndex["cpf"]])
	assert.Equal(t, "NOVO", row[stagingIndex["status"]])

	// unmapped text columns default to empty string, typed columns to nil
	assert.Equal(t, "", row[stagingIndex["curso"]])
	assert.Nil(t, row[stagingIndex["matriculado"]])
	assert.Nil(t, row[stagingIndex["data_inscricao_dt"]])
	assert.Nil(t, row[stagingIndex["data_nascimento_d"]])

	// system columns are always stamped
	assert.Equal(t, "UPLOAD_TESTE", row[stagingIndex["origem_upload"]])
	assert.Equal(t, ingestedAt, row[stagingIndex["data_ingestao"]])
}

func TestNormalizeRecordCoercions(t *testing.T) {
	mapping := MapHeader([]string{"matriculado", "inscrito", "data_inscricao_dt", "obs"})
	row := NormalizeRecord(mapping, []string{"sim", "nao", "2026-01-15 08:00:00", " nan "}, "SRC", time.Now())

	assert.Equal(t, true, row[stagingIndex["matriculado"]])
	assert.Equal(t, false, row[stagingIndex["inscrito"]])
	assert.Equal(t, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), row[stagingIndex["data_inscricao_dt"]])
	assert.Equal(t, "", row[stagingIndex["obs"]])
}

// Normalization is idempotent: rendering a normalized row back to its
// canonical string forms and normalizing again yields the same row.
func TestNormalizeRecordIdempotent(t *testing.T) {
	header := []string{"nome", "matriculado", "data_inscricao_dt", "data_nascimento_d"}
	mapping := MapHeader(header)
	ingestedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	first := NormalizeRecord(mapping, []string{" Ana ", "SIM", "2026-01-15 08:00:00", "15/01/2000"}, "SRC", ingestedAt)

	render := []string{
		first[stagingIndex["nome"]].(string),
		"true", // canonical form of the stored boolean
		first[stagingIndex["data_inscricao_dt"]].(time.Time).Format("2006-01-02 15:04:05"),
		first[stagingIndex["data_nascimento_d"]].(time.Time).Format("2006-01-02"),
	}
	second := NormalizeRecord(mapping, render, "SRC", ingestedAt)

	assert.Equal(t, first, second)
}

func TestTemplateColumnsExcludeSystemColumns(t *testing.T) {
	cols := TemplateColumns()
	assert.NotContains(t, cols, "origem_upload")
	assert.NotContains(t, cols, "data_ingestao")
	assert.Contains(t, cols, "nome")
	assert.Contains(t, cols, "data_nascimento_d")
	assert.Len(t, cols, len(StagingColumns)-2)
}
