package ingest

import "strings"

// ColumnType selects the coercion applied to a staging column
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeBool
	TypeDateTime
	TypeDate
	TypeTimestamp
)

// Column is one field of the staging table's fixed schema
type Column struct {
	Name string
	Type ColumnType
}

// StagingColumns is the target schema every upload row is normalized
// to, in staging-table order. The last two columns are system-added at
// ingestion time, never read from the source file.
var StagingColumns = []Column{
	{"origem", TypeString},
	{"polo", TypeString},
	{"tipo_negocio", TypeString},
	{"curso", TypeString},
	{"modalidade", TypeString},
	{"nome", TypeString},
	{"cpf", TypeString},
	{"celular", TypeString},
	{"email", TypeString},
	{"endereco", TypeString},
	{"convenio", TypeString},
	{"empresa_conveniada", TypeString},
	{"voucher", TypeString},
	{"campanha", TypeString},
	{"consultor", TypeString},
	{"status", TypeString},
	{"obs", TypeString},
	{"peca_disparo", TypeString},
	{"texto_disparo", TypeString},
	{"consultor_disparo", TypeString},
	{"tipo_disparo", TypeString},
	{"matriculado", TypeBool},
	{"inscrito", TypeBool},
	{"data_envio_dt", TypeDateTime},
	{"data_inscricao_dt", TypeDateTime},
	{"data_disparo_dt", TypeDateTime},
	{"data_contato_dt", TypeDateTime},
	{"data_matricula_d", TypeDate},
	{"data_nascimento_d", TypeDate},
	{"origem_upload", TypeString},
	{"data_ingestao", TypeTimestamp},
}

// TemplateColumns returns the columns a user is expected to fill in an
// upload file, i.e. the staging schema minus the system columns.
func TemplateColumns() []string {
	out := make([]string, 0, len(StagingColumns)-2)
	for _, c := range StagingColumns {
		if c.Name == "origem_upload" || c.Name == "data_ingestao" {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

var stagingIndex = func() map[string]int {
	m := make(map[string]int, len(StagingColumns))
	for i, c := range StagingColumns {
		m[c.Name] = i
	}
	return m
}()

// NormalizeHeader canonicalizes a source column name: lowercase,
// trimmed, surrounding quotes removed, runs of spaces and hyphens
// collapsed to underscores.
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Trim(s, "\"'")
	s = strings.TrimSpace(s)
	var b strings.Builder
	pending := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '-' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapHeader resolves a raw header row to staging column indices.
// Unknown columns are dropped; the system columns are never mapped
// from the source even if present.
func MapHeader(header []string) map[int]int {
	m := make(map[int]int, len(header))
	for i, h := range header {
		name := NormalizeHeader(h)
		if name == "origem_upload" || name == "data_ingestao" {
			continue
		}
		if idx, ok := stagingIndex[name]; ok {
			m[i] = idx
		}
	}
	return m
}

// ColumnNames returns the staging column names in table order
func ColumnNames() []string {
	out := make([]string, len(StagingColumns))
	for i, c := range StagingColumns {
		out[i] = c.Name
	}
	return out
}
