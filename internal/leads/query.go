package leads

import (
	"fmt"
	"strings"

	"github.com/edupainel/leads-panel/internal/config"
)

// builder constructs parameterized SQL against the star schema. Table
// names come from configuration, never from request input; only
// placeholder arguments carry user data.
type builder struct {
	panel config.PanelConfig
}

// dateExpr is the canonical registration-date expression. The fact
// column behind it is configurable because historical loads disagree
// on the column name.
func (b builder) dateExpr() string {
	return fmt.Sprintf("DATE(f.%s)", b.panel.DateField)
}

func (b builder) fromClause() string {
	p := b.panel
	return fmt.Sprintf(
		"FROM %s f"+
			" LEFT JOIN %s p ON p.sk_pessoa = f.sk_pessoa"+
			" LEFT JOIN %s c ON c.sk_curso = f.sk_curso"+
			" LEFT JOIN %s po ON po.sk_polo = f.sk_polo"+
			" LEFT JOIN %s co ON co.sk_consultor = f.sk_consultor"+
			" LEFT JOIN %s s ON s.sk_status = f.sk_status",
		p.FactTable, p.DimPessoa, p.DimCurso, p.DimPolo, p.DimConsultor, p.DimStatus,
	)
}

// whereClause renders the conjunctive predicate list. Absent filters
// contribute no predicate at all, so an empty multi-value filter can
// never restrict the result set.
func (b builder) whereClause(f Filters) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString("WHERE 1=1")

	addList := func(expr string, vals []string) {
		if len(vals) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf(" AND UPPER(%s) IN (%s)", expr, placeholders(len(vals))))
		for _, v := range vals {
			args = append(args, strings.ToUpper(v))
		}
	}

	addList("s.status", f.StatusList)
	addList("f.origem", f.OrigemList)
	addList("c.curso", f.CursoList)
	addList("po.polo", f.PoloList)
	addList("co.consultor", f.ConsultorList)

	if f.CPF != "" {
		sb.WriteString(" AND p.cpf = ?")
		args = append(args, f.CPF)
	}
	if f.Celular != "" {
		sb.WriteString(" AND p.celular = ?")
		args = append(args, f.Celular)
	}
	if f.Email != "" {
		sb.WriteString(" AND p.email = ?")
		args = append(args, f.Email)
	}
	if f.Nome != "" {
		sb.WriteString(" AND UPPER(p.nome) LIKE ?")
		args = append(args, "%"+strings.ToUpper(f.Nome)+"%")
	}
	if f.DataIni != nil {
		sb.WriteString(" AND " + b.dateExpr() + " >= ?")
		args = append(args, f.DataIni.Format("2006-01-02"))
	}
	if f.DataFim != nil {
		sb.WriteString(" AND " + b.dateExpr() + " <= ?")
		args = append(args, f.DataFim.Format("2006-01-02"))
	}

	return sb.String(), args
}

// selectQuery builds the full lead projection with ordering and
// pagination applied.
func (b builder) selectQuery(f Filters) (string, []interface{}) {
	where, args := b.whereClause(f)

	orderExpr := sortFields[f.SortField]
	if orderExpr == "" {
		orderExpr = b.dateExpr()
	}
	dir := f.SortDir
	if dir != "ASC" {
		dir = "DESC"
	}

	sql := fmt.Sprintf(
		"SELECT %s AS data_inscricao,"+
			" p.nome, p.cpf, p.celular, p.email,"+
			" f.origem, po.polo, c.curso, s.status, co.consultor,"+
			" f.campanha, f.obs"+
			" %s %s ORDER BY %s %s LIMIT ? OFFSET ?",
		b.dateExpr(), b.fromClause(), where, orderExpr, dir,
	)
	args = append(args, f.Limit, f.Offset)
	return sql, args
}

// countQuery counts matching fact rows, ignoring pagination
func (b builder) countQuery(f Filters) (string, []interface{}) {
	where, args := b.whereClause(f)
	return fmt.Sprintf("SELECT COUNT(*) %s %s", b.fromClause(), where), args
}

// kpiQuery returns total + most recent registration date
func (b builder) kpiQuery(f Filters) (string, []interface{}) {
	where, args := b.whereClause(f)
	return fmt.Sprintf("SELECT COUNT(*), MAX(%s) %s %s", b.dateExpr(), b.fromClause(), where), args
}

// statusBreakdownQuery groups the filtered set by status label
func (b builder) statusBreakdownQuery(f Filters) (string, []interface{}) {
	where, args := b.whereClause(f)
	return fmt.Sprintf(
		"SELECT s.status, COUNT(*) AS cnt %s %s GROUP BY s.status ORDER BY cnt DESC",
		b.fromClause(), where,
	), args
}

// distinctQuery lists the distinct non-blank values of one dimension
// column, for filter pickers.
func (b builder) distinctQuery(table, column string) string {
	return fmt.Sprintf(
		"SELECT DISTINCT %s AS v FROM %s WHERE %s IS NOT NULL AND TRIM(%s) != '' ORDER BY v LIMIT ?",
		column, table, column, column,
	)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
