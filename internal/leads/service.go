package leads

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edupainel/leads-panel/internal/config"
)

// Service answers read queries against the warehouse's star schema.
// The *sql.DB is injected so tests can use sqlmock.
type Service struct {
	db *sql.DB
	b  builder
}

// NewService creates a read service bound to a warehouse connection
func NewService(db *sql.DB, panel config.PanelConfig) *Service {
	return &Service{db: db, b: builder{panel: panel}}
}

// Query returns the leads matching the filter set, ordered and
// paginated. Warehouse errors propagate to the caller; no retry.
func (s *Service) Query(ctx context.Context, f Filters) ([]Lead, error) {
	query, args := s.b.selectQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var result []Lead
	for rows.Next() {
		var (
			l    Lead
			cols [12]sql.NullString
		)
		if err := rows.Scan(
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5],
			&cols[6], &cols[7], &cols[8], &cols[9], &cols[10], &cols[11],
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		l.DataInscricao = cols[0].String
		l.Nome = cols[1].String
		l.CPF = cols[2].String
		l.Celular = cols[3].String
		l.Email = cols[4].String
		l.Origem = cols[5].String
		l.Polo = cols[6].String
		l.Curso = cols[7].String
		l.Status = cols[8].String
		l.Consultor = cols[9].String
		l.Campanha = cols[10].String
		l.Obs = cols[11].String
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading lead rows: %w", err)
	}

	return result, nil
}

// Count returns the total matching the filter set, ignoring
// limit/offset.
func (s *Service) Count(ctx context.Context, f Filters) (int64, error) {
	query, args := s.b.countQuery(f)

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// KPIs aggregates the filtered set: total, most recent registration
// date, and a per-status breakdown with the top status pulled out.
func (s *Service) KPIs(ctx context.Context, f Filters) (*KPIReport, error) {
	query, args := s.b.kpiQuery(f)

	var (
		total    int64
		lastDate sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &lastDate); err != nil {
		return nil, fmt.Errorf("failed to query kpis: %w", err)
	}

	report := &KPIReport{Total: total, LastDate: lastDate.String, ByStatus: []StatusCount{}}

	query, args = s.b.statusBreakdownQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status sql.NullString
			cnt    int64
		)
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
		}
		report.ByStatus = append(report.ByStatus, StatusCount{Status: status.String, Count: cnt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading status breakdown: %w", err)
	}

	if len(report.ByStatus) > 0 {
		top := report.ByStatus[0]
		report.TopStatus = &top
	}

	return report, nil
}

// optionDimensions maps each picker name to the dimension table and
// column that feed it. Origem lives on the fact table itself.
func (s *Service) optionDimensions() []struct{ name, table, column string } {
	p := s.b.panel
	return []struct{ name, table, column string }{
		{"status", p.DimStatus, "status"},
		{"curso", p.DimCurso, "curso"},
		{"polo", p.DimPolo, "polo"},
		{"consultor", p.DimConsultor, "consultor"},
		{"origem", p.FactTable, "origem"},
	}
}

// Options returns the distinct known values per filterable dimension.
// Every call re-queries the warehouse; the schema is small and the
// panel tolerates the round-trips.
func (s *Service) Options(ctx context.Context, limit int) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, dim := range s.optionDimensions() {
		values, err := s.distinct(ctx, dim.table, dim.column, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s options: %w", dim.name, err)
		}
		out[dim.name] = values
	}
	return out, nil
}

func (s *Service) distinct(ctx context.Context, table, column string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.b.distinctQuery(table, column), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid && v.String != "" {
			values = append(values, v.String)
		}
	}
	return values, rows.Err()
}

// DebugCount counts all rows in the fact table, unfiltered
func (s *Service) DebugCount(ctx context.Context) (int64, error) {
	return s.Count(ctx, Filters{SortField: "data_inscricao", SortDir: "DESC", Limit: DefaultLimit})
}

// DebugSample returns a handful of raw lead rows for smoke-testing the
// warehouse wiring.
func (s *Service) DebugSample(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.Query(ctx, Filters{SortField: "data_inscricao", SortDir: "DESC", Limit: limit})
}
