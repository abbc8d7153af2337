package leads

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(db, testPanel()), mock
}

var leadColumns = []string{
	"data_inscricao", "nome", "cpf", "celular", "email",
	"origem", "polo", "curso", "status", "consultor", "campanha", "obs",
}

func TestQueryScansRows(t *testing.T) {
	svc, mock := setupService(t)

	rows := sqlmock.NewRows(leadColumns).
		AddRow("2026-01-15", "Ana Souza", "12345678901", "11999990000", "ana@example.com",
			"FACEBOOK", "Centro", "Direito", "NOVO", "Carlos", "CAMP_JAN", "ligou 2x").
		AddRow("2026-01-14", "Bruno Lima", nil, nil, nil,
			"INDICACAO", nil, nil, nil, nil, nil, nil) // missing dimension lookups

	mock.ExpectQuery("SELECT DATE\\(f.data_inscricao\\) AS data_inscricao").
		WillReturnRows(rows)

	result, err := svc.Query(context.Background(), Filters{Limit: 500, SortField: "data_inscricao", SortDir: "DESC"})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Ana Souza", result[0].Nome)
	assert.Equal(t, "NOVO", result[0].Status)

	// fact rows with broken dimension references still come back,
	// with the dimension fields empty
	assert.Equal(t, "Bruno Lima", result[1].Nome)
	assert.Empty(t, result[1].Polo)
	assert.Empty(t, result[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryPropagatesWarehouseError(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery("SELECT DATE").WillReturnError(sql.ErrConnDone)

	_, err := svc.Query(context.Background(), Filters{Limit: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query leads")
}

func TestCount(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("NOVO").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := svc.Count(context.Background(), Filters{StatusList: []string{"NOVO"}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKPIs(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), MAX(DATE(f.data_inscricao))")).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(10, "2026-01-31"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.status, COUNT(*) AS cnt")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "cnt"}).
			AddRow("NOVO", 6).
			AddRow("CONTATADO", 3).
			AddRow(nil, 1))

	report, err := svc.KPIs(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(10), report.Total)
	assert.Equal(t, "2026-01-31", report.LastDate)
	require.NotNil(t, report.TopStatus)
	assert.Equal(t, "NOVO", report.TopStatus.Status)
	assert.Equal(t, int64(6), report.TopStatus.Count)
	require.Len(t, report.ByStatus, 3)
	assert.Empty(t, report.ByStatus[2].Status) // facts without a status dimension row

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKPIsEmptySet(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), MAX(DATE(f.data_inscricao))")).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.status, COUNT(*) AS cnt")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "cnt"}))

	report, err := svc.KPIs(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.LastDate)
	assert.Nil(t, report.TopStatus)
	assert.Empty(t, report.ByStatus)
}

func TestOptions(t *testing.T) {
	svc, mock := setupService(t)

	expect := func(values ...string) {
		rows := sqlmock.NewRows([]string{"v"})
		for _, v := range values {
			rows.AddRow(v)
		}
		mock.ExpectQuery("SELECT DISTINCT").WithArgs(250).WillReturnRows(rows)
	}

	expect("CONTATADO", "NOVO")   // status
	expect("Direito", "Medicina") // curso
	expect("Centro")              // polo
	expect("Carlos")              // consultor
	expect("FACEBOOK", "GOOGLE")  // origem

	options, err := svc.Options(context.Background(), 250)
	require.NoError(t, err)

	assert.Equal(t, []string{"CONTATADO", "NOVO"}, options["status"])
	assert.Equal(t, []string{"Direito", "Medicina"}, options["curso"])
	assert.Equal(t, []string{"FACEBOOK", "GOOGLE"}, options["origem"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionsPropagatesError(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery("SELECT DISTINCT").WillReturnError(sql.ErrConnDone)

	_, err := svc.Options(context.Background(), 250)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status options")
}
