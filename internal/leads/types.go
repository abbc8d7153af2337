package leads

// Lead is a flat projection of one fact row joined with its dimension
// lookups. Dimension fields are empty when the surrogate-key lookup has
// no match; the row itself is always returned (left outer joins).
type Lead struct {
	DataInscricao string `json:"data_inscricao"`
	Nome          string `json:"nome"`
	CPF           string `json:"cpf"`
	Celular       string `json:"celular"`
	Email         string `json:"email"`
	Origem        string `json:"origem"`
	Polo          string `json:"polo"`
	Curso         string `json:"curso"`
	Status        string `json:"status"`
	Consultor     string `json:"consultor"`
	Campanha      string `json:"campanha"`
	Obs           string `json:"obs"`
}

// Columns returns the export header in projection order
func Columns() []string {
	return []string{
		"data_inscricao", "nome", "cpf", "celular", "email",
		"origem", "polo", "curso", "status", "consultor",
		"campanha", "obs",
	}
}

// Values returns the lead's fields in the same order as Columns
func (l Lead) Values() []string {
	return []string{
		l.DataInscricao, l.Nome, l.CPF, l.Celular, l.Email,
		l.Origem, l.Polo, l.Curso, l.Status, l.Consultor,
		l.Campanha, l.Obs,
	}
}

// StatusCount is one entry of the per-status KPI breakdown
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"cnt"`
}

// KPIReport aggregates the filtered lead set
type KPIReport struct {
	Total     int64         `json:"total"`
	LastDate  string        `json:"last_date,omitempty"`
	TopStatus *StatusCount  `json:"top_status"`
	ByStatus  []StatusCount `json:"by_status"`
}
