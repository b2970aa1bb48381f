package domain

import "time"

// DriverPeriodSummary is the normalized per-driver output record of a
// sync run. It is a snapshot: produced fresh on every run and never
// mutated after construction. JSON tags follow the commercial naming
// used by the back office.
type DriverPeriodSummary struct {
	CompanyID string `json:"company_id"`
	DriverID  string `json:"driver_id"`

	Name          string `json:"nombre"`
	Surname       string `json:"apellido"`
	Email         string `json:"email,omitempty"`
	NationalID    string `json:"documento,omitempty"`
	LicenseNumber string `json:"licencia,omitempty"`
	MobileNumber  string `json:"celular,omitempty"`

	Vehicle      string `json:"vehiculo,omitempty"`
	VehiclePlate string `json:"matricula,omitempty"`

	ConnectedHours float64 `json:"horas_conectado"`
	OccupancyRate  float64 `json:"tasa_ocupacion"`
	AcceptanceRate float64 `json:"tasa_aceptacion"`
	Score          float64 `json:"puntaje"`

	OfferedTrips   int `json:"viajes_ofrecidos"`
	AcceptedTrips  int `json:"viajes_aceptados"`
	MissedTrips    int `json:"viajes_perdidos"`
	RejectedTrips  int `json:"viajes_rechazados"`
	CompletedTrips int `json:"viajes_completados"`

	CashEarnings    float64 `json:"cobro_efectivo"`
	AppEarnings     float64 `json:"cobro_app"`
	TotalEarnings   float64 `json:"ganancia_total"`
	EarningsPerHour float64 `json:"ganancia_por_hora"`
	TollTotal       float64 `json:"peajes"`

	CashEnabled bool `json:"acepta_efectivo"`
}

// DriverFailure records one driver whose summary could not be computed.
// The run continues without it.
type DriverFailure struct {
	CompanyID string `json:"company_id"`
	DriverID  string `json:"driver_id"`
	Reason    string `json:"reason"`
}

// CompanyFailure records one company whose driver listing failed. All of
// that company's drivers are excluded from the run.
type CompanyFailure struct {
	CompanyID string `json:"company_id"`
	Reason    string `json:"reason"`
}

// RunReport is the full result of one sync run: the summaries that were
// computed plus every per-entity failure, so callers can tell partial
// results apart from complete ones.
type RunReport struct {
	RunID           string                `json:"run_id"`
	Window          PeriodWindow          `json:"window"`
	Summaries       []DriverPeriodSummary `json:"summaries"`
	Failures        []DriverFailure       `json:"failures,omitempty"`
	CompanyFailures []CompanyFailure      `json:"company_failures,omitempty"`
	StartedAt       time.Time             `json:"started_at"`
	FinishedAt      time.Time             `json:"finished_at"`
}

// FailureCount returns the number of drivers excluded from the result.
func (r *RunReport) FailureCount() int {
	return len(r.Failures)
}
