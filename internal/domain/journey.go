package domain

// Journey finish reasons as reported by the platform.
const (
	FinishReasonDroppedOff = "dropped_off"
	FinishReasonNoShow     = "no_show"
	FinishReasonCancelled  = "cancelled"
)

// Journey payment methods.
const (
	PaymentMethodCash = "cash"
	PaymentMethodApp  = "app"
)

// EarningsMinorUnitDivisor converts platform earnings amounts (minor
// units, e.g. cents) into currency units. The conversion happens exactly
// once, when journeys are reduced into a summary.
const EarningsMinorUnitDivisor = 100

// Journey is one trip as reported by the platform for a driver. Journeys
// are transient: consumed once per aggregation, never persisted.
type Journey struct {
	ID                 string `json:"id"`
	AssetID            string `json:"asset_id"`
	FinishReason       string `json:"finish_reason"`
	PaymentMethod      string `json:"payment_method"`
	EarningsMinorUnits int64  `json:"earnings_minor_units"`
}

// Completed reports whether the journey ended with a passenger drop-off.
func (j Journey) Completed() bool {
	return j.FinishReason == FinishReasonDroppedOff
}

// DriverStatsWindow holds the platform's connectivity and dispatch
// counters for one driver over one period window.
type DriverStatsWindow struct {
	Accepted         int     `json:"accepted"`
	Missed           int     `json:"missed"`
	Offered          int     `json:"offered"`
	AssignedSeconds  int64   `json:"assigned_seconds"`
	AvailableSeconds int64   `json:"available_seconds"`
	Score            float64 `json:"score"`
}

// Rejected derives the rejected-offer count. The platform only reports
// offered/accepted/missed, so rejected is the remainder, floored at zero.
func (s DriverStatsWindow) Rejected() int {
	r := s.Offered - s.Accepted - s.Missed
	if r < 0 {
		return 0
	}
	return r
}
