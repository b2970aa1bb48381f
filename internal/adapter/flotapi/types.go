package flotapi

import (
	"time"

	"github.com/seu-repo/fleetops/internal/domain"
)

// Typed response envelopes, one per query shape, so field presence is
// checked by the compiler instead of optional-chaining at runtime.

// Pagination is the page envelope shared by the platform's list queries.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

type companiesData struct {
	Companies []companyRecord `json:"companies"`
}

type companyRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r companyRecord) toDomain() domain.Company {
	return domain.Company{ID: r.ID, Name: r.Name}
}

type driversPageData struct {
	Drivers driversPage `json:"drivers"`
}

type driversPage struct {
	Pagination
	Records []driverRecord `json:"records"`
}

type driverRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Email         string `json:"email"`
	NationalID    string `json:"nationalId"`
	LicenseNumber string `json:"licenseNumber"`
	MobileNumber  string `json:"mobileNumber"`
	Disabled      bool   `json:"disabled"`
	ActivatedAt   string `json:"activatedAt"`
}

func (r driverRecord) toDomain() domain.Driver {
	d := domain.Driver{
		ID:            r.ID,
		Name:          r.Name,
		Surname:       r.Surname,
		Email:         r.Email,
		NationalID:    r.NationalID,
		LicenseNumber: r.LicenseNumber,
		MobileNumber:  r.MobileNumber,
		Disabled:      r.Disabled,
	}
	if r.ActivatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.ActivatedAt); err == nil {
			d.ActivatedAt = &t
		}
	}
	return d
}

type driverStatsData struct {
	DriverStats       *statsRecord `json:"driverStats"`
	DriverPreferences []prefRecord `json:"driverPreferences"`
}

type statsRecord struct {
	Accepted         int     `json:"accepted"`
	Missed           int     `json:"missed"`
	Offered          int     `json:"offered"`
	AssignedSeconds  int64   `json:"assignedSeconds"`
	AvailableSeconds int64   `json:"availableSeconds"`
	Score            float64 `json:"score"`
}

func (r *statsRecord) toDomain() domain.DriverStatsWindow {
	if r == nil {
		// Drivers with no activity in the window have no stats record.
		return domain.DriverStatsWindow{}
	}
	return domain.DriverStatsWindow{
		Accepted:         r.Accepted,
		Missed:           r.Missed,
		Offered:          r.Offered,
		AssignedSeconds:  r.AssignedSeconds,
		AvailableSeconds: r.AvailableSeconds,
		Score:            r.Score,
	}
}

type prefRecord struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

type journeysData struct {
	Journeys []journeyRecord `json:"journeys"`
}

type journeyRecord struct {
	ID                 string `json:"id"`
	AssetID            string `json:"assetId"`
	FinishReason       string `json:"finishReason"`
	PaymentMethod      string `json:"paymentMethod"`
	EarningsMinorUnits int64  `json:"earningsMinorUnits"`
}

func (r journeyRecord) toDomain() domain.Journey {
	return domain.Journey{
		ID:                 r.ID,
		AssetID:            r.AssetID,
		FinishReason:       r.FinishReason,
		PaymentMethod:      r.PaymentMethod,
		EarningsMinorUnits: r.EarningsMinorUnits,
	}
}

type tollAccountData struct {
	TollAccount *struct {
		ID string `json:"id"`
	} `json:"tollAccount"`
}

type tollChargesData struct {
	TollCharges *struct {
		TotalMinorUnits int64 `json:"totalMinorUnits"`
	} `json:"tollCharges"`
}

type assetRecord struct {
	ID       string `json:"id"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	RegPlate string `json:"regPlate"`
}

func (r assetRecord) toDomain() domain.Asset {
	return domain.Asset{ID: r.ID, Make: r.Make, Model: r.Model, RegPlate: r.RegPlate}
}
