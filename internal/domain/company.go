package domain

import "time"

// Company represents a tenant (sub-account) on the remote fleet platform.
// Drivers and vehicles are always scoped to one company.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Driver is a read-only mirror of a platform driver record. It is never
// mutated locally.
type Driver struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Surname       string     `json:"surname"`
	Email         string     `json:"email,omitempty"`
	NationalID    string     `json:"national_id,omitempty"`
	LicenseNumber string     `json:"license_number,omitempty"`
	MobileNumber  string     `json:"mobile_number,omitempty"`
	Disabled      bool       `json:"disabled"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
}

// FullName returns "Name Surname" for logs and reports.
func (d Driver) FullName() string {
	if d.Surname == "" {
		return d.Name
	}
	return d.Name + " " + d.Surname
}

// PreferenceCashPayment marks a driver as accepting cash-paid trips.
const PreferenceCashPayment = "cash_payment"

// DriverPreference is one entry of a driver's platform preference list.
type DriverPreference struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// CashEnabled reports whether the preference list enables cash payments.
func CashEnabled(prefs []DriverPreference) bool {
	for _, p := range prefs {
		if p.Key == PreferenceCashPayment {
			return p.Enabled
		}
	}
	return false
}
