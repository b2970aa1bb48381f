package flotapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/adapter/cache"
	"github.com/seu-repo/fleetops/internal/domain"
)

// MetricsSource fetches the raw per-driver figures for one period
// window: dispatch/connectivity stats, the journey list and the toll
// charge total. Per-company toll account ids are memoized for the
// process lifetime so the extra resolution round trip happens once per
// company, not once per driver.
type MetricsSource struct {
	client       *Client
	tollAccounts *cache.Lookup[string]
	log          *zap.Logger
}

// NewMetricsSource creates a metrics source on top of client.
func NewMetricsSource(client *Client, log *zap.Logger) *MetricsSource {
	return &MetricsSource{
		client:       client,
		tollAccounts: cache.NewLookup[string]("toll_accounts", log),
		log:          log,
	}
}

func windowVars(companyID, driverID string, window domain.PeriodWindow) map[string]interface{} {
	return map[string]interface{}{
		"companyId": companyID,
		"driverId":  driverID,
		"from":      window.Start.UTC().Format(time.RFC3339Nano),
		"to":        window.End.UTC().Format(time.RFC3339Nano),
	}
}

// DriverStats fetches the stats window and the preference list in one
// request. A driver with no activity yields zero stats, not an error.
func (m *MetricsSource) DriverStats(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (domain.DriverStatsWindow, []domain.DriverPreference, error) {
	var data driverStatsData
	if err := m.client.Execute(ctx, driverStatsQuery, windowVars(companyID, driverID, window), &data); err != nil {
		return domain.DriverStatsWindow{}, nil, fmt.Errorf("failed to fetch stats for driver %s: %w", driverID, err)
	}

	prefs := make([]domain.DriverPreference, 0, len(data.DriverPreferences))
	for _, p := range data.DriverPreferences {
		prefs = append(prefs, domain.DriverPreference{Key: p.Key, Enabled: p.Enabled})
	}

	return data.DriverStats.toDomain(), prefs, nil
}

// DriverJourneys fetches the driver's full trip list for the window.
func (m *MetricsSource) DriverJourneys(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) ([]domain.Journey, error) {
	var data journeysData
	if err := m.client.Execute(ctx, driverJourneysQuery, windowVars(companyID, driverID, window), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch journeys for driver %s: %w", driverID, err)
	}

	journeys := make([]domain.Journey, 0, len(data.Journeys))
	for _, r := range data.Journeys {
		journeys = append(journeys, r.toDomain())
	}
	return journeys, nil
}

// DriverTollTotal fetches the driver's toll charge total for the
// window, in currency units. A company without a toll account, or a
// driver without charges, totals zero.
func (m *MetricsSource) DriverTollTotal(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (float64, error) {
	accountID, err := m.tollAccount(ctx, companyID)
	if err != nil {
		return 0, err
	}
	if accountID == "" {
		return 0, nil
	}

	vars := windowVars(companyID, driverID, window)
	delete(vars, "companyId")
	vars["accountId"] = accountID

	var data tollChargesData
	if err := m.client.Execute(ctx, tollChargesQuery, vars, &data); err != nil {
		return 0, fmt.Errorf("failed to fetch toll charges for driver %s: %w", driverID, err)
	}
	if data.TollCharges == nil {
		return 0, nil
	}
	return float64(data.TollCharges.TotalMinorUnits) / domain.EarningsMinorUnitDivisor, nil
}

// tollAccount resolves and memoizes the company's toll account id.
// Empty means the company has none.
func (m *MetricsSource) tollAccount(ctx context.Context, companyID string) (string, error) {
	result, err := m.tollAccounts.GetOrFetchBatch(ctx, []string{companyID}, func(ctx context.Context, missing []string) (map[string]string, error) {
		out := make(map[string]string, len(missing))
		for _, id := range missing {
			var data tollAccountData
			if err := m.client.Execute(ctx, tollAccountQuery, map[string]interface{}{"companyId": id}, &data); err != nil {
				return nil, err
			}
			if data.TollAccount != nil {
				out[id] = data.TollAccount.ID
			}
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return result[companyID], nil
}
