package sync

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/observability/telemetry"
	"github.com/seu-repo/fleetops/internal/ports"
)

// Aggregator reduces one driver's period window into a summary record:
// stats, journey list and toll total are fetched in parallel, the
// driver's vehicle is resolved through the asset catalog, and the
// derived rates are computed from the raw figures.
//
// The semaphore caps in-flight driver fetches across every company in
// the run, so total outbound pressure does not scale with company
// count.
type Aggregator struct {
	source ports.DriverMetricsSource
	assets ports.AssetResolver
	sem    *semaphore.Weighted
	log    *zap.Logger
}

// NewAggregator creates an aggregator allowing at most maxConcurrent
// drivers in flight at once.
func NewAggregator(source ports.DriverMetricsSource, assets ports.AssetResolver, maxConcurrent int, log *zap.Logger) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 200
	}
	return &Aggregator{
		source: source,
		assets: assets,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		log:    log,
	}
}

// driverParts holds the three independent fetch results for one driver.
type driverParts struct {
	stats    domain.DriverStatsWindow
	prefs    []domain.DriverPreference
	journeys []domain.Journey
	toll     float64
}

// fetchParts runs the three sub-fetches in parallel. Any failure
// bubbles up; a partial summary is never produced.
func (a *Aggregator) fetchParts(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (driverParts, error) {
	var parts driverParts

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, prefs, err := a.source.DriverStats(ctx, companyID, driverID, window)
		if err != nil {
			return err
		}
		parts.stats, parts.prefs = stats, prefs
		return nil
	})
	g.Go(func() error {
		journeys, err := a.source.DriverJourneys(ctx, companyID, driverID, window)
		if err != nil {
			return err
		}
		parts.journeys = journeys
		return nil
	})
	g.Go(func() error {
		toll, err := a.source.DriverTollTotal(ctx, companyID, driverID, window)
		if err != nil {
			return err
		}
		parts.toll = toll
		return nil
	})

	if err := g.Wait(); err != nil {
		return driverParts{}, err
	}
	return parts, nil
}

// mostRecentAssetID picks the driver's current vehicle from the journey
// list. The platform returns journeys newest first.
func mostRecentAssetID(journeys []domain.Journey) string {
	for _, j := range journeys {
		if j.AssetID != "" {
			return j.AssetID
		}
	}
	return ""
}

// reduce assembles the summary from fetched parts. Absent remote fields
// arrive as zero values and stay zero; denominators of zero yield zero
// rates.
func reduce(companyID string, driver domain.Driver, parts driverParts, asset *domain.Asset) domain.DriverPeriodSummary {
	connectedSeconds := parts.stats.AssignedSeconds + parts.stats.AvailableSeconds
	connectedHours := float64(connectedSeconds) / 3600

	occupancy := 0.0
	if connectedSeconds > 0 {
		occupancy = float64(parts.stats.AssignedSeconds) / float64(connectedSeconds)
	}

	rejected := parts.stats.Rejected()
	acceptance := 0.0
	if denom := parts.stats.Accepted + rejected + parts.stats.Missed; denom > 0 {
		acceptance = float64(parts.stats.Accepted) / float64(denom) * 100
	}

	var cashMinor, appMinor int64
	completed := 0
	for _, j := range parts.journeys {
		if j.Completed() {
			completed++
		}
		if j.PaymentMethod == domain.PaymentMethodCash {
			cashMinor += j.EarningsMinorUnits
		} else {
			appMinor += j.EarningsMinorUnits
		}
	}

	// Minor units are converted exactly once, and the total is the sum
	// of the two converted figures so the split always adds up.
	cash := float64(cashMinor) / domain.EarningsMinorUnitDivisor
	app := float64(appMinor) / domain.EarningsMinorUnitDivisor
	total := cash + app

	perHour := 0.0
	if connectedHours > 0 {
		perHour = total / connectedHours
	}

	s := domain.DriverPeriodSummary{
		CompanyID:     companyID,
		DriverID:      driver.ID,
		Name:          driver.Name,
		Surname:       driver.Surname,
		Email:         driver.Email,
		NationalID:    driver.NationalID,
		LicenseNumber: driver.LicenseNumber,
		MobileNumber:  driver.MobileNumber,

		ConnectedHours: connectedHours,
		OccupancyRate:  occupancy,
		AcceptanceRate: acceptance,
		Score:          parts.stats.Score,

		OfferedTrips:   parts.stats.Offered,
		AcceptedTrips:  parts.stats.Accepted,
		MissedTrips:    parts.stats.Missed,
		RejectedTrips:  rejected,
		CompletedTrips: completed,

		CashEarnings:    cash,
		AppEarnings:     app,
		TotalEarnings:   total,
		EarningsPerHour: perHour,
		TollTotal:       parts.toll,

		CashEnabled: domain.CashEnabled(parts.prefs),
	}
	if asset != nil {
		s.Vehicle = asset.DisplayName()
		s.VehiclePlate = asset.RegPlate
	}
	return s
}

// ComputeSummary computes one driver's summary. Any sub-fetch failure
// is returned to the caller; skip-and-count policy lives in the
// orchestrator.
func (a *Aggregator) ComputeSummary(ctx context.Context, companyID string, driver domain.Driver, window domain.PeriodWindow) (*domain.DriverPeriodSummary, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	parts, err := a.fetchParts(ctx, companyID, driver.ID, window)
	a.sem.Release(1)
	if err != nil {
		return nil, err
	}

	var asset *domain.Asset
	if id := mostRecentAssetID(parts.journeys); id != "" {
		resolved, err := a.assets.ResolveAssets(ctx, companyID, []string{id})
		if err != nil {
			return nil, err
		}
		asset = resolved[id]
	}

	s := reduce(companyID, driver, parts, asset)
	return &s, nil
}

// ComputeBatch computes summaries for one fixed-size batch of drivers.
// Per-driver fetches run in parallel under the global semaphore; all
// vehicles first seen in the batch are then resolved in one
// alias-batched request. A failing driver is recorded and skipped, the
// rest of the batch is unaffected.
func (a *Aggregator) ComputeBatch(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure) {
	type fetchResult struct {
		parts driverParts
		err   error
	}
	results := make([]fetchResult, len(drivers))

	var wg sync.WaitGroup
	for i := range drivers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := a.sem.Acquire(ctx, 1); err != nil {
				results[i] = fetchResult{err: err}
				return
			}
			defer a.sem.Release(1)
			parts, err := a.fetchParts(ctx, companyID, drivers[i].ID, window)
			results[i] = fetchResult{parts: parts, err: err}
		}(i)
	}
	wg.Wait()

	// One batched lookup covers every vehicle referenced by the batch.
	var assetIDs []string
	seen := make(map[string]bool)
	for i := range results {
		if results[i].err != nil {
			continue
		}
		if id := mostRecentAssetID(results[i].parts.journeys); id != "" && !seen[id] {
			seen[id] = true
			assetIDs = append(assetIDs, id)
		}
	}

	assets := map[string]*domain.Asset{}
	var assetErr error
	if len(assetIDs) > 0 {
		assets, assetErr = a.assets.ResolveAssets(ctx, companyID, assetIDs)
	}

	summaries := make([]domain.DriverPeriodSummary, 0, len(drivers))
	var failures []domain.DriverFailure
	for i, driver := range drivers {
		err := results[i].err
		if err == nil && assetErr != nil && mostRecentAssetID(results[i].parts.journeys) != "" {
			// Vehicle resolution is a sub-fetch too: its failure fails
			// the drivers that needed it, not the whole batch.
			err = assetErr
		}
		if err != nil {
			a.log.Warn("Driver summary failed",
				zap.String("company_id", companyID),
				zap.String("driver_id", driver.ID),
				zap.Error(err),
			)
			failures = append(failures, domain.DriverFailure{
				CompanyID: companyID,
				DriverID:  driver.ID,
				Reason:    err.Error(),
			})
			continue
		}
		summaries = append(summaries, reduce(companyID, driver, results[i].parts, assets[mostRecentAssetID(results[i].parts.journeys)]))
	}

	telemetry.DriversSyncedTotal.Add(float64(len(summaries)))
	telemetry.DriverFailuresTotal.Add(float64(len(failures)))

	return summaries, failures
}
