package ports

import (
	"context"
	"encoding/json"

	"github.com/seu-repo/fleetops/internal/domain"
)

// TokenSource hands out a currently-valid platform token, transparently
// re-authenticating when the cached one is near expiry.
type TokenSource interface {
	ValidToken(ctx context.Context) (string, error)
}

// GraphQLExecutor executes queries against the platform GraphQL endpoint.
type GraphQLExecutor interface {
	// Execute runs one query and decodes the response's data field into out.
	Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error

	// ExecuteBatchedByAlias merges one sub-query per id into a single
	// aliased request and returns the raw result per id. Failures inside
	// one alias drop only that alias; ids absent from the response are
	// simply missing from the returned map.
	ExecuteBatchedByAlias(ctx context.Context, ids []string, buildSub func(alias, id string) string) (map[string]json.RawMessage, error)
}

// FleetEnumerator lists the tenants visible to the account and their
// drivers.
type FleetEnumerator interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	ListDrivers(ctx context.Context, companyID string) ([]domain.Driver, error)
}

// DriverMetricsSource fetches the raw per-driver figures a summary is
// reduced from.
type DriverMetricsSource interface {
	DriverStats(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (domain.DriverStatsWindow, []domain.DriverPreference, error)
	DriverJourneys(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) ([]domain.Journey, error)
	DriverTollTotal(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (float64, error)
}

// AssetResolver resolves vehicle assets, batching and caching lookups.
// Unknown asset ids resolve to a nil entry, never to an error.
type AssetResolver interface {
	ResolveAssets(ctx context.Context, companyID string, assetIDs []string) (map[string]*domain.Asset, error)
}

// SummaryComputer reduces one driver's window into a summary record.
type SummaryComputer interface {
	ComputeSummary(ctx context.Context, companyID string, driver domain.Driver, window domain.PeriodWindow) (*domain.DriverPeriodSummary, error)
}

// BatchComputer computes summaries for a batch of drivers of one
// company. Per-driver failures are collected, never returned as an
// error: a bad driver must not abort its batch.
type BatchComputer interface {
	ComputeBatch(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure)
}
