// Package mocks provides hand-written test doubles for the service
// ports. Each mock exposes func fields so tests can script behavior
// per call.
package mocks

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/seu-repo/fleetops/internal/domain"
)

// MockTokenSource implements ports.TokenSource.
type MockTokenSource struct {
	ValidTokenFunc func(ctx context.Context) (string, error)
	Calls          atomic.Int64
}

func (m *MockTokenSource) ValidToken(ctx context.Context) (string, error) {
	m.Calls.Add(1)
	if m.ValidTokenFunc != nil {
		return m.ValidTokenFunc(ctx)
	}
	return "test-token", nil
}

// MockGraphQLExecutor implements ports.GraphQLExecutor.
type MockGraphQLExecutor struct {
	ExecuteFunc        func(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error
	ExecuteBatchedFunc func(ctx context.Context, ids []string, buildSub func(alias, id string) string) (map[string]json.RawMessage, error)
}

func (m *MockGraphQLExecutor) Execute(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, query, vars, out)
	}
	return nil
}

func (m *MockGraphQLExecutor) ExecuteBatchedByAlias(ctx context.Context, ids []string, buildSub func(alias, id string) string) (map[string]json.RawMessage, error) {
	if m.ExecuteBatchedFunc != nil {
		return m.ExecuteBatchedFunc(ctx, ids, buildSub)
	}
	return map[string]json.RawMessage{}, nil
}

// MockFleetEnumerator implements ports.FleetEnumerator.
type MockFleetEnumerator struct {
	ListCompaniesFunc func(ctx context.Context) ([]domain.Company, error)
	ListDriversFunc   func(ctx context.Context, companyID string) ([]domain.Driver, error)
}

func (m *MockFleetEnumerator) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	if m.ListCompaniesFunc != nil {
		return m.ListCompaniesFunc(ctx)
	}
	return nil, nil
}

func (m *MockFleetEnumerator) ListDrivers(ctx context.Context, companyID string) ([]domain.Driver, error) {
	if m.ListDriversFunc != nil {
		return m.ListDriversFunc(ctx, companyID)
	}
	return nil, nil
}

// MockDriverMetricsSource implements ports.DriverMetricsSource.
type MockDriverMetricsSource struct {
	DriverStatsFunc     func(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (domain.DriverStatsWindow, []domain.DriverPreference, error)
	DriverJourneysFunc  func(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) ([]domain.Journey, error)
	DriverTollTotalFunc func(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (float64, error)
}

func (m *MockDriverMetricsSource) DriverStats(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (domain.DriverStatsWindow, []domain.DriverPreference, error) {
	if m.DriverStatsFunc != nil {
		return m.DriverStatsFunc(ctx, companyID, driverID, window)
	}
	return domain.DriverStatsWindow{}, nil, nil
}

func (m *MockDriverMetricsSource) DriverJourneys(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) ([]domain.Journey, error) {
	if m.DriverJourneysFunc != nil {
		return m.DriverJourneysFunc(ctx, companyID, driverID, window)
	}
	return nil, nil
}

func (m *MockDriverMetricsSource) DriverTollTotal(ctx context.Context, companyID, driverID string, window domain.PeriodWindow) (float64, error) {
	if m.DriverTollTotalFunc != nil {
		return m.DriverTollTotalFunc(ctx, companyID, driverID, window)
	}
	return 0, nil
}

// MockAssetResolver implements ports.AssetResolver.
type MockAssetResolver struct {
	ResolveAssetsFunc func(ctx context.Context, companyID string, assetIDs []string) (map[string]*domain.Asset, error)
	Calls             atomic.Int64
}

func (m *MockAssetResolver) ResolveAssets(ctx context.Context, companyID string, assetIDs []string) (map[string]*domain.Asset, error) {
	m.Calls.Add(1)
	if m.ResolveAssetsFunc != nil {
		return m.ResolveAssetsFunc(ctx, companyID, assetIDs)
	}
	return map[string]*domain.Asset{}, nil
}

// MockBatchComputer implements ports.BatchComputer.
type MockBatchComputer struct {
	ComputeBatchFunc func(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure)
}

func (m *MockBatchComputer) ComputeBatch(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure) {
	if m.ComputeBatchFunc != nil {
		return m.ComputeBatchFunc(ctx, companyID, drivers, window)
	}
	return nil, nil
}
