package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/mocks"
)

func passthroughBatches() *mocks.MockBatchComputer {
	return &mocks.MockBatchComputer{
		ComputeBatchFunc: func(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure) {
			summaries := make([]domain.DriverPeriodSummary, 0, len(drivers))
			for _, d := range drivers {
				summaries = append(summaries, domain.DriverPeriodSummary{CompanyID: companyID, DriverID: d.ID})
			}
			return summaries, nil
		},
	}
}

func driversNamed(n int) []domain.Driver {
	drivers := make([]domain.Driver, n)
	for i := range drivers {
		drivers[i] = domain.Driver{ID: fmt.Sprintf("drv-%d", i)}
	}
	return drivers
}

func TestRun_CollectsAllCompanies(t *testing.T) {
	// Arrange
	enum := &mocks.MockFleetEnumerator{
		ListCompaniesFunc: func(ctx context.Context) ([]domain.Company, error) {
			return []domain.Company{{ID: "co-1"}, {ID: "co-2"}}, nil
		},
		ListDriversFunc: func(ctx context.Context, companyID string) ([]domain.Driver, error) {
			if companyID == "co-1" {
				return driversNamed(3), nil
			}
			return driversNamed(2), nil
		},
	}
	orch := NewOrchestrator(enum, passthroughBatches(), Options{}, zap.NewNop())

	// Act
	report, err := orch.Run(context.Background(), domain.PeriodDescriptor{Kind: domain.PeriodYesterday}, nil)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Summaries) != 5 {
		t.Errorf("expected 5 summaries, got %d", len(report.Summaries))
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if !report.FinishedAt.After(report.StartedAt) && !report.FinishedAt.Equal(report.StartedAt) {
		t.Error("finished_at must not precede started_at")
	}
}

func TestRun_CompanyListingFailureAbortsRun(t *testing.T) {
	// Arrange
	enum := &mocks.MockFleetEnumerator{
		ListCompaniesFunc: func(ctx context.Context) ([]domain.Company, error) {
			return nil, &domain.AuthenticationError{StatusCode: 401, Reason: "invalid credentials"}
		},
	}
	orch := NewOrchestrator(enum, passthroughBatches(), Options{}, zap.NewNop())

	// Act
	report, err := orch.Run(context.Background(), domain.PeriodDescriptor{Kind: domain.PeriodYesterday}, nil)

	// Assert
	if err == nil {
		t.Fatal("expected run to abort")
	}
	if report != nil {
		t.Errorf("expected no report on aborted run, got %+v", report)
	}
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Errorf("expected wrapped AuthenticationError, got %v", err)
	}
}

func TestRun_DriverListingFailureSkipsCompany(t *testing.T) {
	// Arrange
	enum := &mocks.MockFleetEnumerator{
		ListCompaniesFunc: func(ctx context.Context) ([]domain.Company, error) {
			return []domain.Company{{ID: "co-bad"}, {ID: "co-good"}}, nil
		},
		ListDriversFunc: func(ctx context.Context, companyID string) ([]domain.Driver, error) {
			if companyID == "co-bad" {
				return nil, &domain.NetworkError{Operation: "listDrivers", Err: errors.New("boom")}
			}
			return driversNamed(2), nil
		},
	}
	orch := NewOrchestrator(enum, passthroughBatches(), Options{}, zap.NewNop())

	// Act
	report, err := orch.Run(context.Background(), domain.PeriodDescriptor{Kind: domain.PeriodYesterday}, nil)

	// Assert
	if err != nil {
		t.Fatalf("expected run to continue, got %v", err)
	}
	if len(report.CompanyFailures) != 1 || report.CompanyFailures[0].CompanyID != "co-bad" {
		t.Fatalf("expected co-bad recorded as company failure, got %+v", report.CompanyFailures)
	}
	if len(report.Summaries) != 2 {
		t.Errorf("expected 2 summaries from the healthy company, got %d", len(report.Summaries))
	}
}

func TestRun_BatchesAndProgress(t *testing.T) {
	// Arrange
	enum := &mocks.MockFleetEnumerator{
		ListCompaniesFunc: func(ctx context.Context) ([]domain.Company, error) {
			return []domain.Company{{ID: "co-1"}}, nil
		},
		ListDriversFunc: func(ctx context.Context, companyID string) ([]domain.Driver, error) {
			return driversNamed(7), nil
		},
	}
	var batchSizes []int
	batches := &mocks.MockBatchComputer{
		ComputeBatchFunc: func(ctx context.Context, companyID string, drivers []domain.Driver, window domain.PeriodWindow) ([]domain.DriverPeriodSummary, []domain.DriverFailure) {
			batchSizes = append(batchSizes, len(drivers))
			summaries := make([]domain.DriverPeriodSummary, len(drivers))
			for i, d := range drivers {
				summaries[i] = domain.DriverPeriodSummary{DriverID: d.ID}
			}
			return summaries, nil
		},
	}
	orch := NewOrchestrator(enum, batches, Options{BatchSize: 3}, zap.NewNop())

	var mu sync.Mutex
	var progress [][3]int

	// Act
	_, err := orch.Run(context.Background(), domain.PeriodDescriptor{Kind: domain.PeriodYesterday},
		func(processed, estimatedTotal, newInBatch int) {
			mu.Lock()
			progress = append(progress, [3]int{processed, estimatedTotal, newInBatch})
			mu.Unlock()
		})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(batchSizes) != 3 || batchSizes[0] != 3 || batchSizes[1] != 3 || batchSizes[2] != 1 {
		t.Fatalf("expected batches of 3,3,1 got %v", batchSizes)
	}
	if len(progress) != 3 {
		t.Fatalf("expected 3 progress calls, got %d", len(progress))
	}
	last := progress[len(progress)-1]
	if last[0] != 7 || last[1] != 7 {
		t.Errorf("expected final progress 7/7, got %d/%d", last[0], last[1])
	}
}

func TestRun_TimeoutIsApplied(t *testing.T) {
	// Arrange
	enum := &mocks.MockFleetEnumerator{
		ListCompaniesFunc: func(ctx context.Context) ([]domain.Company, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
				return []domain.Company{{ID: "co-1"}}, nil
			}
		},
	}
	orch := NewOrchestrator(enum, passthroughBatches(), Options{RunTimeout: 20 * time.Millisecond}, zap.NewNop())

	// Act
	_, err := orch.Run(context.Background(), domain.PeriodDescriptor{Kind: domain.PeriodYesterday}, nil)

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
