package flotapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
)

// Enumerator lists the companies visible to the fleet account and each
// company's drivers. Enumeration failures are surfaced, not suppressed:
// their severity (abort run vs. skip company) is the orchestrator's
// call.
type Enumerator struct {
	client   *Client
	pageSize int
	log      *zap.Logger
}

// NewEnumerator creates an enumerator paging driver listings with
// pageSize records per request.
func NewEnumerator(client *Client, pageSize int, log *zap.Logger) *Enumerator {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Enumerator{client: client, pageSize: pageSize, log: log}
}

// ListCompanies returns all tenant companies in one request.
func (e *Enumerator) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var data companiesData
	if err := e.client.Execute(ctx, companiesQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companies := make([]domain.Company, 0, len(data.Companies))
	for _, r := range data.Companies {
		companies = append(companies, r.toDomain())
	}

	e.log.Debug("Listed companies", zap.Int("count", len(companies)))
	return companies, nil
}

// ListDrivers drains the paginated driver listing for one company into
// a fully materialized slice.
func (e *Enumerator) ListDrivers(ctx context.Context, companyID string) ([]domain.Driver, error) {
	var drivers []domain.Driver

	err := e.client.ExecutePaginated(ctx, func(ctx context.Context, page int) (Pagination, error) {
		var data driversPageData
		vars := map[string]interface{}{
			"companyId": companyID,
			"page":      page,
			"pageSize":  e.pageSize,
		}
		if err := e.client.Execute(ctx, driversQuery, vars, &data); err != nil {
			return Pagination{}, err
		}
		for _, r := range data.Drivers.Records {
			drivers = append(drivers, r.toDomain())
		}
		return data.Drivers.Pagination, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers for company %s: %w", companyID, err)
	}

	e.log.Debug("Listed drivers",
		zap.String("company_id", companyID),
		zap.Int("count", len(drivers)),
	)
	return drivers, nil
}
