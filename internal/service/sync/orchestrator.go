package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/observability/telemetry"
	"github.com/seu-repo/fleetops/internal/ports"
)

// ProgressFunc receives incremental progress after every completed
// batch. estimatedTotal grows as companies are enumerated; it is an
// estimate, not a promise. Calls may arrive from concurrent company
// workers.
type ProgressFunc func(processed, estimatedTotal, newInBatch int)

// Options tunes a sync run.
type Options struct {
	BatchSize  int
	RunTimeout time.Duration
	Location   *time.Location
}

// Orchestrator is the consumer-facing entry point of the acquisition
// client. It fans out over companies, processes each company's drivers
// in fixed-size batches and collects everything into one run report.
//
// Failure severity is decided here: authentication and company listing
// failures abort the run, a failed driver listing skips that company,
// and a failed driver summary is counted and skipped.
type Orchestrator struct {
	enum    ports.FleetEnumerator
	batches ports.BatchComputer

	batchSize  int
	runTimeout time.Duration
	loc        *time.Location

	now    func() time.Time
	tracer trace.Tracer
	log    *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given enumerator and
// batch computer.
func NewOrchestrator(enum ports.FleetEnumerator, batches ports.BatchComputer, opts Options, log *zap.Logger) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Orchestrator{
		enum:       enum,
		batches:    batches,
		batchSize:  opts.BatchSize,
		runTimeout: opts.RunTimeout,
		loc:        opts.Location,
		now:        time.Now,
		tracer:     otel.Tracer("fleetops/sync"),
		log:        log,
	}
}

// Run executes one full sync for the requested period. It returns the
// report with every computed summary and every per-entity failure; a
// non-nil error means the run as a whole could not proceed.
func (o *Orchestrator) Run(ctx context.Context, desc domain.PeriodDescriptor, onProgress ProgressFunc) (*domain.RunReport, error) {
	started := o.now()

	if o.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	window, err := domain.ResolveWindow(desc, started, o.loc)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "sync.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("period", window.Label),
	))
	defer span.End()

	o.log.Info("Sync run started",
		zap.String("run_id", runID),
		zap.String("period", window.Label),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
	)

	companies, err := o.enum.ListCompanies(ctx)
	if err != nil {
		telemetry.SyncRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("sync run aborted: %w", err)
	}

	report := &domain.RunReport{
		RunID:     runID,
		Window:    window,
		StartedAt: started,
	}

	var mu sync.Mutex
	var processed, estimated int

	g, ctx := errgroup.WithContext(ctx)
	for _, company := range companies {
		company := company
		g.Go(func() error {
			o.syncCompany(ctx, company, window, report, &mu, &processed, &estimated, onProgress)
			return nil
		})
	}
	// Workers record failures instead of returning errors.
	_ = g.Wait()

	report.FinishedAt = o.now()

	telemetry.SyncRunsTotal.WithLabelValues("ok").Inc()
	telemetry.SyncRunDuration.Observe(report.FinishedAt.Sub(started).Seconds())

	o.log.Info("Sync run finished",
		zap.String("run_id", runID),
		zap.Int("summaries", len(report.Summaries)),
		zap.Int("driver_failures", len(report.Failures)),
		zap.Int("company_failures", len(report.CompanyFailures)),
		zap.Duration("elapsed", report.FinishedAt.Sub(started)),
	)

	return report, nil
}

func (o *Orchestrator) syncCompany(ctx context.Context, company domain.Company, window domain.PeriodWindow, report *domain.RunReport, mu *sync.Mutex, processed, estimated *int, onProgress ProgressFunc) {
	ctx, span := o.tracer.Start(ctx, "sync.company", trace.WithAttributes(
		attribute.String("company_id", company.ID),
	))
	defer span.End()

	drivers, err := o.enum.ListDrivers(ctx, company.ID)
	if err != nil {
		o.log.Error("Company skipped, driver listing failed",
			zap.String("company_id", company.ID),
			zap.Error(err),
		)
		mu.Lock()
		report.CompanyFailures = append(report.CompanyFailures, domain.CompanyFailure{
			CompanyID: company.ID,
			Reason:    err.Error(),
		})
		mu.Unlock()
		return
	}

	mu.Lock()
	*estimated += len(drivers)
	mu.Unlock()

	for start := 0; start < len(drivers); start += o.batchSize {
		end := min(start+o.batchSize, len(drivers))
		batch := drivers[start:end]

		summaries, failures := o.batches.ComputeBatch(ctx, company.ID, batch, window)

		mu.Lock()
		report.Summaries = append(report.Summaries, summaries...)
		report.Failures = append(report.Failures, failures...)
		*processed += len(batch)
		p, e := *processed, *estimated
		mu.Unlock()

		if onProgress != nil {
			onProgress(p, e, len(summaries))
		}
	}
}
