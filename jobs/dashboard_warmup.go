package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/branchpulse/branchpulse/internal/dashboard"
	"github.com/branchpulse/branchpulse/internal/directory"
	jobmetrics "github.com/branchpulse/branchpulse/internal/jobs"
	"github.com/branchpulse/branchpulse/internal/metrics"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ManagerLister enumerates the staff whose scopes the warmup covers.
type ManagerLister interface {
	ListManagers(ctx context.Context) ([]directory.StaffMember, error)
}

// DashboardWarmupJob pre-populates dashboard caches for manager scopes so the
// first morning request does not pay the aggregation cost.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Directory ManagerLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, dir ManagerLister, logger *slog.Logger, m *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: svc,
		Directory: dir,
		Logger:    logger,
		Metrics:   m,
		clock:     time.Now,
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting dashboard warmup")

	managers, err := j.fetchManagers(ctx, payload.StaffCode)
	if err != nil {
		resultErr = err
		logger.Error("load warmup managers", slog.Any("error", err))
		return resultErr
	}
	if len(managers) == 0 {
		logger.Info("no manager scopes discovered for warmup")
		return resultErr
	}

	start := j.now()
	warmed := 0
	for _, manager := range managers {
		if err := j.warmScope(ctx, manager); err != nil {
			resultErr = err
			logger.Error("warm scope", slog.String("staff_code", manager.EmployeeCode), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed dashboard warmup",
		slog.Int("scopes", warmed),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

// warmScope primes the month-to-date views one manager sees.
func (j *DashboardWarmupJob) warmScope(ctx context.Context, manager directory.StaffMember) error {
	if j.Dashboard == nil {
		return nil
	}
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	from, to := metrics.MonthToDateRange(j.now())
	filter := dashboard.Filter{From: &from, To: &to}

	if _, err := j.Dashboard.Overview(scopeCtx, manager, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedKeys("overview", 1)
	if _, err := j.Dashboard.Products(scopeCtx, manager, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedKeys("products", 1)
	if _, err := j.Dashboard.Report(scopeCtx, manager, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedKeys("report", 1)
	return nil
}

func (j *DashboardWarmupJob) fetchManagers(ctx context.Context, staffCode string) ([]directory.StaffMember, error) {
	if j.Directory == nil {
		return nil, errors.New("dashboard warmup: directory not configured")
	}
	managers, err := j.Directory.ListManagers(ctx)
	if err != nil {
		return nil, err
	}
	if staffCode == "" {
		return managers, nil
	}
	for _, m := range managers {
		if m.EmployeeCode == staffCode {
			return []directory.StaffMember{m}, nil
		}
	}
	return nil, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
