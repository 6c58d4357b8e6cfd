package targets

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/metrics"
)

// RecordStore is the persistence contract for individual target records.
type RecordStore interface {
	UpsertTarget(ctx context.Context, rec metrics.Record) error
	DeleteTarget(ctx context.Context, staffCode, branch, metric string, month time.Time) (bool, error)
}

// Directory supplies the snapshots needed for scope checks and the catalog.
type Directory interface {
	ListStaff(ctx context.Context) ([]directory.StaffMember, error)
	ListBranches(ctx context.Context) ([]directory.Branch, error)
	ListMetrics(ctx context.Context) ([]directory.ProductMetric, error)
}

// CacheBumper invalidates derived dashboard data after writes.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service handles bulk monthly target submission. This is the outbound
// grand-total path: the synthetic totals are computed from the submitted
// constituents and persisted as derived values, overwriting whatever
// explicit totals were stored before. The read-side override rule lives in
// the metrics package and must stay separate, otherwise stale explicit
// totals resurface.
type Service struct {
	store  RecordStore
	dir    Directory
	cache  CacheBumper
	logger *slog.Logger
}

// NewService wires the store, directory, and cache invalidation.
func NewService(store RecordStore, dir Directory, cache CacheBumper, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, dir: dir, cache: cache, logger: logger}
}

// SubmitBulk writes one owner's monthly target sheet. Each metric is written
// independently: a positive value is stored, a zero or negative value
// deletes any previously stored target, and per-record failures are
// reported in the result without aborting the batch.
func (s *Service) SubmitBulk(ctx context.Context, user directory.StaffMember, sub Submission) (Result, error) {
	if err := validate(sub); err != nil {
		return Result{}, err
	}
	if err := s.authorize(ctx, user, sub); err != nil {
		return Result{}, err
	}
	catalogEntries, err := s.dir.ListMetrics(ctx)
	if err != nil {
		return Result{}, err
	}
	catalog := metrics.NewCatalog(catalogEntries)

	month := time.Date(sub.Month.Year(), sub.Month.Month(), 1, 0, 0, 0, 0, sub.Month.Location())
	due := sub.DueDate
	if due == nil {
		end := month.AddDate(0, 1, -1)
		due = &end
	}

	result := Result{BatchID: uuid.NewString()}
	logger := s.logger.With(
		slog.String("batch_id", result.BatchID),
		slog.String("staff_code", sub.StaffCode),
		slog.String("branch", sub.Branch),
		slog.String("month", month.Format("2006-01")),
	)

	var amountTotal, accountTotal float64
	for _, metric := range sortedMetrics(sub.Values) {
		value := sub.Values[metric]
		if catalog.IsGrandTotal(metric) {
			// Grand totals are derived below, never taken from the sheet.
			result.record(Outcome{Metric: metric, Value: value, Status: OutcomeSkipped})
			continue
		}
		if value > 0 {
			if catalog.IsAmountConstituent(metric) {
				amountTotal += value
			}
			if catalog.IsAccountConstituent(metric) {
				accountTotal += value
			}
		}
		result.record(s.writeOne(ctx, sub, metric, value, month, due))
	}

	result.record(s.writeOne(ctx, sub, metrics.GrandTotalAmountMetric, amountTotal, month, due))
	result.record(s.writeOne(ctx, sub, metrics.GrandTotalAccountMetric, accountTotal, month, due))

	if s.cache != nil && (result.Stored > 0 || result.Deleted > 0) {
		if err := s.cache.Bump(ctx); err != nil {
			logger.Warn("bump dashboard cache", slog.Any("error", err))
		}
	}
	logger.Info("bulk targets submitted",
		slog.Int("stored", result.Stored),
		slog.Int("deleted", result.Deleted),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Service) writeOne(ctx context.Context, sub Submission, metric string, value float64, month time.Time, due *time.Time) Outcome {
	if value > 0 {
		rec := metrics.Record{
			Kind:      metrics.KindTarget,
			Date:      month,
			StaffCode: sub.StaffCode,
			Branch:    sub.Branch,
			Metric:    metric,
			Value:     value,
			DueDate:   due,
		}
		if err := s.store.UpsertTarget(ctx, rec); err != nil {
			return Outcome{Metric: metric, Value: value, Status: OutcomeFailed, Error: err.Error()}
		}
		return Outcome{Metric: metric, Value: value, Status: OutcomeStored}
	}
	existed, err := s.store.DeleteTarget(ctx, sub.StaffCode, sub.Branch, metric, month)
	if err != nil {
		return Outcome{Metric: metric, Value: value, Status: OutcomeFailed, Error: err.Error()}
	}
	if !existed {
		return Outcome{Metric: metric, Value: value, Status: OutcomeSkipped}
	}
	return Outcome{Metric: metric, Value: value, Status: OutcomeDeleted}
}

// authorize resolves the submitter's scope fresh and requires the target
// owner to be inside it, by staff code or by branch.
func (s *Service) authorize(ctx context.Context, user directory.StaffMember, sub Submission) error {
	staff, err := s.dir.ListStaff(ctx)
	if err != nil {
		return err
	}
	branches, err := s.dir.ListBranches(ctx)
	if err != nil {
		return err
	}
	scope := metrics.ResolveScope(user, staff, branches)
	if sub.StaffCode != "" && scope.AllowsStaff(sub.StaffCode) {
		return nil
	}
	if sub.Branch != "" && scope.AllowsBranch(sub.Branch) {
		return nil
	}
	return ErrForbidden
}

func validate(sub Submission) error {
	if sub.Month.IsZero() {
		return fmt.Errorf("%w: month required", ErrInvalid)
	}
	if sub.StaffCode == "" && sub.Branch == "" {
		return fmt.Errorf("%w: staff code or branch required", ErrInvalid)
	}
	if len(sub.Values) == 0 {
		return fmt.Errorf("%w: no values submitted", ErrInvalid)
	}
	return nil
}

func sortedMetrics(values map[string]float64) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Result) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeStored:
		r.Stored++
	case OutcomeDeleted:
		r.Deleted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
