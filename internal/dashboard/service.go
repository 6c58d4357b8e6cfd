package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/metrics"
)

// RecordSource supplies raw record snapshots.
type RecordSource interface {
	ListRecords(ctx context.Context, kind metrics.RecordKind, from, to *time.Time) ([]metrics.Record, error)
}

// Directory supplies the organizational snapshot used for scope resolution.
type Directory interface {
	ListStaff(ctx context.Context) ([]directory.StaffMember, error)
	ListBranches(ctx context.Context) ([]directory.Branch, error)
	ListMetrics(ctx context.Context) ([]directory.ProductMetric, error)
}

// Service computes every dashboard view through the one aggregation path:
// resolve scope, filter the snapshot, aggregate, derive KPIs. The dashboard,
// analytics, and report endpoints all go through here so their totals cannot
// drift apart.
type Service struct {
	records RecordSource
	dir     Directory
	cache   *Cache
}

// NewService wires the record source, directory, and cache helper.
func NewService(records RecordSource, dir Directory, cache *Cache) *Service {
	return &Service{records: records, dir: dir, cache: cache}
}

// Overview resolves the KPI card for the user's scope and window.
func (s *Service) Overview(ctx context.Context, user directory.StaffMember, f Filter) (Overview, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.visibleRecords(ctx, user, metrics.KindAchievement, f)
		if err != nil {
			return Overview{}, err
		}
		daily := metrics.DailyAmountTotals(snap.records, snap.catalog)
		grand := metrics.GrandTotal(snap.records, snap.catalog)
		peakDay, peakValue := metrics.PeakDay(daily)
		return Overview{
			TotalAmount:   grand.Amount,
			TotalAccount:  grand.Account,
			AverageDaily:  metrics.AverageDailyAmount(daily),
			PeakDay:       peakDay,
			PeakDayAmount: peakValue,
			TopProduct:    metrics.TopProduct(metrics.ProductTotals(snap.records)),
			DaysCounted:   daily.Len(),
		}, nil
	}
	var out Overview
	if err := s.cached(ctx, keyOverview(user.EmployeeCode, f), &out, loader); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// Products resolves the per-product contribution shares, largest first.
func (s *Service) Products(ctx context.Context, user directory.StaffMember, f Filter) ([]ProductShare, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.visibleRecords(ctx, user, metrics.KindAchievement, f)
		if err != nil {
			return nil, err
		}
		totals := metrics.ProductTotals(snap.records)
		shares := make([]ProductShare, 0, totals.Len())
		for _, label := range totals.Keys() {
			total, _ := totals.Get(label)
			shares = append(shares, ProductShare{
				Product:  label,
				Total:    total,
				SharePct: metrics.ContributionPercent(totals, label),
			})
		}
		sort.SliceStable(shares, func(i, j int) bool {
			return shares[i].Total > shares[j].Total
		})
		return shares, nil
	}
	var out []ProductShare
	if err := s.cached(ctx, keyProducts(user.EmployeeCode, f), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// Report resolves the per-staff and per-branch amount rollups, rows ordered
// by display name.
func (s *Service) Report(ctx context.Context, user directory.StaffMember, f Filter) (Report, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.visibleRecords(ctx, user, metrics.KindAchievement, f)
		if err != nil {
			return Report{}, err
		}
		names := make(map[string]string, len(snap.staff))
		for _, member := range snap.staff {
			names[member.EmployeeCode] = member.Name
		}
		staffRows := reportRows(metrics.TotalsByStaff(snap.records, snap.catalog), names)
		branchRows := reportRows(metrics.TotalsByBranch(snap.records, snap.catalog), nil)
		return Report{Staff: staffRows, Branches: branchRows}, nil
	}
	var out Report
	if err := s.cached(ctx, keyReport(user.EmployeeCode, f), &out, loader); err != nil {
		return Report{}, err
	}
	return out, nil
}

// Progress compares the month's targets against achievements, per metric and
// on both grand-total axes.
func (s *Service) Progress(ctx context.Context, user directory.StaffMember, month time.Time) (Progress, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
		end := start.AddDate(0, 1, -1)
		window := Filter{From: &start, To: &end}

		targets, err := s.visibleRecords(ctx, user, metrics.KindTarget, window)
		if err != nil {
			return Progress{}, err
		}
		achieved, err := s.visibleRecords(ctx, user, metrics.KindAchievement, window)
		if err != nil {
			return Progress{}, err
		}
		projected, err := s.visibleRecords(ctx, user, metrics.KindProjection, window)
		if err != nil {
			return Progress{}, err
		}

		targetByMetric := metrics.TotalsByMetric(targets.records)
		achievedByMetric := metrics.TotalsByMetric(achieved.records)
		projectedByMetric := metrics.TotalsByMetric(projected.records)
		rows := make([]ProgressRow, 0, targetByMetric.Len())
		for _, name := range targetByMetric.Keys() {
			target, _ := targetByMetric.Get(name)
			got, _ := achievedByMetric.Get(name)
			proj, _ := projectedByMetric.Get(name)
			rows = append(rows, ProgressRow{
				Metric:        name,
				Target:        target,
				Achieved:      got,
				Projected:     proj,
				AttainmentPct: metrics.AttainmentPercent(got, target),
			})
		}

		targetGrand := metrics.GrandTotal(targets.records, targets.catalog)
		achievedGrand := metrics.GrandTotal(achieved.records, achieved.catalog)
		projectedGrand := metrics.GrandTotal(projected.records, projected.catalog)
		return Progress{
			Month:            start.Format("2006-01"),
			Rows:             rows,
			AmountTarget:     targetGrand.Amount,
			AmountAchieved:   achievedGrand.Amount,
			AmountProjected:  projectedGrand.Amount,
			AmountAttainPct:  metrics.AttainmentPercent(achievedGrand.Amount, targetGrand.Amount),
			AccountTarget:    targetGrand.Account,
			AccountAchieved:  achievedGrand.Account,
			AccountProjected: projectedGrand.Account,
			AccountAttainPct: metrics.AttainmentPercent(achievedGrand.Account, targetGrand.Account),
		}, nil
	}
	var out Progress
	if err := s.cached(ctx, keyProgress(user.EmployeeCode, month.Format("2006-01")), &out, loader); err != nil {
		return Progress{}, err
	}
	return out, nil
}

type snapshot struct {
	records []metrics.Record
	catalog *metrics.Catalog
	staff   []directory.StaffMember
}

// visibleRecords loads the directory and record snapshots, resolves the
// user's scope fresh (never reused across directory changes), and applies
// the scope and filter chain.
func (s *Service) visibleRecords(ctx context.Context, user directory.StaffMember, kind metrics.RecordKind, f Filter) (snapshot, error) {
	if s.records == nil || s.dir == nil {
		return snapshot{}, fmt.Errorf("dashboard: service not configured")
	}
	staff, err := s.dir.ListStaff(ctx)
	if err != nil {
		return snapshot{}, err
	}
	branches, err := s.dir.ListBranches(ctx)
	if err != nil {
		return snapshot{}, err
	}
	catalogEntries, err := s.dir.ListMetrics(ctx)
	if err != nil {
		return snapshot{}, err
	}

	records, err := s.records.ListRecords(ctx, kind, f.From, f.To)
	if err != nil {
		return snapshot{}, err
	}

	scope := metrics.ResolveScope(user, staff, branches)
	records = scope.Filter(records)
	records = metrics.FilterByDateRange(records, f.From, f.To)
	if f.Day != nil {
		records = metrics.FilterByDay(records, *f.Day)
	}
	if f.Product != "" {
		records = metrics.FilterByMetricPrefix(records, f.Product)
	}
	return snapshot{records: records, catalog: metrics.NewCatalog(catalogEntries), staff: staff}, nil
}

// cached routes every load through the cache helper; a nil cache degrades to
// a pass-through load inside FetchJSON.
func (s *Service) cached(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func reportRows(totals *metrics.OrderedTotals, names map[string]string) []ReportRow {
	rows := make([]ReportRow, 0, totals.Len())
	for _, key := range totals.Keys() {
		total, _ := totals.Get(key)
		name := key
		if names != nil {
			if n, ok := names[key]; ok && n != "" {
				name = n
			}
		}
		rows = append(rows, ReportRow{Key: key, Name: name, Total: total})
	}
	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		return coll.CompareString(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}
