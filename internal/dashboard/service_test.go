package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/metrics"
)

type stubSource struct {
	byKind map[metrics.RecordKind][]metrics.Record
}

func (s stubSource) ListRecords(_ context.Context, kind metrics.RecordKind, _, _ *time.Time) ([]metrics.Record, error) {
	return s.byKind[kind], nil
}

type stubDirectory struct {
	staff    []directory.StaffMember
	branches []directory.Branch
	metrics  []directory.ProductMetric
}

func (s stubDirectory) ListStaff(context.Context) ([]directory.StaffMember, error) {
	return s.staff, nil
}

func (s stubDirectory) ListBranches(context.Context) ([]directory.Branch, error) {
	return s.branches, nil
}

func (s stubDirectory) ListMetrics(context.Context) ([]directory.ProductMetric, error) {
	return s.metrics, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func fixtureDirectory() stubDirectory {
	return stubDirectory{
		staff: []directory.StaffMember{
			{EmployeeCode: "E001", Name: "Asha", Role: directory.RoleManager, Branch: "Central"},
			{EmployeeCode: "E002", Name: "Bikram", Role: directory.RoleUser, Branch: "Central", ManagerCode: "E001"},
			{EmployeeCode: "E003", Name: "Chandra", Role: directory.RoleUser, Branch: "Lakeside"},
		},
		branches: []directory.Branch{
			{Name: "Central", Zone: "Metro", ManagerCode: "E001"},
			{Name: "Lakeside", Zone: "South"},
		},
		metrics: []directory.ProductMetric{
			{Name: "DDS AMT", Category: directory.CategoryAmount, Unit: "Rs"},
			{Name: "DDS AC", Category: directory.CategoryAccount, Unit: "Nos"},
			{Name: "FD AMT", Category: directory.CategoryAmount, Unit: "Rs"},
			{Name: metrics.GrandTotalAmountMetric, Category: directory.CategoryAmount, Unit: "Rs"},
		},
	}
}

func TestOverviewScopesAndAggregates(t *testing.T) {
	dir := fixtureDirectory()
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindAchievement: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 100},
			{StaffCode: "E002", Branch: "Central", Metric: "FD AMT", Date: date(2024, 1, 2), Value: 300},
			// Outside the manager's hierarchy and branch set.
			{StaffCode: "E003", Branch: "Lakeside", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 9999},
		},
	}}
	svc := NewService(source, dir, nil)

	overview, err := svc.Overview(context.Background(), dir.staff[0], Filter{})
	require.NoError(t, err)

	assert.InDelta(t, 400, overview.TotalAmount, 0.001)
	assert.InDelta(t, 200, overview.AverageDaily, 0.001)
	assert.Equal(t, "2024-01-02", overview.PeakDay)
	assert.InDelta(t, 300, overview.PeakDayAmount, 0.001)
	assert.Equal(t, "FD", overview.TopProduct)
	assert.Equal(t, 2, overview.DaysCounted)
}

func TestOverviewHonorsExplicitGrandTotal(t *testing.T) {
	dir := fixtureDirectory()
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindAchievement: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 300},
			{StaffCode: "E002", Branch: "Central", Metric: "FD AMT", Date: date(2024, 1, 1), Value: 200},
			{StaffCode: "E002", Branch: "Central", Metric: metrics.GrandTotalAmountMetric, Date: date(2024, 1, 1), Value: 450},
		},
	}}
	svc := NewService(source, dir, nil)

	overview, err := svc.Overview(context.Background(), dir.staff[0], Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 450, overview.TotalAmount, 0.001, "explicit grand total must replace the computed sum")
}

func TestProductsSortedByContribution(t *testing.T) {
	dir := fixtureDirectory()
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindAchievement: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 250},
			{StaffCode: "E002", Branch: "Central", Metric: "FD AMT", Date: date(2024, 1, 1), Value: 750},
		},
	}}
	svc := NewService(source, dir, nil)

	shares, err := svc.Products(context.Background(), dir.staff[0], Filter{})
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "FD", shares[0].Product)
	assert.InDelta(t, 75, shares[0].SharePct, 0.001)
	assert.InDelta(t, 25, shares[1].SharePct, 0.001)
}

func TestReportRowsCollatedByName(t *testing.T) {
	dir := fixtureDirectory()
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindAchievement: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 40},
			{StaffCode: "E001", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 60},
		},
	}}
	svc := NewService(source, dir, nil)

	report, err := svc.Report(context.Background(), dir.staff[0], Filter{})
	require.NoError(t, err)
	require.Len(t, report.Staff, 2)
	assert.Equal(t, "Asha", report.Staff[0].Name)
	assert.Equal(t, "Bikram", report.Staff[1].Name)
	require.Len(t, report.Branches, 1)
	assert.InDelta(t, 100, report.Branches[0].Total, 0.001)
}

func TestProgressComparesTargetsToAchievements(t *testing.T) {
	dir := fixtureDirectory()
	due := date(2024, 1, 31)
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindTarget: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 200, DueDate: &due},
			{StaffCode: "E002", Branch: "Central", Metric: "FD AMT", Date: date(2024, 1, 1), Value: 100, DueDate: &due},
		},
		metrics.KindAchievement: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 10), Value: 50},
			{StaffCode: "E002", Branch: "Central", Metric: "FD AMT", Date: date(2024, 1, 12), Value: 100},
		},
		metrics.KindProjection: {
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 180},
		},
	}}
	svc := NewService(source, dir, nil)

	progress, err := svc.Progress(context.Background(), dir.staff[0], date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "2024-01", progress.Month)
	require.Len(t, progress.Rows, 2)
	assert.Equal(t, "DDS AMT", progress.Rows[0].Metric)
	assert.InDelta(t, 25, progress.Rows[0].AttainmentPct, 0.001)
	assert.InDelta(t, 180, progress.Rows[0].Projected, 0.001)
	assert.InDelta(t, 100, progress.Rows[1].AttainmentPct, 0.001)
	assert.InDelta(t, 300, progress.AmountTarget, 0.001)
	assert.InDelta(t, 150, progress.AmountAchieved, 0.001)
	assert.InDelta(t, 180, progress.AmountProjected, 0.001)
	assert.InDelta(t, 50, progress.AmountAttainPct, 0.001)
}

func TestUserRoleSeesOnlyOwnRecords(t *testing.T) {
	dir := fixtureDirectory()
	source := stubSource{byKind: map[metrics.RecordKind][]metrics.Record{
		metrics.KindAchievement: {
			{StaffCode: "E003", Branch: "Lakeside", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 70},
			{StaffCode: "E002", Branch: "Central", Metric: "DDS AMT", Date: date(2024, 1, 1), Value: 9000},
		},
	}}
	svc := NewService(source, dir, nil)

	overview, err := svc.Overview(context.Background(), dir.staff[2], Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 70, overview.TotalAmount, 0.001)
}
