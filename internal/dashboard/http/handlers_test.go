package dashhttp

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchpulse/branchpulse/internal/dashboard"
	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/shared"
)

type stubService struct {
	gotFilter dashboard.Filter
	gotMonth  time.Time
}

func (s *stubService) Overview(_ context.Context, _ directory.StaffMember, f dashboard.Filter) (dashboard.Overview, error) {
	s.gotFilter = f
	return dashboard.Overview{TotalAmount: 400, TopProduct: "DDS"}, nil
}

func (s *stubService) Products(_ context.Context, _ directory.StaffMember, f dashboard.Filter) ([]dashboard.ProductShare, error) {
	return []dashboard.ProductShare{{Product: "DDS", Total: 300, SharePct: 75}}, nil
}

func (s *stubService) Report(_ context.Context, _ directory.StaffMember, f dashboard.Filter) (dashboard.Report, error) {
	s.gotFilter = f
	return dashboard.Report{}, nil
}

func (s *stubService) Progress(_ context.Context, _ directory.StaffMember, month time.Time) (dashboard.Progress, error) {
	s.gotMonth = month
	return dashboard.Progress{Month: month.Format("2006-01")}, nil
}

func newHandler(svc DashboardService) *Handler {
	h := NewHandler(slog.Default(), svc)
	h.WithNow(func() time.Time {
		return time.Date(2024, 3, 18, 11, 0, 0, 0, time.Local)
	})
	return h
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	user := directory.StaffMember{EmployeeCode: "M001", Role: directory.RoleManager, Branch: "Central"}
	return req.WithContext(shared.ContextWithIdentity(req.Context(), user))
}

func TestOverviewDefaultsToMonthToDate(t *testing.T) {
	svc := &stubService{}
	h := newHandler(svc)

	rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotFilter.From)
	require.NotNil(t, svc.gotFilter.To)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), *svc.gotFilter.From)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.Local), *svc.gotFilter.To)
	assert.Contains(t, rec.Body.String(), `"products"`)
}

func TestOverviewRequiresIdentity(t *testing.T) {
	h := newHandler(&stubService{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportParsesExplicitWindow(t *testing.T) {
	svc := &stubService{}
	h := newHandler(svc)

	req := authed(httptest.NewRequest(http.MethodGet, "/dashboard/report?from=2024-02-01&to=2024-02-15&product=DDS", nil))
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotFilter.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), *svc.gotFilter.From)
	assert.Equal(t, "DDS", svc.gotFilter.Product)
}

func TestReportRejectsMalformedDate(t *testing.T) {
	h := newHandler(&stubService{})

	req := authed(httptest.NewRequest(http.MethodGet, "/dashboard/report?from=02-2024", nil))
	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressDefaultsToCurrentMonth(t *testing.T) {
	svc := &stubService{}
	h := newHandler(svc)

	rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/dashboard/progress", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.March, svc.gotMonth.Month())
	assert.Contains(t, rec.Body.String(), `"2024-03"`)
}
