package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/shared"
)

type stubResolver struct {
	staff map[string]directory.StaffMember
}

func (s stubResolver) GetStaffByCode(_ context.Context, code string) (directory.StaffMember, error) {
	member, ok := s.staff[code]
	if !ok {
		return directory.StaffMember{}, directory.ErrNotFound
	}
	return member, nil
}

func identityHandler(t *testing.T, captured *directory.StaffMember, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.IdentityFromContext(r.Context())
		*captured = user
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddlewareResolvesHeader(t *testing.T) {
	resolver := stubResolver{staff: map[string]directory.StaffMember{
		"E001": {EmployeeCode: "E001", Name: "Asha", Role: directory.RoleManager, Branch: "Central"},
	}}
	var captured directory.StaffMember
	var found bool
	mw := IdentityMiddleware(MiddlewareConfig{Logger: NewLogger(nil), Staff: resolver})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil)
	req.Header.Set("X-Employee-Code", "E001")
	rec := httptest.NewRecorder()
	mw(identityHandler(t, &captured, &found)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "Asha", captured.Name)
}

func TestIdentityMiddlewareRejectsUnknownCode(t *testing.T) {
	resolver := stubResolver{staff: map[string]directory.StaffMember{}}
	var captured directory.StaffMember
	var found bool
	mw := IdentityMiddleware(MiddlewareConfig{Logger: NewLogger(nil), Staff: resolver})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil)
	req.Header.Set("X-Employee-Code", "GHOST")
	rec := httptest.NewRecorder()
	mw(identityHandler(t, &captured, &found)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, found)
}

func TestIdentityMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	resolver := stubResolver{staff: map[string]directory.StaffMember{}}
	var captured directory.StaffMember
	var found bool
	mw := IdentityMiddleware(MiddlewareConfig{Logger: NewLogger(nil), Staff: resolver})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mw(identityHandler(t, &captured, &found)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
}

func TestIdentityMiddlewareHonoursConfiguredHeader(t *testing.T) {
	resolver := stubResolver{staff: map[string]directory.StaffMember{
		"E002": {EmployeeCode: "E002", Role: directory.RoleUser, Branch: "Lakeside"},
	}}
	var captured directory.StaffMember
	var found bool
	cfg := &Config{IdentityHeader: "X-Gateway-User"}
	mw := IdentityMiddleware(MiddlewareConfig{Logger: NewLogger(nil), Config: cfg, Staff: resolver})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil)
	req.Header.Set("X-Gateway-User", "E002")
	rec := httptest.NewRecorder()
	mw(identityHandler(t, &captured, &found)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "E002", captured.EmployeeCode)
}
