package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested directory entry does not exist.
var ErrNotFound = errors.New("directory: not found")

// Repository reads the organizational directory. Entries are owned by an
// external import pipeline; this side only snapshots them.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repo over the shared pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStaff returns the full staff directory ordered by employee code.
func (r *Repository) ListStaff(ctx context.Context) ([]StaffMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT employee_code, name, role, branch,
		       COALESCE(managed_branches, '{}'), COALESCE(managed_zones, '{}'),
		       COALESCE(manager_code, '')
		FROM staff_members
		ORDER BY employee_code`)
	if err != nil {
		return nil, fmt.Errorf("directory: list staff: %w", err)
	}
	defer rows.Close()

	var staff []StaffMember
	for rows.Next() {
		var s StaffMember
		if err := rows.Scan(&s.EmployeeCode, &s.Name, &s.Role, &s.Branch, &s.ManagedBranches, &s.ManagedZones, &s.ManagerCode); err != nil {
			return nil, fmt.Errorf("directory: scan staff: %w", err)
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return staff, nil
}

// GetStaffByCode fetches one staff member by employee code.
func (r *Repository) GetStaffByCode(ctx context.Context, code string) (StaffMember, error) {
	var s StaffMember
	err := r.pool.QueryRow(ctx, `
		SELECT employee_code, name, role, branch,
		       COALESCE(managed_branches, '{}'), COALESCE(managed_zones, '{}'),
		       COALESCE(manager_code, '')
		FROM staff_members
		WHERE employee_code = $1`, code).
		Scan(&s.EmployeeCode, &s.Name, &s.Role, &s.Branch, &s.ManagedBranches, &s.ManagedZones, &s.ManagerCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StaffMember{}, ErrNotFound
		}
		return StaffMember{}, fmt.Errorf("directory: get staff %s: %w", code, err)
	}
	return s, nil
}

// ListBranches returns all branches ordered by name.
func (r *Repository) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, zone, COALESCE(manager_code, '')
		FROM branches
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("directory: list branches: %w", err)
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.Name, &b.Zone, &b.ManagerCode); err != nil {
			return nil, fmt.Errorf("directory: scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return branches, nil
}

// ListMetrics returns the product-metric catalog.
func (r *Repository) ListMetrics(ctx context.Context) ([]ProductMetric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, category, COALESCE(unit, '')
		FROM product_metrics
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("directory: list metrics: %w", err)
	}
	defer rows.Close()

	var metrics []ProductMetric
	for rows.Next() {
		var m ProductMetric
		if err := rows.Scan(&m.Name, &m.Category, &m.Unit); err != nil {
			return nil, fmt.Errorf("directory: scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metrics, nil
}

// ListManagers returns staff with the manager role; the warmup job uses this
// to enumerate cache scopes.
func (r *Repository) ListManagers(ctx context.Context) ([]StaffMember, error) {
	staff, err := r.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	managers := make([]StaffMember, 0, len(staff))
	for _, s := range staff {
		if s.Role == RoleManager {
			managers = append(managers, s)
		}
	}
	return managers, nil
}
