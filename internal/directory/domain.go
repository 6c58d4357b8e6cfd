package directory

// Role determines how wide a user's reporting scope is resolved.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// StaffMember is an employee entry from the organizational directory.
// EmployeeCode is the unique key used for matching records and the
// reporting-manager reference.
type StaffMember struct {
	EmployeeCode    string   `json:"employee_code"`
	Name            string   `json:"name"`
	Role            Role     `json:"role"`
	Branch          string   `json:"branch"`
	ManagedBranches []string `json:"managed_branches,omitempty"`
	ManagedZones    []string `json:"managed_zones,omitempty"`
	ManagerCode     string   `json:"manager_code,omitempty"`
}

// Branch is an organizational unit keyed by name.
type Branch struct {
	Name        string `json:"name"`
	Zone        string `json:"zone"`
	ManagerCode string `json:"manager_code,omitempty"`
}

// MetricCategory classifies a product metric axis.
type MetricCategory string

const (
	CategoryAmount  MetricCategory = "Amount"
	CategoryAccount MetricCategory = "Account"
	CategoryOther   MetricCategory = "Other"
)

// ProductMetric describes one column of the daily achievement sheet,
// e.g. "DDS AMT" (Amount, rupees) or "DDS AC" (Account, count).
type ProductMetric struct {
	Name     string         `json:"name"`
	Category MetricCategory `json:"category"`
	Unit     string         `json:"unit"`
}
