package metrics

import (
	"sort"

	"github.com/branchpulse/branchpulse/internal/directory"
)

// Scope is the set of employee codes and branch names a user may see.
// A record is in scope when its staff code OR its branch matches; a manager
// therefore sees records tagged with a managed branch even when the staff
// code is unknown to the directory.
type Scope struct {
	employeeCodes map[string]struct{}
	branchNames   map[string]struct{}
}

func newScope() Scope {
	return Scope{
		employeeCodes: make(map[string]struct{}),
		branchNames:   make(map[string]struct{}),
	}
}

// AllowsStaff reports whether the employee code is visible.
func (s Scope) AllowsStaff(code string) bool {
	_, ok := s.employeeCodes[code]
	return ok
}

// AllowsBranch reports whether the branch name is visible.
func (s Scope) AllowsBranch(name string) bool {
	_, ok := s.branchNames[name]
	return ok
}

// AllowsRecord applies the inclusive-OR visibility rule.
func (s Scope) AllowsRecord(r Record) bool {
	return s.AllowsStaff(r.StaffCode) || s.AllowsBranch(r.Branch)
}

// EmployeeCodes returns the visible codes in sorted order.
func (s Scope) EmployeeCodes() []string {
	return sortedKeys(s.employeeCodes)
}

// BranchNames returns the visible branches in sorted order.
func (s Scope) BranchNames() []string {
	return sortedKeys(s.branchNames)
}

// Filter keeps only the records the scope allows.
func (s Scope) Filter(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if s.AllowsRecord(r) {
			out = append(out, r)
		}
	}
	return out
}

// ResolveScope computes the visibility set for user against a snapshot of the
// staff and branch directories. The subordinate walk is a worklist traversal
// over the manager→reports relation with a visited set, so a cyclic manager
// reference stops expansion at the repeated code instead of looping. An
// unrecognized role yields an empty scope.
func ResolveScope(user directory.StaffMember, staff []directory.StaffMember, branches []directory.Branch) Scope {
	scope := newScope()

	switch user.Role {
	case directory.RoleAdmin:
		for _, s := range staff {
			scope.addStaff(s.EmployeeCode)
		}
		for _, b := range branches {
			scope.addBranch(b.Name)
		}
		return scope

	case directory.RoleUser:
		scope.addStaff(user.EmployeeCode)
		scope.addBranch(user.Branch)
		return scope

	case directory.RoleManager:
		scope.addStaff(user.EmployeeCode)
		scope.addBranch(user.Branch)
		for _, name := range user.ManagedBranches {
			scope.addBranch(name)
		}
		if len(user.ManagedZones) > 0 {
			zones := make(map[string]struct{}, len(user.ManagedZones))
			for _, z := range user.ManagedZones {
				zones[z] = struct{}{}
			}
			for _, b := range branches {
				if _, ok := zones[b.Zone]; ok {
					scope.addBranch(b.Name)
				}
			}
		}
		scope.walkSubordinates(staff)
		return scope
	}

	return scope
}

// walkSubordinates expands the employee-code set to a fixed point. Each pass
// adds staff whose manager reference is already in scope; the pass count is
// bounded by len(staff) because every productive pass adds at least one code.
func (s Scope) walkSubordinates(staff []directory.StaffMember) {
	for range staff {
		added := false
		for _, member := range staff {
			if member.EmployeeCode == "" {
				continue
			}
			if s.AllowsStaff(member.EmployeeCode) {
				continue
			}
			if member.ManagerCode == "" || !s.AllowsStaff(member.ManagerCode) {
				continue
			}
			s.addStaff(member.EmployeeCode)
			s.addBranch(member.Branch)
			added = true
		}
		if !added {
			return
		}
	}
}

func (s Scope) addStaff(code string) {
	if code != "" {
		s.employeeCodes[code] = struct{}{}
	}
}

func (s Scope) addBranch(name string) {
	if name != "" {
		s.branchNames[name] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
