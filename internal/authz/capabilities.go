// Package authz decides who may read, edit, assign or transition a ticket.
// Role capabilities and department visibility grants are typed constant
// sets, computed once and queried through predicates.
package authz

import (
	"github.com/spec-kit/service-desk/internal/domain"
)

// Capability is a single permission a role may hold.
type Capability string

const (
	CapViewAll      Capability = "view_all"
	CapViewInternal Capability = "view_internal"
	CapEditAll      Capability = "edit_all"
	CapDelete       Capability = "delete"
	CapAssign       Capability = "assign"
	CapViewAs       Capability = "view_as"
)

// CapabilitySet is the capability grant for one role.
type CapabilitySet map[Capability]struct{}

// Has reports whether the capability is granted.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func caps(list ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(list))
	for _, c := range list {
		set[c] = struct{}{}
	}
	return set
}

// roleCapabilities derives the capability set per role.
var roleCapabilities = map[domain.Role]CapabilitySet{
	domain.RoleAdmin:    caps(CapViewAll, CapViewInternal, CapEditAll, CapDelete, CapAssign, CapViewAs),
	domain.RoleEmployee: caps(CapViewInternal, CapAssign),
	domain.RoleMarket:   caps(CapViewInternal),
	domain.RoleDealer:   caps(),
}

// VisibilitySet is the set of activity/ticket tiers a department may read.
type VisibilitySet map[domain.Visibility]struct{}

// Has reports whether the tier is readable.
func (s VisibilitySet) Has(v domain.Visibility) bool {
	_, ok := s[v]
	return ok
}

func tiers(list ...domain.Visibility) VisibilitySet {
	set := make(VisibilitySet, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}

// departmentVisibility grants read tiers per internal department.
var departmentVisibility = map[domain.Department]VisibilitySet{
	domain.DepartmentOperation: tiers(domain.VisibilityAll, domain.VisibilityInternal, domain.VisibilityOpOnly),
	domain.DepartmentMarketing: tiers(domain.VisibilityAll, domain.VisibilityInternal),
	domain.DepartmentRD:        tiers(domain.VisibilityAll, domain.VisibilityInternal, domain.VisibilityOpOnly, domain.VisibilityRdOnly),
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// the Employee grant.
func CapabilitiesFor(role domain.Role) CapabilitySet {
	if set, ok := roleCapabilities[role]; ok {
		return set
	}
	return roleCapabilities[domain.RoleEmployee]
}

// VisibilitiesFor returns the read tiers for a department. Departments
// without an entry only read the public tier.
func VisibilitiesFor(dept domain.Department) VisibilitySet {
	if set, ok := departmentVisibility[dept]; ok {
		return set
	}
	return tiers(domain.VisibilityAll)
}
