package authz

import (
	"github.com/spec-kit/service-desk/internal/domain"
)

// Identity is the read-only permission context for one request. Actor is the
// authenticated caller and stays the audit identity for every write. ViewAs,
// set only for admins, narrows read evaluation to another user's context — it
// never widens anything.
type Identity struct {
	Actor  *domain.User
	ViewAs *domain.User
}

// Reader returns the user whose context governs read evaluation.
func (id Identity) Reader() *domain.User {
	if id.ViewAs != nil {
		return id.ViewAs
	}
	return id.Actor
}

// CanUseViewAs reports whether the actor may adopt another user's read
// context. Only admins may; view-as is never treated as a role change for
// any other role.
func CanUseViewAs(user *domain.User) bool {
	if user == nil {
		return false
	}
	return CapabilitiesFor(user.Role).Has(CapViewAs)
}

// CanAccessTicket decides ticket read access for the effective reader.
func CanAccessTicket(id Identity, ticket *domain.Ticket) bool {
	reader := id.Reader()
	if reader == nil || ticket == nil {
		return false
	}
	if CapabilitiesFor(reader.Role).Has(CapViewAll) {
		return true
	}
	if reader.Role == domain.RoleDealer {
		return reader.DealerID != nil && ticket.DealerID != nil && *reader.DealerID == *ticket.DealerID
	}
	if ticket.IsParticipant(reader.ID) {
		return true
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo == reader.ID {
		return true
	}
	if ticket.SubmittedBy == reader.ID {
		return true
	}
	visibility := ticket.Visibility
	if visibility == "" {
		visibility = domain.VisibilityAll
	}
	return VisibilitiesFor(reader.Department).Has(visibility)
}

// CanViewActivity decides activity read access for the effective reader.
func CanViewActivity(id Identity, activity *domain.Activity) bool {
	reader := id.Reader()
	if reader == nil || activity == nil {
		return false
	}
	visibility := activity.Visibility
	if visibility == "" {
		visibility = domain.VisibilityAll
	}
	if visibility == domain.VisibilityAll {
		return true
	}
	if reader.Role == domain.RoleDealer {
		return false
	}
	if CapabilitiesFor(reader.Role).Has(CapViewAll) {
		return true
	}
	return VisibilitiesFor(reader.Department).Has(visibility)
}

// AllowedVisibilities lists the tiers the effective reader may see.
func AllowedVisibilities(id Identity) []domain.Visibility {
	reader := id.Reader()
	if reader == nil {
		return nil
	}
	if CapabilitiesFor(reader.Role).Has(CapViewAll) {
		return []domain.Visibility{domain.VisibilityAll, domain.VisibilityInternal, domain.VisibilityOpOnly, domain.VisibilityRdOnly}
	}
	if reader.Role == domain.RoleDealer {
		return []domain.Visibility{domain.VisibilityAll}
	}
	set := VisibilitiesFor(reader.Department)
	out := make([]domain.Visibility, 0, len(set))
	for _, v := range []domain.Visibility{domain.VisibilityAll, domain.VisibilityInternal, domain.VisibilityOpOnly, domain.VisibilityRdOnly} {
		if set.Has(v) {
			out = append(out, v)
		}
	}
	return out
}

// CanEditTicket decides edit access. Edits are writes, so the acting user is
// evaluated, never the view-as context.
func CanEditTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if CapabilitiesFor(user.Role).Has(CapEditAll) {
		return true
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo == user.ID {
		return true
	}
	return ticket.SubmittedBy == user.ID && ticket.Status == domain.TicketStatusOpen
}

// CanAssignTicket decides whether the acting user may assign the ticket at
// all; the target constraint is checked by CanAssignTo.
func CanAssignTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	set := CapabilitiesFor(user.Role)
	if !set.Has(CapAssign) {
		return false
	}
	if set.Has(CapEditAll) {
		return true
	}
	switch user.Department {
	case domain.DepartmentMarketing, domain.DepartmentOperation, domain.DepartmentRD:
		return true
	default:
		return false
	}
}

// CanAssignTo restricts non-admin assigners to targets in their own
// department.
func CanAssignTo(user, target *domain.User) bool {
	if user == nil || target == nil {
		return false
	}
	if CapabilitiesFor(user.Role).Has(CapEditAll) {
		return true
	}
	return user.Department == target.Department
}

// CanTransitionTicket gates workflow transitions: the actor must be able to
// both read and edit the ticket.
func CanTransitionTicket(id Identity, ticket *domain.Ticket) bool {
	if id.Actor == nil {
		return false
	}
	actorOnly := Identity{Actor: id.Actor}
	return CanAccessTicket(actorOnly, ticket) && CanEditTicket(id.Actor, ticket)
}

// CanManageUsers is admin-only.
func CanManageUsers(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdmin
}

// CanDeleteTicket is admin-only.
func CanDeleteTicket(user *domain.User) bool {
	return user != nil && CapabilitiesFor(user.Role).Has(CapDelete)
}
