package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/service-desk/internal/domain"
)

func strPtr(s string) *string { return &s }

func admin() *domain.User {
	return &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
}

func opEmployee() *domain.User {
	return &domain.User{ID: "emp-1", Role: domain.RoleEmployee, Department: domain.DepartmentOperation}
}

func marketingEmployee() *domain.User {
	return &domain.User{ID: "emp-2", Role: domain.RoleEmployee, Department: domain.DepartmentMarketing}
}

func dealer(id, dealerID string) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleDealer, DealerID: strPtr(dealerID)}
}

func dealerTicket(dealerID string) *domain.Ticket {
	return &domain.Ticket{
		ID:          "t-1",
		DealerID:    strPtr(dealerID),
		SubmittedBy: "someone-else",
		Status:      domain.TicketStatusOpen,
		Visibility:  domain.VisibilityAll,
	}
}

func TestDealerScopedToOwnDealership(t *testing.T) {
	d := dealer("u-7", "dealer-7")

	assert.True(t, CanAccessTicket(Identity{Actor: d}, dealerTicket("dealer-7")))
	assert.False(t, CanAccessTicket(Identity{Actor: d}, dealerTicket("dealer-9")))

	// A dealer ticket without a dealership is invisible to dealers.
	orphan := dealerTicket("dealer-7")
	orphan.DealerID = nil
	assert.False(t, CanAccessTicket(Identity{Actor: d}, orphan))
}

func TestAdminSeesEverything(t *testing.T) {
	ticket := dealerTicket("dealer-9")
	ticket.Visibility = domain.VisibilityRdOnly
	assert.True(t, CanAccessTicket(Identity{Actor: admin()}, ticket))
}

func TestDepartmentVisibility(t *testing.T) {
	ticket := dealerTicket("dealer-1")

	ticket.Visibility = domain.VisibilityOpOnly
	assert.True(t, CanAccessTicket(Identity{Actor: opEmployee()}, ticket))
	assert.False(t, CanAccessTicket(Identity{Actor: marketingEmployee()}, ticket))

	ticket.Visibility = domain.VisibilityInternal
	assert.True(t, CanAccessTicket(Identity{Actor: marketingEmployee()}, ticket))

	ticket.Visibility = domain.VisibilityRdOnly
	assert.False(t, CanAccessTicket(Identity{Actor: opEmployee()}, ticket))
}

func TestParticipantsSeeRestrictedTickets(t *testing.T) {
	ticket := dealerTicket("dealer-1")
	ticket.Visibility = domain.VisibilityRdOnly

	emp := opEmployee()
	assert.False(t, CanAccessTicket(Identity{Actor: emp}, ticket))

	ticket.Participants = []string{emp.ID}
	assert.True(t, CanAccessTicket(Identity{Actor: emp}, ticket))

	ticket.Participants = nil
	ticket.AssignedTo = strPtr(emp.ID)
	assert.True(t, CanAccessTicket(Identity{Actor: emp}, ticket))
}

func TestViewAsNarrowsNeverWidens(t *testing.T) {
	ticket := dealerTicket("dealer-9")
	a := admin()

	// Admin viewing as a dealer of another dealership loses access.
	id := Identity{Actor: a, ViewAs: dealer("u-7", "dealer-7")}
	assert.False(t, CanAccessTicket(id, ticket))

	// Viewing as the matching dealer keeps it.
	id = Identity{Actor: a, ViewAs: dealer("u-9", "dealer-9")}
	assert.True(t, CanAccessTicket(id, ticket))

	// Only admins may use view-as.
	assert.True(t, CanUseViewAs(a))
	assert.False(t, CanUseViewAs(opEmployee()))
	assert.False(t, CanUseViewAs(dealer("u-7", "dealer-7")))
}

func TestViewAsWritesStayWithActor(t *testing.T) {
	ticket := dealerTicket("dealer-9")
	ticket.Visibility = domain.VisibilityInternal

	// Even while viewing as a dealer, the admin's own edit rights apply.
	id := Identity{Actor: admin(), ViewAs: dealer("u-7", "dealer-7")}
	assert.True(t, CanTransitionTicket(id, ticket))

	// And a non-admin actor gains nothing by having ViewAs set.
	id = Identity{Actor: dealer("u-7", "dealer-7"), ViewAs: admin()}
	assert.False(t, CanEditTicket(id.Actor, ticket))
}

func TestCanEditTicket(t *testing.T) {
	ticket := dealerTicket("dealer-1")

	assert.True(t, CanEditTicket(admin(), ticket))

	emp := opEmployee()
	assert.False(t, CanEditTicket(emp, ticket))
	ticket.AssignedTo = strPtr(emp.ID)
	assert.True(t, CanEditTicket(emp, ticket))

	// Submitters may edit only while the ticket is open.
	submitter := dealer("u-5", "dealer-1")
	ticket.AssignedTo = nil
	ticket.SubmittedBy = submitter.ID
	ticket.Status = domain.TicketStatusOpen
	assert.True(t, CanEditTicket(submitter, ticket))
	ticket.Status = domain.TicketStatusClosed
	assert.False(t, CanEditTicket(submitter, ticket))
}

func TestAssignmentRules(t *testing.T) {
	ticket := dealerTicket("dealer-1")

	assert.True(t, CanAssignTicket(admin(), ticket))
	assert.True(t, CanAssignTicket(opEmployee(), ticket))
	assert.False(t, CanAssignTicket(dealer("u-7", "dealer-7"), ticket))

	// Non-admins only assign within their own department.
	assert.True(t, CanAssignTo(opEmployee(), &domain.User{ID: "x", Department: domain.DepartmentOperation}))
	assert.False(t, CanAssignTo(opEmployee(), &domain.User{ID: "x", Department: domain.DepartmentRD}))
	assert.True(t, CanAssignTo(admin(), &domain.User{ID: "x", Department: domain.DepartmentRD}))
}

func TestActivityVisibility(t *testing.T) {
	public := &domain.Activity{Visibility: domain.VisibilityAll}
	internal := &domain.Activity{Visibility: domain.VisibilityInternal}
	opOnly := &domain.Activity{Visibility: domain.VisibilityOpOnly}

	d := Identity{Actor: dealer("u-7", "dealer-7")}
	assert.True(t, CanViewActivity(d, public))
	assert.False(t, CanViewActivity(d, internal))

	m := Identity{Actor: marketingEmployee()}
	assert.True(t, CanViewActivity(m, internal))
	assert.False(t, CanViewActivity(m, opOnly))

	assert.True(t, CanViewActivity(Identity{Actor: admin()}, opOnly))
}

func TestAllowedVisibilities(t *testing.T) {
	assert.Len(t, AllowedVisibilities(Identity{Actor: admin()}), 4)
	assert.Equal(t,
		[]domain.Visibility{domain.VisibilityAll},
		AllowedVisibilities(Identity{Actor: dealer("u-7", "dealer-7")}))
	assert.Equal(t,
		[]domain.Visibility{domain.VisibilityAll, domain.VisibilityInternal, domain.VisibilityOpOnly},
		AllowedVisibilities(Identity{Actor: opEmployee()}))
}
