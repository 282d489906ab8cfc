package domain

import "time"

// TicketType selects the workflow graph a ticket moves through.
type TicketType string

const (
	TicketTypeInquiry TicketType = "inquiry"
	TicketTypeRMA     TicketType = "rma"
	TicketTypeSVC     TicketType = "svc"
)

// Node is a named state within a ticket type's workflow graph.
type Node string

const (
	// Inquiry flow.
	NodeDraft           Node = "draft"
	NodeInProgress      Node = "in_progress"
	NodeWaitingCustomer Node = "waiting_customer"
	NodeResolved        Node = "resolved"
	NodeAutoClosed      Node = "auto_closed"
	NodeConverted       Node = "converted"

	// RMA flow.
	NodeSubmitted    Node = "submitted"
	NodeMsReview     Node = "ms_review"
	NodeOpReceiving  Node = "op_receiving"
	NodeOpDiagnosing Node = "op_diagnosing"
	NodeOpRepairing  Node = "op_repairing"
	NodeOpQA         Node = "op_qa"
	NodeMsClosing    Node = "ms_closing"

	// SVC (dealer repair) flow.
	NodeGeReview    Node = "ge_review"
	NodeDlReceiving Node = "dl_receiving"
	NodeDlRepairing Node = "dl_repairing"
	NodeDlQA        Node = "dl_qa"
	NodeGeClosing   Node = "ge_closing"

	// Shared terminals.
	NodeClosed    Node = "closed"
	NodeCancelled Node = "cancelled"
)

// TicketStatus is the coarse summary bucket derived from the current node.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// TicketPriority drives the SLA duration matrix.
type TicketPriority string

const (
	TicketPriorityP0 TicketPriority = "P0"
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
)

// SlaStatus is the live deadline classification for the current node.
type SlaStatus string

const (
	SlaStatusNormal   SlaStatus = "normal"
	SlaStatusWarning  SlaStatus = "warning"
	SlaStatusBreached SlaStatus = "breached"
)

// Ticket is the single aggregate for all three service ticket types.
type Ticket struct {
	ID           string
	TicketNumber string
	TicketType   TicketType

	CurrentNode   Node
	Status        TicketStatus
	Priority      TicketPriority
	NodeEnteredAt time.Time
	SlaDueAt      *time.Time
	SlaStatus     SlaStatus
	BreachCounter int

	AccountID   *string
	ContactID   *string
	DealerID    *string
	Region      *string
	ChannelCode string

	ProductName  *string
	SerialNumber *string
	PurchaseDate *time.Time
	IsWarranty   *bool

	ProblemSummary string
	Visibility     Visibility

	AssignedTo   *string
	SubmittedBy  string
	Participants []string

	ParentTicketID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsParticipant reports whether the user id is a listed collaborator.
func (t *Ticket) IsParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
