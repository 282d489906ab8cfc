package events

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketTransitioned    EventType = "ticket_transitioned"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventSlaWarning            EventType = "sla_warning"
	EventSlaBreached           EventType = "sla_breached"
)

// Actor encapsulates the acting identity for an event. For view-as requests
// this is always the real admin, never the impersonated user.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by the lifecycle engine or sweep.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	TicketType   domain.TicketType     `json:"ticket_type"`
	InitialNode  domain.Node           `json:"initial_node"`
	Priority     domain.TicketPriority `json:"priority"`
	ParentID     *string               `json:"parent_ticket_id,omitempty"`
}

// TicketTransitionedPayload payload.
type TicketTransitionedPayload struct {
	FromNode      domain.Node  `json:"from_node"`
	ToNode        domain.Node  `json:"to_node"`
	BreachedExit  bool         `json:"breached_exit"`
	BreachCounter int          `json:"breach_counter"`
	SlaDueAt      *time.Time   `json:"sla_due_at,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	SlaDueAt    *time.Time            `json:"sla_due_at,omitempty"`
}

// SlaStatePayload payload for sweep warning/breach events.
type SlaStatePayload struct {
	TicketNumber     string      `json:"ticket_number"`
	Node             domain.Node `json:"node"`
	AssignedTo       *string     `json:"assigned_to,omitempty"`
	RemainingPercent *float64    `json:"remaining_percent,omitempty"`
}
