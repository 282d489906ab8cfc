package dto

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketType     domain.TicketType     `json:"ticket_type"`
	Priority       domain.TicketPriority `json:"priority"`
	ChannelCode    string                `json:"channel_code"`
	AccountID      *string               `json:"account_id"`
	ContactID      *string               `json:"contact_id"`
	DealerID       *string               `json:"dealer_id"`
	Region         *string               `json:"region"`
	ProductName    *string               `json:"product_name"`
	SerialNumber   *string               `json:"serial_number"`
	PurchaseDate   *time.Time            `json:"purchase_date"`
	ProblemSummary string                `json:"problem_summary"`
	Visibility     domain.Visibility     `json:"visibility"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	TargetNode domain.Node `json:"target_node"`
	Note       string      `json:"note"`
}

// AssignRequest payload. A null assignee clears the assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// PriorityRequest payload.
type PriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// ConvertRequest payload.
type ConvertRequest struct {
	TargetType domain.TicketType `json:"target_type"`
}

// CommentRequest payload.
type CommentRequest struct {
	Content    string            `json:"content"`
	Visibility domain.Visibility `json:"visibility"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	TicketNumber   string                `json:"ticket_number"`
	TicketType     domain.TicketType     `json:"ticket_type"`
	CurrentNode    domain.Node           `json:"current_node"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	SlaDueAt       *time.Time            `json:"sla_due_at"`
	SlaStatus      domain.SlaStatus      `json:"sla_status"`
	BreachCounter  int                   `json:"breach_counter"`
	DealerID       *string               `json:"dealer_id"`
	ProductName    *string               `json:"product_name"`
	ProblemSummary string                `json:"problem_summary"`
	AssignedTo     *string               `json:"assigned_to"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	NodeEnteredAt  time.Time     `json:"node_entered_at"`
	AccountID      *string       `json:"account_id"`
	ContactID      *string       `json:"contact_id"`
	Region         *string       `json:"region"`
	ChannelCode    string        `json:"channel_code"`
	SerialNumber   *string       `json:"serial_number"`
	PurchaseDate   *time.Time    `json:"purchase_date"`
	IsWarranty     *bool         `json:"is_warranty"`
	SubmittedBy    string        `json:"submitted_by"`
	Participants   []string      `json:"participants"`
	ParentTicketID *string       `json:"parent_ticket_id"`
	Transitions    []domain.Node `json:"available_transitions"`
}

// ActivityResponse timeline entry.
type ActivityResponse struct {
	ID         string              `json:"id"`
	Type       domain.ActivityType `json:"type"`
	Content    string              `json:"content"`
	FromNode   *domain.Node        `json:"from_node,omitempty"`
	ToNode     *domain.Node        `json:"to_node,omitempty"`
	ActorID    string              `json:"actor_id"`
	ActorName  string              `json:"actor_name"`
	Visibility domain.Visibility   `json:"visibility"`
	CreatedAt  time.Time           `json:"created_at"`
}

// WarrantyResponse verdict.
type WarrantyResponse struct {
	IsWarranty    *bool      `json:"is_warranty"`
	EndDate       *time.Time `json:"end_date"`
	DaysRemaining *int       `json:"days_remaining"`
	Status        string     `json:"status"`
}
