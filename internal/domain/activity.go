package domain

import "time"

// Visibility restricts who may read an activity or ticket.
type Visibility string

const (
	VisibilityAll      Visibility = "all"
	VisibilityInternal Visibility = "internal"
	VisibilityOpOnly   Visibility = "op_only"
	VisibilityRdOnly   Visibility = "rd_only"
)

// ActivityType captures what happened on a ticket.
type ActivityType string

const (
	ActivityStatusChange   ActivityType = "status_change"
	ActivityAssignment     ActivityType = "assignment"
	ActivityPriorityChange ActivityType = "priority_change"
	ActivityComment        ActivityType = "comment"
)

// Activity is an immutable ticket timeline entry.
type Activity struct {
	ID         string
	TicketID   string
	Type       ActivityType
	Content    string
	FromNode   *Node
	ToNode     *Node
	ActorID    string
	ActorName  string
	Visibility Visibility
	CreatedAt  time.Time
}
