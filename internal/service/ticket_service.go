package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/authz"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/sla"
	"github.com/spec-kit/service-desk/internal/warranty"
	"github.com/spec-kit/service-desk/internal/workflow"
	"github.com/spec-kit/service-desk/pkg/util/errorutil"
)

// TicketService is the lifecycle engine: it owns ticket creation, workflow
// transitions, assignment, priority changes and inquiry conversion. Every
// state change goes through here so the node, status bucket, SLA fields and
// activity timeline always move together.
type TicketService struct {
	tickets    repository.TicketRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	numbers    *TicketNumberGenerator
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// now is injectable for tests; breachOnCreate counts a breach for
	// back-dated tickets already past due at creation.
	now            func() time.Time
	breachOnCreate bool
}

// NewTicketService wires the lifecycle engine.
func NewTicketService(
	tickets repository.TicketRepository,
	activities repository.ActivityRepository,
	users repository.UserRepository,
	numbers *TicketNumberGenerator,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	breachOnCreate bool,
) *TicketService {
	return &TicketService{
		tickets:        tickets,
		activities:     activities,
		users:          users,
		numbers:        numbers,
		dispatcher:     dispatcher,
		logger:         logger,
		now:            time.Now,
		breachOnCreate: breachOnCreate,
	}
}

// WithClock overrides the engine clock. Test helper.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// CreateTicketInput carries the caller-supplied fields for a new ticket.
type CreateTicketInput struct {
	TicketType     domain.TicketType
	Priority       domain.TicketPriority
	ChannelCode    string
	AccountID      *string
	ContactID      *string
	DealerID       *string
	Region         *string
	ProductName    *string
	SerialNumber   *string
	PurchaseDate   *time.Time
	ProblemSummary string
	Visibility     domain.Visibility
	ParentTicketID *string
}

// CreateTicket opens a new ticket in its type's initial node, allocates the
// ticket number, stamps the warranty verdict and arms the first SLA deadline.
func (s *TicketService) CreateTicket(ctx context.Context, id authz.Identity, input CreateTicketInput) (*domain.Ticket, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}

	graph, ok := workflow.GraphFor(input.TicketType)
	if !ok {
		return nil, errorutil.NewUnknownTicketType(string(input.TicketType))
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityP2
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = domain.VisibilityAll
	}

	channel := input.ChannelCode
	dealerID := input.DealerID
	if actor.Role == domain.RoleDealer {
		// Dealers always file against their own dealership.
		dealerID = actor.DealerID
		channel = "D"
	}
	if channel == "" {
		channel = "C"
	}

	now := s.now().UTC()
	number, err := s.numbers.Next(ctx, input.TicketType, channel, now)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	initial := graph.Initial()
	ticket := &domain.Ticket{
		TicketNumber:   number,
		TicketType:     input.TicketType,
		CurrentNode:    initial,
		Status:         workflow.StatusFor(initial),
		Priority:       priority,
		NodeEnteredAt:  now,
		SlaDueAt:       sla.DueAt(priority, initial, now),
		SlaStatus:      domain.SlaStatusNormal,
		AccountID:      input.AccountID,
		ContactID:      input.ContactID,
		DealerID:       dealerID,
		Region:         input.Region,
		ChannelCode:    channel,
		ProductName:    input.ProductName,
		SerialNumber:   input.SerialNumber,
		PurchaseDate:   input.PurchaseDate,
		ProblemSummary: input.ProblemSummary,
		Visibility:     visibility,
		SubmittedBy:    actor.ID,
		Participants:   []string{},
		ParentTicketID: input.ParentTicketID,
	}

	if input.ProductName != nil {
		verdict := warranty.CheckStatus(input.PurchaseDate, *input.ProductName, now)
		ticket.IsWarranty = verdict.IsWarranty
	}

	if s.breachOnCreate {
		check := sla.Evaluate(ticket.SlaDueAt, ticket.NodeEnteredAt, now)
		ticket.SlaStatus = check.Status
		if check.Status == domain.SlaStatusBreached {
			ticket.BreachCounter++
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.recordActivity(ctx, &domain.Activity{
		TicketID:   ticket.ID,
		Type:       domain.ActivityStatusChange,
		Content:    fmt.Sprintf("ticket created in %s", initial),
		ToNode:     &initial,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Visibility: domain.VisibilityAll,
	})

	s.publish(ctx, events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		TicketType:   ticket.TicketType,
		InitialNode:  initial,
		Priority:     ticket.Priority,
		ParentID:     ticket.ParentTicketID,
	})

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("type", string(ticket.TicketType)),
		zap.String("priority", string(ticket.Priority)),
	)
	return ticket, nil
}

// Transition moves a ticket along one workflow edge. The breach counter is
// settled against the node being exited before the new deadline is armed, so
// a late exit is counted exactly once.
func (s *TicketService) Transition(ctx context.Context, id authz.Identity, ticketID string, target domain.Node, note string) (*domain.Ticket, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	graph, ok := workflow.GraphFor(ticket.TicketType)
	if !ok {
		return nil, errorutil.NewUnknownTicketType(string(ticket.TicketType))
	}

	// Re-submitting the current node is a no-op, not an error, so retried
	// requests cannot double-count breaches.
	if target == ticket.CurrentNode {
		return ticket, nil
	}

	if !graph.IsValidTransition(ticket.CurrentNode, target) {
		return nil, errorutil.NewInvalidTransition(string(ticket.CurrentNode), string(target))
	}

	if !authz.CanTransitionTicket(id, ticket) {
		return nil, errorutil.NewPermissionDenied("not allowed to transition this ticket")
	}

	now := s.now().UTC()
	from := ticket.CurrentNode

	breachedExit := ticket.SlaDueAt != nil && now.After(*ticket.SlaDueAt)
	if breachedExit {
		ticket.BreachCounter++
	}

	ticket.CurrentNode = target
	ticket.Status = workflow.StatusFor(target)
	ticket.NodeEnteredAt = now
	ticket.SlaDueAt = sla.DueAt(ticket.Priority, target, now)
	ticket.SlaStatus = domain.SlaStatusNormal

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	content := fmt.Sprintf("moved from %s to %s", from, target)
	if note != "" {
		content = fmt.Sprintf("%s: %s", content, note)
	}
	s.recordActivity(ctx, &domain.Activity{
		TicketID:   ticket.ID,
		Type:       domain.ActivityStatusChange,
		Content:    content,
		FromNode:   &from,
		ToNode:     &target,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Visibility: domain.VisibilityAll,
	})

	s.publish(ctx, events.EventTicketTransitioned, ticket.ID, actor, events.TicketTransitionedPayload{
		FromNode:      from,
		ToNode:        target,
		BreachedExit:  breachedExit,
		BreachCounter: ticket.BreachCounter,
		SlaDueAt:      ticket.SlaDueAt,
	})

	s.logger.Info("ticket transitioned",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.Bool("breached_exit", breachedExit),
	)
	return ticket, nil
}

// Transitions returns the edges available from the ticket's current node.
func (s *TicketService) Transitions(ctx context.Context, id authz.Identity, ticketID string) ([]domain.Node, error) {
	ticket, err := s.GetTicket(ctx, id, ticketID)
	if err != nil {
		return nil, err
	}
	graph, ok := workflow.GraphFor(ticket.TicketType)
	if !ok {
		return nil, errorutil.NewUnknownTicketType(string(ticket.TicketType))
	}
	return graph.Transitions(ticket.CurrentNode), nil
}

// AssignTicket sets or clears the assignee. Non-admin assigners are limited
// to targets in their own department.
func (s *TicketService) AssignTicket(ctx context.Context, id authz.Identity, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	if !authz.CanAssignTicket(actor, ticket) {
		return nil, errorutil.NewPermissionDenied("not allowed to assign this ticket")
	}

	content := "assignment cleared"
	if assigneeID != nil {
		target, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return nil, errorutil.MapError(err)
		}
		if !authz.CanAssignTo(actor, target) {
			return nil, errorutil.NewPermissionDenied("assignment target outside your department")
		}
		content = fmt.Sprintf("assigned to %s", target.Name)
	}

	ticket.AssignedTo = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.recordActivity(ctx, &domain.Activity{
		TicketID:   ticket.ID,
		Type:       domain.ActivityAssignment,
		Content:    content,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Visibility: domain.VisibilityInternal,
	})

	s.publish(ctx, events.EventTicketAssigned, ticket.ID, actor, events.TicketAssignedPayload{
		AssigneeID: assigneeID,
	})
	return ticket, nil
}

// UpdatePriority changes the SLA tier. The deadline is recomputed against the
// unchanged node entry time: the ticket does not get fresh runway just
// because its priority moved.
func (s *TicketService) UpdatePriority(ctx context.Context, id authz.Identity, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}

	switch priority {
	case domain.TicketPriorityP0, domain.TicketPriorityP1, domain.TicketPriorityP2:
	default:
		return nil, errorutil.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if !authz.CanEditTicket(actor, ticket) {
		return nil, errorutil.NewPermissionDenied("not allowed to edit this ticket")
	}
	if priority == ticket.Priority {
		return ticket, nil
	}

	now := s.now().UTC()
	old := ticket.Priority
	ticket.Priority = priority
	ticket.SlaDueAt = sla.DueAt(priority, ticket.CurrentNode, ticket.NodeEnteredAt)
	ticket.SlaStatus = sla.Evaluate(ticket.SlaDueAt, ticket.NodeEnteredAt, now).Status

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.recordActivity(ctx, &domain.Activity{
		TicketID:   ticket.ID,
		Type:       domain.ActivityPriorityChange,
		Content:    fmt.Sprintf("priority changed from %s to %s", old, priority),
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Visibility: domain.VisibilityAll,
	})

	s.publish(ctx, events.EventTicketPriorityChanged, ticket.ID, actor, events.TicketPriorityChangedPayload{
		OldPriority: old,
		NewPriority: priority,
		SlaDueAt:    ticket.SlaDueAt,
	})
	return ticket, nil
}

// ConvertInquiry closes an inquiry into the converted node and opens a child
// rma or svc ticket that carries the inquiry's customer and product context.
func (s *TicketService) ConvertInquiry(ctx context.Context, id authz.Identity, ticketID string, targetType domain.TicketType) (*domain.Ticket, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	if targetType != domain.TicketTypeRMA && targetType != domain.TicketTypeSVC {
		return nil, errorutil.NewValidationError("conversion target must be rma or svc", map[string]any{"target_type": targetType})
	}

	parent, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if parent.TicketType != domain.TicketTypeInquiry {
		return nil, errorutil.NewValidationError("only inquiries can be converted", map[string]any{"ticket_type": parent.TicketType})
	}

	// The parent must legally reach converted from where it stands; this
	// also rejects conversion of already-terminal inquiries.
	if _, err := s.Transition(ctx, id, parent.ID, domain.NodeConverted, fmt.Sprintf("converted to %s", targetType)); err != nil {
		return nil, err
	}

	child, err := s.CreateTicket(ctx, id, CreateTicketInput{
		TicketType:     targetType,
		Priority:       parent.Priority,
		ChannelCode:    parent.ChannelCode,
		AccountID:      parent.AccountID,
		ContactID:      parent.ContactID,
		DealerID:       parent.DealerID,
		Region:         parent.Region,
		ProductName:    parent.ProductName,
		SerialNumber:   parent.SerialNumber,
		PurchaseDate:   parent.PurchaseDate,
		ProblemSummary: parent.ProblemSummary,
		Visibility:     parent.Visibility,
		ParentTicketID: &parent.ID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inquiry converted",
		zap.String("parent_id", parent.ID),
		zap.String("child_id", child.ID),
		zap.String("child_type", string(targetType)),
	)
	return child, nil
}

// AutoCloseResolved moves resolved inquiries that have sat untouched for the
// given window along the auto-close edge. Runs under the system identity on a
// schedule; the graph still validates every move.
func (s *TicketService) AutoCloseResolved(ctx context.Context, olderThan time.Duration) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-olderThan)
	candidates, err := s.tickets.ListResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range candidates {
		ticket := &candidates[i]
		graph, ok := workflow.GraphFor(ticket.TicketType)
		if !ok || !graph.IsValidTransition(ticket.CurrentNode, domain.NodeAutoClosed) {
			continue
		}

		from := ticket.CurrentNode
		ticket.CurrentNode = domain.NodeAutoClosed
		ticket.Status = workflow.StatusFor(domain.NodeAutoClosed)
		ticket.NodeEnteredAt = now
		ticket.SlaDueAt = nil
		ticket.SlaStatus = domain.SlaStatusNormal

		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Warn("auto-close update failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err),
			)
			continue
		}
		closed++

		to := domain.NodeAutoClosed
		s.recordActivity(ctx, &domain.Activity{
			TicketID:   ticket.ID,
			Type:       domain.ActivityStatusChange,
			Content:    "auto-closed after resolution window elapsed",
			FromNode:   &from,
			ToNode:     &to,
			ActorID:    "system",
			ActorName:  "system",
			Visibility: domain.VisibilityAll,
		})

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketTransitioned,
			TicketID:  ticket.ID,
			Actor:     events.Actor{UserID: "system", Role: domain.RoleAdmin},
			Timestamp: now,
			Payload: events.TicketTransitionedPayload{
				FromNode:      from,
				ToNode:        to,
				BreachCounter: ticket.BreachCounter,
			},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("auto-close event publish failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err),
			)
		}
	}

	if closed > 0 {
		s.logger.Info("resolved inquiries auto-closed", zap.Int("count", closed))
	}
	return closed, nil
}

// GetTicket loads a ticket the effective reader may see.
func (s *TicketService) GetTicket(ctx context.Context, id authz.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if !authz.CanAccessTicket(id, ticket) {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return ticket, nil
}

// GetTicketByNumber loads a ticket by its human-readable number.
func (s *TicketService) GetTicketByNumber(ctx context.Context, id authz.Identity, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if !authz.CanAccessTicket(id, ticket) {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_number": number})
	}
	return ticket, nil
}

// ListTickets returns the tickets visible to the effective reader. Dealer
// readers are pinned to their own dealership before the query runs; rows the
// reader still may not see are dropped after.
func (s *TicketService) ListTickets(ctx context.Context, id authz.Identity, filter repository.TicketFilter) ([]domain.Ticket, error) {
	reader := id.Reader()
	if reader == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	if reader.Role == domain.RoleDealer {
		if reader.DealerID == nil {
			return []domain.Ticket{}, nil
		}
		filter.DealerID = reader.DealerID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if authz.CanAccessTicket(id, &tickets[i]) {
			visible = append(visible, tickets[i])
		}
	}
	return visible, nil
}

// ListActivities returns the ticket timeline filtered to the visibility tiers
// the effective reader may see.
func (s *TicketService) ListActivities(ctx context.Context, id authz.Identity, ticketID string, limit, offset int) ([]domain.Activity, error) {
	if _, err := s.GetTicket(ctx, id, ticketID); err != nil {
		return nil, err
	}
	all, err := s.activities.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	visible := make([]domain.Activity, 0, len(all))
	for i := range all {
		if authz.CanViewActivity(id, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// AddComment appends a comment to the timeline. The requested visibility is
// clamped to the tiers the actor can read; dealers can only post public
// comments.
func (s *TicketService) AddComment(ctx context.Context, id authz.Identity, ticketID, content string, visibility domain.Visibility) (*domain.Activity, error) {
	actor := id.Actor
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	if content == "" {
		return nil, errorutil.NewValidationError("comment content is required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if !authz.CanAccessTicket(authz.Identity{Actor: actor}, ticket) {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": ticketID})
	}

	if visibility == "" {
		visibility = domain.VisibilityAll
	}
	if visibility != domain.VisibilityAll {
		probe := &domain.Activity{Visibility: visibility}
		if !authz.CanViewActivity(authz.Identity{Actor: actor}, probe) {
			return nil, errorutil.NewPermissionDenied("cannot post to that visibility tier")
		}
	}

	activity := &domain.Activity{
		TicketID:   ticket.ID,
		Type:       domain.ActivityComment,
		Content:    content,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Visibility: visibility,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, errorutil.MapError(err)
	}
	return activity, nil
}

// RefreshWarranty recomputes the warranty verdict from the stored purchase
// date and product name, writing only when the flag actually changed.
func (s *TicketService) RefreshWarranty(ctx context.Context, id authz.Identity, ticketID string) (*domain.Ticket, warranty.Result, error) {
	ticket, err := s.GetTicket(ctx, id, ticketID)
	if err != nil {
		return nil, warranty.Result{}, err
	}

	productName := ""
	if ticket.ProductName != nil {
		productName = *ticket.ProductName
	}
	now := s.now().UTC()
	verdict := warranty.CheckStatus(ticket.PurchaseDate, productName, now)

	if !boolPtrEqual(ticket.IsWarranty, verdict.IsWarranty) {
		if err := s.tickets.UpdateWarrantyFlag(ctx, ticket.ID, verdict.IsWarranty, now); err != nil {
			return nil, warranty.Result{}, errorutil.MapError(err)
		}
		ticket.IsWarranty = verdict.IsWarranty
		ticket.UpdatedAt = now
	}
	return ticket, verdict, nil
}

func (s *TicketService) recordActivity(ctx context.Context, activity *domain.Activity) {
	if err := s.activities.Create(ctx, activity); err != nil {
		// The timeline is best-effort relative to the state change that
		// already committed.
		s.logger.Warn("activity record failed",
			zap.String("ticket_id", activity.TicketID),
			zap.Error(err),
		)
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, actor *domain.User, payload any) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
