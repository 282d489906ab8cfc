package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketType == "" || strings.TrimSpace(req.ProblemSummary) == "" {
		return apperrors.NewValidationError("ticket_type and problem_summary required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), identity, service.CreateTicketInput{
		TicketType:     req.TicketType,
		Priority:       req.Priority,
		ChannelCode:    req.ChannelCode,
		AccountID:      req.AccountID,
		ContactID:      req.ContactID,
		DealerID:       req.DealerID,
		Region:         req.Region,
		ProductName:    req.ProductName,
		SerialNumber:   req.SerialNumber,
		PurchaseDate:   req.PurchaseDate,
		ProblemSummary: req.ProblemSummary,
		Visibility:     req.Visibility,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListTickets(c.Context(), identity, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.GetTicket(c.Context(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	transitions, err := h.service.Transitions(c.Context(), identity, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, transitions)})
}

// GetTicketByNumber GET /tickets/number/:number.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.GetTicketByNumber(c.Context(), identity, c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetNode == "" {
		return apperrors.NewValidationError("target_node required", nil)
	}
	ticket, err := h.service.Transition(c.Context(), identity, c.Params("id"), req.TargetNode, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AssignTicket(c.Context(), identity, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.Context(), identity, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Convert POST /tickets/:id/convert.
func (h *TicketsHandler) Convert(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	child, err := h.service.ConvertInquiry(c.Context(), identity, c.Params("id"), req.TargetType)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(child)})
}

// ListActivities GET /tickets/:id/activities.
func (h *TicketsHandler) ListActivities(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 100)
	activities, err := h.service.ListActivities(c.Context(), identity, c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, activityResponse(&activities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	activity, err := h.service.AddComment(c.Context(), identity, c.Params("id"), req.Content, req.Visibility)
	if err != nil {
		return err
	}
	resp := activityResponse(activity)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resp})
}

// RefreshWarranty POST /tickets/:id/warranty/refresh.
func (h *TicketsHandler) RefreshWarranty(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, verdict, err := h.service.RefreshWarranty(c.Context(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket": ticketSummary(ticket),
		"warranty": dto.WarrantyResponse{
			IsWarranty:    verdict.IsWarranty,
			EndDate:       verdict.EndDate,
			DaysRemaining: verdict.DaysRemaining,
			Status:        string(verdict.Status),
		},
	}})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if typeStr := c.Query("type"); typeStr != "" {
		t := domain.TicketType(typeStr)
		filter.TicketType = &t
	}
	if nodeStr := c.Query("node"); nodeStr != "" {
		n := domain.Node(nodeStr)
		filter.CurrentNode = &n
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if slaStr := c.Query("sla_status"); slaStr != "" {
		for _, part := range strings.Split(slaStr, ",") {
			filter.SlaStatuses = append(filter.SlaStatuses, domain.SlaStatus(strings.TrimSpace(part)))
		}
	}
	if dealer := c.Query("dealer_id"); dealer != "" {
		filter.DealerID = &dealer
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		TicketType:     ticket.TicketType,
		CurrentNode:    ticket.CurrentNode,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		SlaDueAt:       ticket.SlaDueAt,
		SlaStatus:      ticket.SlaStatus,
		BreachCounter:  ticket.BreachCounter,
		DealerID:       ticket.DealerID,
		ProductName:    ticket.ProductName,
		ProblemSummary: ticket.ProblemSummary,
		AssignedTo:     ticket.AssignedTo,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, transitions []domain.Node) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketSummary:  ticketSummary(ticket),
		NodeEnteredAt:  ticket.NodeEnteredAt,
		AccountID:      ticket.AccountID,
		ContactID:      ticket.ContactID,
		Region:         ticket.Region,
		ChannelCode:    ticket.ChannelCode,
		SerialNumber:   ticket.SerialNumber,
		PurchaseDate:   ticket.PurchaseDate,
		IsWarranty:     ticket.IsWarranty,
		SubmittedBy:    ticket.SubmittedBy,
		Participants:   ticket.Participants,
		ParentTicketID: ticket.ParentTicketID,
		Transitions:    transitions,
	}
}

func activityResponse(activity *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:         activity.ID,
		Type:       activity.Type,
		Content:    activity.Content,
		FromNode:   activity.FromNode,
		ToNode:     activity.ToNode,
		ActorID:    activity.ActorID,
		ActorName:  activity.ActorName,
		Visibility: activity.Visibility,
		CreatedAt:  activity.CreatedAt,
	}
}
