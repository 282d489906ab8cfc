package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	TicketType  *domain.TicketType
	CurrentNode *domain.Node
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SlaStatuses []domain.SlaStatus
	DealerID    *string
	AssigneeID  *string
	SubmitterID *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. Each Update is a single
// atomic row write; the engine owns the row's mutable fields for the duration
// of a transition.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListOpenWithSlaDue returns non-terminal tickets carrying a deadline,
	// for the sweep.
	ListOpenWithSlaDue(ctx context.Context) ([]domain.Ticket, error)
	// ListResolvedBefore returns resolved tickets whose node entry time is
	// older than the cutoff, for the auto-close job.
	ListResolvedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	// UpdateSlaStatus writes only sla_status and updated_at so the sweep can
	// never clobber a concurrent transition's node fields.
	UpdateSlaStatus(ctx context.Context, id string, status domain.SlaStatus, at time.Time) error
	// UpdateWarrantyFlag writes only is_warranty and updated_at.
	UpdateWarrantyFlag(ctx context.Context, id string, isWarranty *bool, at time.Time) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, ticket_type, current_node, status, priority,
	node_entered_at, sla_due_at, sla_status, breach_counter,
	account_id, contact_id, dealer_id, region, channel_code,
	product_name, serial_number, purchase_date, is_warranty,
	problem_summary, visibility, assigned_to, submitted_by, participants,
	parent_ticket_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, ticket_type, current_node, status, priority,
            node_entered_at, sla_due_at, sla_status, breach_counter,
            account_id, contact_id, dealer_id, region, channel_code,
            product_name, serial_number, purchase_date, is_warranty,
            problem_summary, visibility, assigned_to, submitted_by, participants, parent_ticket_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.TicketType,
		ticket.CurrentNode,
		ticket.Status,
		ticket.Priority,
		ticket.NodeEnteredAt,
		ticket.SlaDueAt,
		ticket.SlaStatus,
		ticket.BreachCounter,
		ticket.AccountID,
		ticket.ContactID,
		ticket.DealerID,
		ticket.Region,
		ticket.ChannelCode,
		ticket.ProductName,
		ticket.SerialNumber,
		ticket.PurchaseDate,
		ticket.IsWarranty,
		ticket.ProblemSummary,
		ticket.Visibility,
		ticket.AssignedTo,
		ticket.SubmittedBy,
		ticket.Participants,
		ticket.ParentTicketID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET current_node=$1, status=$2, priority=$3,
            node_entered_at=$4, sla_due_at=$5, sla_status=$6, breach_counter=$7,
            product_name=$8, serial_number=$9, purchase_date=$10, is_warranty=$11,
            problem_summary=$12, visibility=$13, assigned_to=$14, participants=$15,
            updated_at=NOW()
        WHERE id=$16`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.CurrentNode,
		ticket.Status,
		ticket.Priority,
		ticket.NodeEnteredAt,
		ticket.SlaDueAt,
		ticket.SlaStatus,
		ticket.BreachCounter,
		ticket.ProductName,
		ticket.SerialNumber,
		ticket.PurchaseDate,
		ticket.IsWarranty,
		ticket.ProblemSummary,
		ticket.Visibility,
		ticket.AssignedTo,
		ticket.Participants,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	conditions := []string{"1=1"}
	args := []any{}
	idx := 1

	add := func(cond string, val any) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, val)
		idx++
	}

	if filter.TicketType != nil {
		add("ticket_type=$%d", *filter.TicketType)
	}
	if filter.CurrentNode != nil {
		add("current_node=$%d", *filter.CurrentNode)
	}
	if len(filter.Statuses) > 0 {
		add("status=ANY($%d)", filter.Statuses)
	}
	if len(filter.Priorities) > 0 {
		add("priority=ANY($%d)", filter.Priorities)
	}
	if len(filter.SlaStatuses) > 0 {
		add("sla_status=ANY($%d)", filter.SlaStatuses)
	}
	if filter.DealerID != nil {
		add("dealer_id=$%d", *filter.DealerID)
	}
	if filter.AssigneeID != nil {
		add("assigned_to=$%d", *filter.AssigneeID)
	}
	if filter.SubmitterID != nil {
		add("submitted_by=$%d", *filter.SubmitterID)
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		term := "%" + strings.TrimSpace(*filter.SearchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf("(ticket_number ILIKE $%d OR problem_summary ILIKE $%d)", idx, idx))
		args = append(args, term)
		idx++
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("created_at <= $%d", *filter.CreatedTo)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(conditions, " AND "), limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOpenWithSlaDue(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE sla_due_at IS NOT NULL
          AND status NOT IN ('closed','cancelled','resolved')`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListResolvedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE current_node='resolved' AND node_entered_at < $1`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateSlaStatus(ctx context.Context, id string, status domain.SlaStatus, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET sla_status=$1, updated_at=$2 WHERE id=$3`, status, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateWarrantyFlag(ctx context.Context, id string, isWarranty *bool, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET is_warranty=$1, updated_at=$2 WHERE id=$3`, isWarranty, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.ID,
		&t.TicketNumber,
		&t.TicketType,
		&t.CurrentNode,
		&t.Status,
		&t.Priority,
		&t.NodeEnteredAt,
		&t.SlaDueAt,
		&t.SlaStatus,
		&t.BreachCounter,
		&t.AccountID,
		&t.ContactID,
		&t.DealerID,
		&t.Region,
		&t.ChannelCode,
		&t.ProductName,
		&t.SerialNumber,
		&t.PurchaseDate,
		&t.IsWarranty,
		&t.ProblemSummary,
		&t.Visibility,
		&t.AssignedTo,
		&t.SubmittedBy,
		&t.Participants,
		&t.ParentTicketID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}
