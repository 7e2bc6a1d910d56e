package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// slaInterval is the SQL form of the priority SLA table, used by the
// overdue/upcoming filters so the predicate matches domain.SLAFor.
const slaInterval = `(CASE priority
        WHEN 1 THEN INTERVAL '4 hours'
        WHEN 2 THEN INTERVAL '8 hours'
        WHEN 4 THEN INTERVAL '72 hours'
        ELSE INTERVAL '24 hours' END)`

// TicketFilter captures list query parameters.
type TicketFilter struct {
	Search       string
	Statuses     []domain.TicketStatus
	Type         *domain.TicketType
	DepartmentID *string
	Priority     *int
	AssignedToID *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	OverdueOnly  bool
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByReference(ctx context.Context, ref string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
	TouchModified(ctx context.Context, id string, at time.Time) error
	ReplaceRelated(ctx context.Context, id string, relatedIDs []string) error
	ListRelatedIDs(ctx context.Context, id string) ([]string, error)
	Stats(ctx context.Context, userID string) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, reference, ticket_type, title, description, department_id,
        priority, impact, urgency, reporter_name, reporter_email, reporter_phone,
        affected_service, assigned_to_id, status, resolution, parent_problem_id,
        created, modified, resolved_date, closed_date`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (reference, ticket_type, title, description, department_id,
            priority, impact, urgency, reporter_name, reporter_email, reporter_phone,
            affected_service, assigned_to_id, status, resolution, parent_problem_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created, modified`
	return r.pool.QueryRow(ctx, query,
		ticket.Reference,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.DepartmentID,
		ticket.Priority,
		ticket.Impact,
		ticket.Urgency,
		ticket.ReporterName,
		ticket.ReporterEmail,
		ticket.ReporterPhone,
		ticket.AffectedService,
		ticket.AssignedToID,
		ticket.Status,
		ticket.Resolution,
		ticket.ParentProblemID,
	).Scan(&ticket.ID, &ticket.Created, &ticket.Modified)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET ticket_type=$1, title=$2, description=$3, department_id=$4,
            priority=$5, impact=$6, urgency=$7, reporter_name=$8, reporter_email=$9,
            reporter_phone=$10, affected_service=$11, assigned_to_id=$12, status=$13,
            resolution=$14, parent_problem_id=$15, resolved_date=$16, closed_date=$17,
            modified=NOW()
        WHERE id=$18`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.DepartmentID,
		ticket.Priority,
		ticket.Impact,
		ticket.Urgency,
		ticket.ReporterName,
		ticket.ReporterEmail,
		ticket.ReporterPhone,
		ticket.AffectedService,
		ticket.AssignedToID,
		ticket.Status,
		ticket.Resolution,
		ticket.ParentProblemID,
		ticket.ResolvedDate,
		ticket.ClosedDate,
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

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByReference(ctx context.Context, ref string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE reference=$1`
	return r.fetchSingle(ctx, query, ref)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(reporter_name) LIKE %[1]s OR LOWER(reporter_email) LIKE %[1]s
              OR LOWER(affected_service) LIKE %[1]s OR LOWER(title) LIKE %[1]s
              OR LOWER(description) LIKE %[1]s)`, placeholder))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("ticket_type=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created <= $%d", len(args)))
	}
	if filter.OverdueOnly {
		clauses = append(clauses, "status IN ('new','in_progress','waiting')")
		clauses = append(clauses, "created + "+slaInterval+" < NOW()")
	}
	if filter.UpcomingOnly {
		clauses = append(clauses, "status IN ('new','in_progress','waiting')")
		clauses = append(clauses, "created + "+slaInterval+" BETWEEN NOW() AND NOW() + INTERVAL '24 hours'")
	}
	return clauses, args
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := buildTicketClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	order := "created DESC"
	if filter.UpcomingOnly {
		order = "created + " + slaInterval + " ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) TouchModified(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE tickets SET modified=$1 WHERE id=$2`, at, id)
	return err
}

func (r *ticketRepository) ReplaceRelated(ctx context.Context, id string, relatedIDs []string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM ticket_related_incidents WHERE ticket_id=$1`, id); err != nil {
		return err
	}
	for _, related := range relatedIDs {
		if related == id {
			continue
		}
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO ticket_related_incidents (ticket_id, related_id) VALUES ($1,$2)
             ON CONFLICT DO NOTHING`, id, related); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) ListRelatedIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT related_id FROM ticket_related_incidents WHERE ticket_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var related string
		if err := rows.Scan(&related); err != nil {
			return nil, err
		}
		ids = append(ids, related)
	}
	return ids, rows.Err()
}

// Stats aggregates counts fresh per request; nothing here is cached.
func (r *ticketRepository) Stats(ctx context.Context, userID string) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{
		ByStatus: make(map[domain.TicketStatus]int64),
		ByType:   make(map[domain.TicketType]int64),
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&stats.Total); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT ticket_type, COUNT(*) FROM tickets GROUP BY ticket_type`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t domain.TicketType
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByType[t] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets
         WHERE status IN ('new','in_progress','waiting')
           AND created + `+slaInterval+` < NOW()`).Scan(&stats.Overdue); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets
         WHERE status='resolved' AND resolved_date >= NOW() - INTERVAL '7 days'`).Scan(&stats.ResolvedLast7Days); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM tickets WHERE assigned_to_id=$1`, userID).Scan(&stats.MyAssigned); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Reference,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.DepartmentID,
		&ticket.Priority,
		&ticket.Impact,
		&ticket.Urgency,
		&ticket.ReporterName,
		&ticket.ReporterEmail,
		&ticket.ReporterPhone,
		&ticket.AffectedService,
		&ticket.AssignedToID,
		&ticket.Status,
		&ticket.Resolution,
		&ticket.ParentProblemID,
		&ticket.Created,
		&ticket.Modified,
		&ticket.ResolvedDate,
		&ticket.ClosedDate,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
