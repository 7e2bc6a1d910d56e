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

// UpdateFilter captures progress-update list parameters.
type UpdateFilter struct {
	TicketID   *string
	PublicOnly bool
	Limit      int
	Offset     int
}

// TicketUpdateRepository manages the per-ticket progress thread.
type TicketUpdateRepository interface {
	Create(ctx context.Context, update *domain.TicketUpdate) error
	GetByID(ctx context.Context, id string) (*domain.TicketUpdate, error)
	Update(ctx context.Context, update *domain.TicketUpdate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UpdateFilter) ([]domain.TicketUpdate, error)
}

type ticketUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewTicketUpdateRepository builds repository.
func NewTicketUpdateRepository(pool *pgxpool.Pool) TicketUpdateRepository {
	return &ticketUpdateRepository{pool: pool}
}

func (r *ticketUpdateRepository) Create(ctx context.Context, update *domain.TicketUpdate) error {
	var spentSeconds *int64
	if update.TimeSpent != nil {
		s := int64(update.TimeSpent.Seconds())
		spentSeconds = &s
	}
	const query = `
        INSERT INTO ticket_updates (ticket_id, title, comment, user_id, is_public, new_status, time_spent_seconds)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, date`
	return r.pool.QueryRow(ctx, query,
		update.TicketID,
		update.Title,
		update.Comment,
		update.UserID,
		update.IsPublic,
		update.NewStatus,
		spentSeconds,
	).Scan(&update.ID, &update.Date)
}

func (r *ticketUpdateRepository) GetByID(ctx context.Context, id string) (*domain.TicketUpdate, error) {
	const query = `
        SELECT id, ticket_id, date, title, comment, user_id, is_public, new_status, time_spent_seconds
        FROM ticket_updates WHERE id=$1`
	var update domain.TicketUpdate
	if err := scanUpdate(r.pool.QueryRow(ctx, query, id), &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// Update rewrites the mutable columns; date, status change and time spent
// are immutable once recorded.
func (r *ticketUpdateRepository) Update(ctx context.Context, update *domain.TicketUpdate) error {
	const query = `UPDATE ticket_updates SET title=$1, comment=$2, is_public=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, update.Title, update.Comment, update.IsPublic, update.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketUpdateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_updates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns updates ascending by date; the thread reads oldest-first.
func (r *ticketUpdateRepository) List(ctx context.Context, filter UpdateFilter) ([]domain.TicketUpdate, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.PublicOnly {
		clauses = append(clauses, "is_public = TRUE")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, ticket_id, date, title, comment, user_id, is_public, new_status, time_spent_seconds
        FROM ticket_updates WHERE %s ORDER BY date ASC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketUpdate
	for rows.Next() {
		var update domain.TicketUpdate
		if err := scanUpdate(rows, &update); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}

func scanUpdate(row pgx.Row, update *domain.TicketUpdate) error {
	var spentSeconds *int64
	if err := row.Scan(
		&update.ID,
		&update.TicketID,
		&update.Date,
		&update.Title,
		&update.Comment,
		&update.UserID,
		&update.IsPublic,
		&update.NewStatus,
		&spentSeconds,
	); err != nil {
		return err
	}
	if spentSeconds != nil {
		d := time.Duration(*spentSeconds) * time.Second
		update.TimeSpent = &d
	}
	return nil
}
