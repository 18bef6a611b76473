package helpdesk

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societyhub/societyhub/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const ticketColumns = `id, society_id, title, description, priority, status, reporter_id, assignee_id, escalated, created_at, updated_at, resolved_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.SocietyID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.ReporterID, &t.AssigneeID, &t.Escalated, &t.CreatedAt, &t.UpdatedAt, &t.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, shared.ErrNotFound
	}
	return t, err
}

// CreateTicket inserts an open ticket.
func (r *Repository) CreateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tickets (society_id, title, description, priority, status, reporter_id, escalated, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
		 RETURNING `+ticketColumns,
		t.SocietyID, t.Title, t.Description, t.Priority, StatusOpen, t.ReporterID,
	)
	return scanTicket(row)
}

// GetTicket returns one ticket.
func (r *Repository) GetTicket(ctx context.Context, societyID, id int64) (Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND society_id = $2`, id, societyID)
	return scanTicket(row)
}

// ListTickets returns a society's tickets, newest first. Empty filters
// match everything.
func (r *Repository) ListTickets(ctx context.Context, societyID int64, status, priority string) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE society_id = $1 AND ($2 = '' OR status = $2) AND ($3 = '' OR priority = $3)
		 ORDER BY created_at DESC`,
		societyID, status, priority,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTicket persists status, priority, assignee, escalation and
// resolution time.
func (r *Repository) UpdateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tickets SET status = $2, priority = $3, assignee_id = $4, escalated = $5, resolved_at = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+ticketColumns,
		t.ID, t.Status, t.Priority, t.AssigneeID, t.Escalated, t.ResolvedAt,
	)
	return scanTicket(row)
}

// AddComment appends to the ticket thread.
func (r *Repository) AddComment(ctx context.Context, c Comment) (Comment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO ticket_comments (ticket_id, author_id, body, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, ticket_id, author_id, body, created_at`,
		c.TicketID, c.AuthorID, c.Body,
	)
	var created Comment
	err := row.Scan(&created.ID, &created.TicketID, &created.AuthorID, &created.Body, &created.CreatedAt)
	return created, err
}

// ListComments returns a ticket's thread, oldest first.
func (r *Repository) ListComments(ctx context.Context, ticketID int64) ([]Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticket_id, author_id, body, created_at
		 FROM ticket_comments WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListStale returns unescalated open or in-progress tickets untouched
// since the cutoff.
func (r *Repository) ListStale(ctx context.Context, cutoff time.Time) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status IN ($1, $2) AND escalated = FALSE AND updated_at < $3
		 ORDER BY updated_at`,
		StatusOpen, StatusInProgress, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
