package helpdesk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/shared"
)

type memoryTicketRepo struct {
	tickets  map[int64]Ticket
	comments []Comment
	nextID   int64
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[int64]Ticket)}
}

func (r *memoryTicketRepo) CreateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	r.nextID++
	t.ID = r.nextID
	t.Status = StatusOpen
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tickets[t.ID] = t
	return t, nil
}

func (r *memoryTicketRepo) GetTicket(ctx context.Context, societyID, id int64) (Ticket, error) {
	t, ok := r.tickets[id]
	if !ok || t.SocietyID != societyID {
		return Ticket{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *memoryTicketRepo) ListTickets(ctx context.Context, societyID int64, status, priority string) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if t.SocietyID != societyID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if priority != "" && t.Priority != priority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryTicketRepo) UpdateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	if _, ok := r.tickets[t.ID]; !ok {
		return Ticket{}, shared.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	r.tickets[t.ID] = t
	return t, nil
}

func (r *memoryTicketRepo) AddComment(ctx context.Context, c Comment) (Comment, error) {
	c.ID = int64(len(r.comments) + 1)
	c.CreatedAt = time.Now()
	r.comments = append(r.comments, c)
	return c, nil
}

func (r *memoryTicketRepo) ListComments(ctx context.Context, ticketID int64) ([]Comment, error) {
	var out []Comment
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) ListStale(ctx context.Context, cutoff time.Time) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if (t.Status == StatusOpen || t.Status == StatusInProgress) && !t.Escalated && t.UpdatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

func openTestTicket(t *testing.T, svc *Service, priority string) Ticket {
	t.Helper()
	ticket, err := svc.Open(context.Background(), Ticket{
		SocietyID:  1,
		Title:      "Lift stuck on 4th floor",
		Priority:   priority,
		ReporterID: 9,
	})
	require.NoError(t, err)
	return ticket
}

func TestOpenTicketValidation(t *testing.T) {
	svc := NewService(newMemoryTicketRepo(), nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, Ticket{SocietyID: 1, ReporterID: 9, Priority: "high"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Open(ctx, Ticket{SocietyID: 1, Title: "x", ReporterID: 9, Priority: "catastrophic"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Open(ctx, Ticket{SocietyID: 1, Title: "x", Priority: "high"})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Missing priority defaults to medium.
	ticket, err := svc.Open(ctx, Ticket{SocietyID: 1, Title: "x", ReporterID: 9})
	require.NoError(t, err)
	require.Equal(t, PriorityMedium, ticket.Priority)
	require.Equal(t, StatusOpen, ticket.Status)
}

func TestTicketLifecycle(t *testing.T) {
	svc := NewService(newMemoryTicketRepo(), nil)
	ctx := context.Background()
	ticket := openTestTicket(t, svc, "high")

	// Cannot resolve before work starts.
	_, err := svc.Resolve(ctx, 1, ticket.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	assigned, err := svc.Assign(ctx, 1, ticket.ID, 42)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, assigned.Status)
	require.Equal(t, int64(42), *assigned.AssigneeID)

	// Reassignment while in progress is fine.
	reassigned, err := svc.Assign(ctx, 1, ticket.ID, 43)
	require.NoError(t, err)
	require.Equal(t, int64(43), *reassigned.AssigneeID)

	resolved, err := svc.Resolve(ctx, 1, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	reopened, err := svc.Reopen(ctx, 1, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, reopened.Status)
	require.Nil(t, reopened.ResolvedAt)
	require.Nil(t, reopened.AssigneeID)

	closed, err := svc.Close(ctx, 1, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)

	// Closed is terminal.
	_, err = svc.Assign(ctx, 1, ticket.ID, 42)
	require.ErrorIs(t, err, shared.ErrConflict)
	_, err = svc.Reopen(ctx, 1, ticket.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestComments(t *testing.T) {
	svc := NewService(newMemoryTicketRepo(), nil)
	ctx := context.Background()
	ticket := openTestTicket(t, svc, "low")

	c, err := svc.Comment(ctx, 1, Comment{TicketID: ticket.ID, AuthorID: 9, Body: "  plumber visiting tomorrow "})
	require.NoError(t, err)
	require.Equal(t, "plumber visiting tomorrow", c.Body)

	_, err = svc.Comment(ctx, 1, Comment{TicketID: ticket.ID, AuthorID: 9, Body: "   "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Close(ctx, 1, ticket.ID)
	require.NoError(t, err)
	_, err = svc.Comment(ctx, 1, Comment{TicketID: ticket.ID, AuthorID: 9, Body: "too late"})
	require.ErrorIs(t, err, shared.ErrConflict)

	// Ticket in another society is invisible.
	_, err = svc.Comment(ctx, 2, Comment{TicketID: ticket.ID, AuthorID: 9, Body: "hello"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEscalateStale(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	stale := openTestTicket(t, svc, "low")
	aged := repo.tickets[stale.ID]
	aged.UpdatedAt = time.Now().Add(-72 * time.Hour)
	repo.tickets[stale.ID] = aged

	fresh := openTestTicket(t, svc, "high")

	n, err := svc.EscalateStale(ctx, 48*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	escalated := repo.tickets[stale.ID]
	require.True(t, escalated.Escalated)
	require.Equal(t, PriorityMedium, escalated.Priority)
	require.False(t, repo.tickets[fresh.ID].Escalated)

	// A second sweep skips already escalated tickets.
	n, err = svc.EscalateStale(ctx, 48*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestEscalatePriorityCaps(t *testing.T) {
	require.Equal(t, PriorityMedium, EscalatePriority(PriorityLow))
	require.Equal(t, PriorityHigh, EscalatePriority(PriorityMedium))
	require.Equal(t, PriorityUrgent, EscalatePriority(PriorityHigh))
	require.Equal(t, PriorityUrgent, EscalatePriority(PriorityUrgent))
}
