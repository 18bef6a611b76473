package helpdesk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for tickets.
type RepositoryPort interface {
	CreateTicket(ctx context.Context, t Ticket) (Ticket, error)
	GetTicket(ctx context.Context, societyID, id int64) (Ticket, error)
	ListTickets(ctx context.Context, societyID int64, status, priority string) ([]Ticket, error)
	UpdateTicket(ctx context.Context, t Ticket) (Ticket, error)
	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, ticketID int64) ([]Comment, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]Ticket, error)
}

// Service handles helpdesk business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Open files a new ticket.
func (s *Service) Open(ctx context.Context, t Ticket) (Ticket, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Ticket{}, fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	t.Priority = strings.TrimSpace(strings.ToLower(t.Priority))
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if _, ok := priorityRank[t.Priority]; !ok {
		return Ticket{}, fmt.Errorf("%w: unknown priority %q", shared.ErrValidation, t.Priority)
	}
	if t.ReporterID <= 0 {
		return Ticket{}, fmt.Errorf("%w: reporter required", shared.ErrValidation)
	}
	return s.repo.CreateTicket(ctx, t)
}

// ListTickets returns tickets filtered by status and priority.
func (s *Service) ListTickets(ctx context.Context, societyID int64, status, priority string) ([]Ticket, error) {
	return s.repo.ListTickets(ctx, societyID, status, priority)
}

// GetTicket returns one ticket with its comment thread.
func (s *Service) GetTicket(ctx context.Context, societyID, id int64) (Ticket, []Comment, error) {
	t, err := s.repo.GetTicket(ctx, societyID, id)
	if err != nil {
		return Ticket{}, nil, err
	}
	comments, err := s.repo.ListComments(ctx, t.ID)
	if err != nil {
		return Ticket{}, nil, err
	}
	return t, comments, nil
}

// Assign puts a ticket in progress under the given assignee.
func (s *Service) Assign(ctx context.Context, societyID, ticketID, assigneeID int64) (Ticket, error) {
	if assigneeID <= 0 {
		return Ticket{}, fmt.Errorf("%w: assignee required", shared.ErrValidation)
	}
	t, err := s.repo.GetTicket(ctx, societyID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	// Reassignment of an in-progress ticket is allowed.
	if t.Status != StatusInProgress && !CanTransition(t.Status, StatusInProgress) {
		return Ticket{}, fmt.Errorf("%w: cannot assign a %s ticket", shared.ErrConflict, t.Status)
	}
	t.Status = StatusInProgress
	t.AssigneeID = &assigneeID
	return s.repo.UpdateTicket(ctx, t)
}

// Resolve marks an in-progress ticket resolved.
func (s *Service) Resolve(ctx context.Context, societyID, ticketID int64) (Ticket, error) {
	return s.transition(ctx, societyID, ticketID, StatusResolved)
}

// Close closes a ticket. Any non-closed ticket can be closed.
func (s *Service) Close(ctx context.Context, societyID, ticketID int64) (Ticket, error) {
	return s.transition(ctx, societyID, ticketID, StatusClosed)
}

// Reopen returns a resolved ticket to the open state.
func (s *Service) Reopen(ctx context.Context, societyID, ticketID int64) (Ticket, error) {
	return s.transition(ctx, societyID, ticketID, StatusOpen)
}

func (s *Service) transition(ctx context.Context, societyID, ticketID int64, to string) (Ticket, error) {
	t, err := s.repo.GetTicket(ctx, societyID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(t.Status, to) {
		return Ticket{}, fmt.Errorf("%w: cannot move a %s ticket to %s", shared.ErrConflict, t.Status, to)
	}
	t.Status = to
	switch to {
	case StatusResolved:
		now := s.now()
		t.ResolvedAt = &now
	case StatusOpen:
		t.ResolvedAt = nil
		t.AssigneeID = nil
	}
	return s.repo.UpdateTicket(ctx, t)
}

// Comment appends a note to an open, in-progress or resolved ticket.
func (s *Service) Comment(ctx context.Context, societyID int64, c Comment) (Comment, error) {
	c.Body = strings.TrimSpace(c.Body)
	if c.Body == "" {
		return Comment{}, fmt.Errorf("%w: comment body required", shared.ErrValidation)
	}
	t, err := s.repo.GetTicket(ctx, societyID, c.TicketID)
	if err != nil {
		return Comment{}, err
	}
	if t.Status == StatusClosed {
		return Comment{}, fmt.Errorf("%w: ticket is closed", shared.ErrConflict)
	}
	return s.repo.AddComment(ctx, c)
}

// EscalateStale bumps the priority of tickets untouched for the given
// duration and flags them. Run from the job scheduler.
func (s *Service) EscalateStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.repo.ListStale(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	escalated := 0
	for _, t := range stale {
		t.Escalated = true
		t.Priority = EscalatePriority(t.Priority)
		if _, err := s.repo.UpdateTicket(ctx, t); err != nil {
			return escalated, err
		}
		s.logger.Warn("escalated stale ticket",
			slog.Int64("ticket_id", t.ID),
			slog.String("priority", t.Priority))
		escalated++
	}
	return escalated, nil
}
