package helpdesk

import "time"

// Ticket statuses. The flow is open -> in_progress -> resolved ->
// closed; a resolved ticket can be reopened by the reporter.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priorities, lowest to highest.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var priorityRank = map[string]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// Ticket is a maintenance or complaint record raised by a resident.
type Ticket struct {
	ID          int64      `json:"id"`
	SocietyID   int64      `json:"society_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	ReporterID  int64      `json:"reporter_id"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	Escalated   bool       `json:"escalated"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Comment is a note appended to a ticket's thread.
type Comment struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

var allowedTransitions = map[string]map[string]bool{
	StatusOpen:       {StatusInProgress: true, StatusClosed: true},
	StatusInProgress: {StatusResolved: true, StatusClosed: true},
	StatusResolved:   {StatusClosed: true, StatusOpen: true},
}

// CanTransition reports whether a ticket may move between two statuses.
// Closed is terminal.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// EscalatePriority returns the next priority up, capped at urgent.
func EscalatePriority(p string) string {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityUrgent
	}
}
