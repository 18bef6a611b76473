package visitors

import "time"

// Pass statuses. A pass is expected until the visitor arrives, and the
// expiry sweep closes out passes whose window lapsed unused.
const (
	StatusExpected   = "expected"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusExpired    = "expired"
)

// Pass is a pre-authorized visitor entry. The code is handed to the
// visitor and presented at the gate.
type Pass struct {
	ID           int64      `json:"id"`
	SocietyID    int64      `json:"society_id"`
	Code         string     `json:"code"`
	VisitorName  string     `json:"visitor_name"`
	VisitorPhone string     `json:"visitor_phone"`
	HostUnit     string     `json:"host_unit"`
	Purpose      string     `json:"purpose"`
	Status       string     `json:"status"`
	ValidFrom    time.Time  `json:"valid_from"`
	ValidUntil   time.Time  `json:"valid_until"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// WindowContains reports whether t falls inside the pass validity window.
func (p Pass) WindowContains(t time.Time) bool {
	return !t.Before(p.ValidFrom) && !t.After(p.ValidUntil)
}
