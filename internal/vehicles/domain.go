package vehicles

import (
	"strings"
	"time"
)

// Vehicle is a whitelisted vehicle for a society.
type Vehicle struct {
	ID        int64
	SocietyID int64
	Plate     string // normalized form, see NormalizePlate
	OwnerName string
	Kind      string // car, bike, commercial
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GateEvent records one ANPR sighting and the decision taken.
type GateEvent struct {
	ID         int64
	SocietyID  int64
	DeviceID   string
	Plate      string
	Allowed    bool
	OccurredAt time.Time
}

// GateDecision is the response for a plate sighting.
type GateDecision struct {
	Plate   string `json:"plate"`
	Allowed bool   `json:"allowed"`
}

// NormalizePlate canonicalizes a plate for storage and matching:
// uppercase with spaces, hyphens and dots stripped. Cameras and manual
// entry disagree on formatting; matching happens on the canonical form
// only.
func NormalizePlate(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch r {
		case ' ', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
