package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for vehicles and gate events.
type RepositoryPort interface {
	ListVehicles(ctx context.Context, societyID int64) ([]Vehicle, error)
	CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
	DeactivateVehicle(ctx context.Context, societyID, id int64) error
	FindActiveByPlate(ctx context.Context, societyID int64, plate string) (Vehicle, error)
	RecordGateEvent(ctx context.Context, e GateEvent) error
	ListGateEvents(ctx context.Context, societyID int64, since time.Time, limit int) ([]GateEvent, error)
}

// DecisionRecorder counts gate decisions for observability.
type DecisionRecorder interface {
	RecordGateDecision(decision string)
}

// Service handles vehicle whitelisting and gate checks.
type Service struct {
	repo     RepositoryPort
	recorder DecisionRecorder
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recorder DecisionRecorder) *Service {
	return &Service{repo: repo, recorder: recorder, now: time.Now}
}

var validKinds = map[string]struct{}{"car": {}, "bike": {}, "commercial": {}}

// ListVehicles returns the society's whitelist.
func (s *Service) ListVehicles(ctx context.Context, societyID int64) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx, societyID)
}

// Whitelist adds a vehicle after normalizing its plate.
func (s *Service) Whitelist(ctx context.Context, v Vehicle) (Vehicle, error) {
	v.Plate = NormalizePlate(v.Plate)
	if v.Plate == "" {
		return Vehicle{}, fmt.Errorf("%w: plate required", shared.ErrValidation)
	}
	v.OwnerName = strings.TrimSpace(v.OwnerName)
	if v.OwnerName == "" {
		return Vehicle{}, fmt.Errorf("%w: owner name required", shared.ErrValidation)
	}
	v.Kind = strings.TrimSpace(strings.ToLower(v.Kind))
	if _, ok := validKinds[v.Kind]; !ok {
		return Vehicle{}, fmt.Errorf("%w: unknown vehicle kind %q", shared.ErrValidation, v.Kind)
	}
	return s.repo.CreateVehicle(ctx, v)
}

// Remove deactivates a whitelist entry.
func (s *Service) Remove(ctx context.Context, societyID, id int64) error {
	return s.repo.DeactivateVehicle(ctx, societyID, id)
}

// CheckPlate decides whether a sighted plate may enter and records the
// event. Lookup failures other than a miss deny entry; the gate never
// fails open.
func (s *Service) CheckPlate(ctx context.Context, societyID int64, deviceID, rawPlate string) (GateDecision, error) {
	plate := NormalizePlate(rawPlate)
	if plate == "" {
		return GateDecision{}, fmt.Errorf("%w: plate required", shared.ErrValidation)
	}

	allowed := false
	if _, err := s.repo.FindActiveByPlate(ctx, societyID, plate); err == nil {
		allowed = true
	} else if !errors.Is(err, shared.ErrNotFound) {
		return GateDecision{}, err
	}

	event := GateEvent{
		SocietyID:  societyID,
		DeviceID:   deviceID,
		Plate:      plate,
		Allowed:    allowed,
		OccurredAt: s.now(),
	}
	if err := s.repo.RecordGateEvent(ctx, event); err != nil {
		return GateDecision{}, err
	}
	if s.recorder != nil {
		decision := "deny"
		if allowed {
			decision = "allow"
		}
		s.recorder.RecordGateDecision(decision)
	}
	return GateDecision{Plate: plate, Allowed: allowed}, nil
}

// RecentGateEvents lists sightings from the last day.
func (s *Service) RecentGateEvents(ctx context.Context, societyID int64, limit int) ([]GateEvent, error) {
	return s.repo.ListGateEvents(ctx, societyID, s.now().Add(-24*time.Hour), limit)
}
