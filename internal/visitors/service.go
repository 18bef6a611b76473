package visitors

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for visitor passes.
type RepositoryPort interface {
	CreatePass(ctx context.Context, p Pass) (Pass, error)
	FindByCode(ctx context.Context, societyID int64, code string) (Pass, error)
	ListPasses(ctx context.Context, societyID int64, status string) ([]Pass, error)
	MarkCheckedIn(ctx context.Context, id int64, at time.Time) (Pass, error)
	MarkCheckedOut(ctx context.Context, id int64, at time.Time) (Pass, error)
	ExpirePasses(ctx context.Context, asOf time.Time) (int64, error)
}

// Service handles visitor pass business logic.
type Service struct {
	repo    RepositoryPort
	logger  *slog.Logger
	now     func() time.Time
	newCode func() string
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now, newCode: uuid.NewString}
}

const maxPassWindow = 7 * 24 * time.Hour

// IssuePass creates a pre-authorized pass with a fresh gate code.
func (s *Service) IssuePass(ctx context.Context, p Pass) (Pass, error) {
	p.VisitorName = strings.TrimSpace(p.VisitorName)
	if p.VisitorName == "" {
		return Pass{}, fmt.Errorf("%w: visitor name required", shared.ErrValidation)
	}
	p.HostUnit = strings.TrimSpace(p.HostUnit)
	if p.HostUnit == "" {
		return Pass{}, fmt.Errorf("%w: host unit required", shared.ErrValidation)
	}
	if p.ValidFrom.IsZero() {
		p.ValidFrom = s.now()
	}
	if p.ValidUntil.IsZero() {
		p.ValidUntil = p.ValidFrom.Add(24 * time.Hour)
	}
	if !p.ValidUntil.After(p.ValidFrom) {
		return Pass{}, fmt.Errorf("%w: validity window is empty", shared.ErrValidation)
	}
	if p.ValidUntil.Sub(p.ValidFrom) > maxPassWindow {
		return Pass{}, fmt.Errorf("%w: validity window exceeds 7 days", shared.ErrValidation)
	}
	p.Code = s.newCode()
	return s.repo.CreatePass(ctx, p)
}

// WalkIn registers an unannounced visitor at the gate desk: a pass is
// created for the rest of the day and checked in immediately.
func (s *Service) WalkIn(ctx context.Context, p Pass) (Pass, error) {
	now := s.now()
	p.ValidFrom = now
	p.ValidUntil = now.Add(12 * time.Hour)
	created, err := s.IssuePass(ctx, p)
	if err != nil {
		return Pass{}, err
	}
	return s.repo.MarkCheckedIn(ctx, created.ID, now)
}

// ListPasses returns passes for a society, optionally filtered by status.
func (s *Service) ListPasses(ctx context.Context, societyID int64, status string) ([]Pass, error) {
	return s.repo.ListPasses(ctx, societyID, status)
}

// CheckIn admits a visitor presenting a pass code. A pass outside its
// validity window or already used is refused.
func (s *Service) CheckIn(ctx context.Context, societyID int64, code string) (Pass, error) {
	p, err := s.repo.FindByCode(ctx, societyID, strings.TrimSpace(code))
	if err != nil {
		return Pass{}, err
	}
	if p.Status != StatusExpected {
		return Pass{}, fmt.Errorf("%w: pass is %s", shared.ErrConflict, p.Status)
	}
	now := s.now()
	if !p.WindowContains(now) {
		return Pass{}, fmt.Errorf("%w: pass is outside its validity window", shared.ErrConflict)
	}
	return s.repo.MarkCheckedIn(ctx, p.ID, now)
}

// CheckOut records a checked-in visitor leaving.
func (s *Service) CheckOut(ctx context.Context, societyID int64, code string) (Pass, error) {
	p, err := s.repo.FindByCode(ctx, societyID, strings.TrimSpace(code))
	if err != nil {
		return Pass{}, err
	}
	if p.Status != StatusCheckedIn {
		return Pass{}, fmt.Errorf("%w: pass is %s", shared.ErrConflict, p.Status)
	}
	return s.repo.MarkCheckedOut(ctx, p.ID, s.now())
}

// SweepExpired closes out lapsed passes. Run from the job scheduler.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpirePasses(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired visitor passes", slog.Int64("count", n))
	}
	return n, nil
}
