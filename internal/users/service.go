package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, orgID int64) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateRole(ctx context.Context, id int64, role authz.Role) error
	ReplacePermissions(ctx context.Context, id int64, permissions []string) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Auditor records administrative mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user administration business logic.
type Service struct {
	repo    RepositoryPort
	auditor Auditor
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, auditor Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// ListUsers returns users scoped to an organization.
func (s *Service) ListUsers(ctx context.Context, orgID int64) ([]User, error) {
	return s.repo.ListUsers(ctx, orgID)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// AssignRole validates and stores a role assignment.
func (s *Service) AssignRole(ctx context.Context, actorID, userID int64, rawRole string) error {
	role := authz.ParseRole(rawRole)
	if role == authz.RoleUnknown {
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, rawRole)
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.audit(ctx, actorID, "assign_role", userID, map[string]any{"role": string(role)})
	return nil
}

// ReplacePermissions stores a full replacement of the user's explicit
// permission overrides. Tokens are normalized but persisted as given:
// reads parse them fail-closed, so an out-of-vocabulary token is inert
// rather than rejected, and a stale token survives a vocabulary change
// without breaking the account. Unknown tokens are logged for operators.
func (s *Service) ReplacePermissions(ctx context.Context, actorID, userID int64, tokens []string) error {
	normalized := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" {
			continue
		}
		if authz.ParsePermission(t) == authz.PermissionUnknown {
			s.logger.Warn("storing unknown permission token",
				slog.Int64("user_id", userID), slog.String("token", t))
		}
		normalized = append(normalized, t)
	}
	if err := s.repo.ReplacePermissions(ctx, userID, normalized); err != nil {
		return err
	}
	s.audit(ctx, actorID, "replace_permissions", userID, map[string]any{"permissions": normalized})
	return nil
}

// SetActive toggles the account's active flag.
func (s *Service) SetActive(ctx context.Context, actorID, userID int64, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.audit(ctx, actorID, "set_active", userID, map[string]any{"active": active})
	return nil
}

// EffectivePermissions resolves a target user's effective permission set.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]authz.Permission, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.EffectivePermissions(), nil
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
