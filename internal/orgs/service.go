package orgs

import (
	"context"
	"fmt"
	"strings"

	"github.com/societyhub/societyhub/internal/shared"
)

// RepositoryPort defines data access methods for organizations.
type RepositoryPort interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)
	ListChildren(ctx context.Context, parentID int64) ([]Organization, error)
	GetOrganization(ctx context.Context, id int64) (Organization, error)
	CreateOrganization(ctx context.Context, org Organization) (Organization, error)
	UpdateOrganization(ctx context.Context, id int64, name, code string, active bool) (Organization, error)
}

// Service handles organization hierarchy business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListOrganizations returns all organizations.
func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

// ListChildren returns direct children of the given node.
func (s *Service) ListChildren(ctx context.Context, parentID int64) ([]Organization, error) {
	return s.repo.ListChildren(ctx, parentID)
}

// GetOrganization fetches one node.
func (s *Service) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}

// CreateOrganization validates hierarchy rules and inserts a node: a
// franchise must hang off the platform root, a society off a franchise.
func (s *Service) CreateOrganization(ctx context.Context, org Organization) (Organization, error) {
	org.Name = strings.TrimSpace(org.Name)
	org.Code = strings.TrimSpace(strings.ToUpper(org.Code))
	if org.Name == "" {
		return Organization{}, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	if !org.Kind.Valid() {
		return Organization{}, fmt.Errorf("%w: unknown kind %q", shared.ErrValidation, org.Kind)
	}

	wantParent, needsParent := parentKind[org.Kind]
	if !needsParent {
		if org.ParentID != 0 {
			return Organization{}, fmt.Errorf("%w: platform root cannot have a parent", shared.ErrValidation)
		}
		return s.repo.CreateOrganization(ctx, org)
	}
	if org.ParentID == 0 {
		return Organization{}, fmt.Errorf("%w: %s requires a parent", shared.ErrValidation, org.Kind)
	}
	parent, err := s.repo.GetOrganization(ctx, org.ParentID)
	if err != nil {
		return Organization{}, err
	}
	if parent.Kind != wantParent {
		return Organization{}, fmt.Errorf("%w: %s must belong to a %s, got %s", shared.ErrValidation, org.Kind, wantParent, parent.Kind)
	}
	return s.repo.CreateOrganization(ctx, org)
}

// UpdateOrganization updates mutable fields of a node.
func (s *Service) UpdateOrganization(ctx context.Context, id int64, name, code string, active bool) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	return s.repo.UpdateOrganization(ctx, id, name, strings.TrimSpace(strings.ToUpper(code)), active)
}
